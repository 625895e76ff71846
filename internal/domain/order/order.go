package order

import (
	"time"

	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/price"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the approval state of a purchase order
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

var validNext = map[Status]map[Status]bool{
	StatusRequested: {StatusApproved: true, StatusRejected: true},
	StatusApproved:  {},
	StatusRejected:  {},
}

// CanTransition reports whether to is an allowed successor of from.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Order is a purchase order issued from a fully signed contract
type Order struct {
	ID                   uuid.UUID       `json:"id"`
	OrderNumber          string          `json:"order_number"`
	BiddingID            uuid.UUID       `json:"bidding_id"`
	ContractID           uuid.UUID       `json:"contract_id"`
	ParticipationID      uuid.UUID       `json:"participation_id"`
	SupplierID           uuid.UUID       `json:"supplier_id"`
	Quantity             int64           `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	Amounts              price.Amounts   `json:"amounts"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	Status               Status          `json:"status"`
	RequestedBy          uuid.UUID       `json:"requested_by"`
	ApproverID           *uuid.UUID      `json:"approver_id,omitempty"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty"`
	ApprovalComment      string          `json:"approval_comment,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Issue draws an order from a contract that reached its fully signed state.
func Issue(c *contract.Contract, number string, requester shared.Actor, now time.Time) (*Order, error) {
	if !c.ReadyForOrder() {
		return nil, shared.ErrContractNotSigned
	}

	return &Order{
		ID:                   uuid.New(),
		OrderNumber:          number,
		BiddingID:            c.BiddingID,
		ContractID:           c.ID,
		ParticipationID:      c.ParticipationID,
		SupplierID:           c.SupplierID,
		Quantity:             c.Quantity,
		UnitPrice:            c.UnitPrice,
		Amounts:              c.Amounts,
		ExpectedDeliveryDate: c.DeliveryDate,
		Status:               StatusRequested,
		RequestedBy:          requester.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Decide approves or rejects a requested order.
func (o *Order) Decide(approve bool, comment string, approver shared.Actor, now time.Time) error {
	to := StatusRejected
	if approve {
		to = StatusApproved
	}
	if !CanTransition(o.Status, to) {
		return shared.InvalidTransition("order", string(o.Status), string(to))
	}

	approverID := approver.ID
	decidedAt := now
	o.Status = to
	o.ApproverID = &approverID
	o.ApprovedAt = &decidedAt
	o.ApprovalComment = comment
	o.UpdatedAt = now
	return nil
}
