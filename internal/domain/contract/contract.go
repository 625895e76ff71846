package contract

import (
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/price"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents where a contract is in its signing lifecycle
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
	StatusCanceled   Status = "CANCELED"
)

// Manual transitions. IN_PROGRESS -> CLOSED only happens through signing.
var validNext = map[Status]map[Status]bool{
	StatusDraft:      {StatusInProgress: true, StatusCanceled: true},
	StatusInProgress: {StatusCanceled: true},
	StatusClosed:     {},
	StatusCanceled:   {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether the contract can no longer change.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCanceled
}

// CanTransition reports whether a manual move from -> to is allowed.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Role identifies which side of the contract signs.
type Role string

const (
	RoleBuyer    Role = "BUYER"
	RoleSupplier Role = "SUPPLIER"
)

func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSupplier
}

// Contract is the agreement drafted from a winning participation
type Contract struct {
	ID                uuid.UUID       `json:"id"`
	TransactionNumber string          `json:"transaction_number"`
	BiddingID         uuid.UUID       `json:"bidding_id"`
	ParticipationID   uuid.UUID       `json:"participation_id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	Period            shared.Period   `json:"period"`
	DeliveryDate      time.Time       `json:"delivery_date"`
	Quantity          int64           `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amounts           price.Amounts   `json:"amounts"`
	Status            Status          `json:"status"`
	BuyerSignature    string          `json:"buyer_signature,omitempty"`
	BuyerSignedAt     *time.Time      `json:"buyer_signed_at,omitempty"`
	BuyerSignerID     *uuid.UUID      `json:"buyer_signer_id,omitempty"`
	SupplierSignature string          `json:"supplier_signature,omitempty"`
	SupplierSignedAt  *time.Time      `json:"supplier_signed_at,omitempty"`
	CreatorID         uuid.UUID       `json:"creator_id"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Terms overrides the defaults derived from the bidding.
type Terms struct {
	Period       *shared.Period
	DeliveryDate *time.Time
}

// Draft creates a contract from the active winner of a closed bidding.
// Monetary fields are copied from the participation, not recomputed from
// the bidding.
func Draft(b *bidding.Bidding, p *bidding.Participation, number string, terms Terms, creator shared.Actor, now time.Time) (*Contract, error) {
	if b.Status != bidding.StatusClosed {
		return nil, shared.State("contracts can only be drafted from a CLOSED bidding, %s is %s", b.BidNumber, b.Status)
	}
	if p.BiddingID != b.ID {
		return nil, shared.Validation("participation %s does not belong to bidding %s", p.ID, b.ID)
	}
	if !p.Winner || p.Withdrawn {
		return nil, shared.ErrNotWinner
	}

	period := b.Period
	if terms.Period != nil {
		if err := terms.Period.Validate(); err != nil {
			return nil, err
		}
		period = *terms.Period
	}
	delivery := period.End
	if terms.DeliveryDate != nil {
		delivery = *terms.DeliveryDate
	}

	return &Contract{
		ID:                uuid.New(),
		TransactionNumber: number,
		BiddingID:         b.ID,
		ParticipationID:   p.ID,
		SupplierID:        p.SupplierID,
		Period:            period,
		DeliveryDate:      delivery,
		Quantity:          p.Quantity,
		UnitPrice:         p.UnitPrice,
		Amounts:           p.Amounts,
		Status:            StatusDraft,
		CreatorID:         creator.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Transition applies a manual status change.
func (c *Contract) Transition(to Status, actor shared.Actor, reason string, now time.Time) (bidding.HistoryRecord, error) {
	if !to.Valid() || !CanTransition(c.Status, to) {
		return bidding.HistoryRecord{}, shared.InvalidTransition("contract", string(c.Status), string(to))
	}
	return c.move(to, actor, reason, now), nil
}

func (c *Contract) move(to Status, actor shared.Actor, reason string, now time.Time) bidding.HistoryRecord {
	from := c.Status
	c.Status = to
	c.UpdatedAt = now
	return bidding.NewHistoryRecord(c.ID, string(from), string(to), actor, reason, now)
}

// Sign records one side's signature. When both sides have signed the
// contract closes and the returned history slice holds that transition.
func (c *Contract) Sign(role Role, signature string, actor shared.Actor, now time.Time) ([]bidding.HistoryRecord, error) {
	if !role.Valid() {
		return nil, shared.Validation("unknown signing role %q", role)
	}
	if signature == "" {
		return nil, shared.Validation("signature must not be empty")
	}
	if c.Status != StatusInProgress {
		return nil, shared.ErrContractNotInProgress
	}

	signedAt := now
	switch role {
	case RoleBuyer:
		if c.BuyerSignature != "" {
			return nil, shared.ErrAlreadySigned
		}
		signer := actor.ID
		c.BuyerSignature = signature
		c.BuyerSignedAt = &signedAt
		c.BuyerSignerID = &signer
	case RoleSupplier:
		if c.SupplierSignature != "" {
			return nil, shared.ErrAlreadySigned
		}
		c.SupplierSignature = signature
		c.SupplierSignedAt = &signedAt
	}
	c.UpdatedAt = now

	if !c.FullySigned() {
		return nil, nil
	}
	return []bidding.HistoryRecord{c.move(StatusClosed, actor, "all signatures collected", now)}, nil
}

// FullySigned reports whether both signatures are present.
func (c *Contract) FullySigned() bool {
	return c.BuyerSignature != "" && c.SupplierSignature != ""
}

// ReadyForOrder reports whether an order may be drawn from the contract.
func (c *Contract) ReadyForOrder() bool {
	return c.Status == StatusClosed && c.FullySigned()
}
