package inbound

import (
	"context"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Every mutating operation returns the notification intents it produced
// alongside its result. The intents have already been handed to the
// notifier when the call returns.

// BiddingService defines the interface for bidding notice operations
type BiddingService interface {
	// CreateBidding validates, numbers and stores a new PENDING bidding
	CreateBidding(ctx context.Context, req CreateBiddingRequest, actor shared.Actor) (*bidding.Bidding, []notification.Intent, error)

	// UpdateBidding edits the terms of a PENDING or ONGOING bidding
	UpdateBidding(ctx context.Context, biddingID uuid.UUID, req UpdateBiddingRequest, actor shared.Actor) (*bidding.Bidding, []notification.Intent, error)

	// ChangeBiddingStatus moves the bidding through its status automaton
	ChangeBiddingStatus(ctx context.Context, biddingID uuid.UUID, target bidding.Status, reason string, actor shared.Actor) (*bidding.Bidding, []notification.Intent, error)

	// GetBidding retrieves a bidding by ID
	GetBidding(ctx context.Context, biddingID uuid.UUID) (*bidding.Bidding, error)

	// ListBiddings retrieves a page of biddings
	ListBiddings(ctx context.Context, req ListBiddingsRequest) ([]*bidding.Bidding, error)

	// GetBiddingHistory retrieves the status log of a bidding
	GetBiddingHistory(ctx context.Context, biddingID uuid.UUID) ([]bidding.HistoryRecord, error)
}

// InvitationService defines the interface for supplier invitation operations
type InvitationService interface {
	// InviteSupplier invites a supplier to a PENDING or ONGOING bidding
	InviteSupplier(ctx context.Context, biddingID, supplierID uuid.UUID, actor shared.Actor) (*bidding.Invitation, []notification.Intent, error)

	// RespondToInvitation records the supplier's single answer
	RespondToInvitation(ctx context.Context, req RespondToInvitationRequest, actor shared.Actor) (*bidding.Invitation, []notification.Intent, error)

	// ListInvitations retrieves the invitations of a bidding
	ListInvitations(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Invitation, error)
}

// ParticipationService defines the interface for supplier bid operations
type ParticipationService interface {
	// SubmitParticipation stores a supplier's bid on an ONGOING bidding
	SubmitParticipation(ctx context.Context, req SubmitParticipationRequest, actor shared.Actor) (*bidding.Participation, []notification.Intent, error)

	// ConfirmParticipation marks a participation as acknowledged by the buyer
	ConfirmParticipation(ctx context.Context, participationID uuid.UUID, actor shared.Actor) (*bidding.Participation, []notification.Intent, error)

	// WithdrawParticipation retracts a participation while the bidding is ONGOING
	WithdrawParticipation(ctx context.Context, participationID uuid.UUID, reason string, actor shared.Actor) ([]notification.Intent, error)

	// ListParticipations retrieves the participations of a bidding
	ListParticipations(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Participation, error)
}

// AwardService defines the interface for evaluation and winner selection
type AwardService interface {
	// Evaluate scores a participation of a CLOSED bidding
	Evaluate(ctx context.Context, req EvaluateRequest, actor shared.Actor) (*bidding.Evaluation, []notification.Intent, error)

	// SelectWinner flags the best-scored participation as the single winner
	SelectWinner(ctx context.Context, biddingID uuid.UUID, actor shared.Actor) (*bidding.Evaluation, []notification.Intent, error)

	// ListEvaluations retrieves the evaluations of a bidding
	ListEvaluations(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Evaluation, error)
}

// ContractService defines the interface for contract operations
type ContractService interface {
	// DraftContract creates a DRAFT contract from the winning participation
	DraftContract(ctx context.Context, req DraftContractRequest, actor shared.Actor) (*contract.Contract, []notification.Intent, error)

	// ChangeContractStatus applies a manual contract transition
	ChangeContractStatus(ctx context.Context, contractID uuid.UUID, target contract.Status, reason string, actor shared.Actor) (*contract.Contract, []notification.Intent, error)

	// SignContract records one side's signature
	SignContract(ctx context.Context, contractID uuid.UUID, role contract.Role, signature string, actor shared.Actor) (*contract.Contract, []notification.Intent, error)

	// GetContract retrieves a contract by ID
	GetContract(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error)

	// GetContractHistory retrieves the status log of a contract
	GetContractHistory(ctx context.Context, contractID uuid.UUID) ([]bidding.HistoryRecord, error)
}

// OrderService defines the interface for purchase order operations
type OrderService interface {
	// IssueOrder draws a purchase order from a fully signed contract
	IssueOrder(ctx context.Context, contractID uuid.UUID, actor shared.Actor) (*order.Order, []notification.Intent, error)

	// ApproveOrder approves or rejects a requested order
	ApproveOrder(ctx context.Context, orderID uuid.UUID, approve bool, comment string, actor shared.Actor) (*order.Order, []notification.Intent, error)

	// GetOrder retrieves an order by ID
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

// request to create a bidding
type CreateBiddingRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Method      bidding.Method   `json:"method"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
}

// request to update a bidding; nil fields are left unchanged
type UpdateBiddingRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Quantity    *int64           `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
}

// request to list biddings
type ListBiddingsRequest struct {
	Statuses []bidding.Status `json:"statuses,omitempty"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// request to answer an invitation
type RespondToInvitationRequest struct {
	BiddingID  uuid.UUID `json:"bidding_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Accept     bool      `json:"accept"`
	Comment    string    `json:"comment"`
}

// request to submit a participation
type SubmitParticipationRequest struct {
	BiddingID  uuid.UUID        `json:"bidding_id"`
	SupplierID uuid.UUID        `json:"supplier_id"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	Quantity   int64            `json:"quantity"`
	Comment    string           `json:"comment"`
}

// request to evaluate a participation
type EvaluateRequest struct {
	ParticipationID uuid.UUID      `json:"participation_id"`
	EvaluatorID     uuid.UUID      `json:"evaluator_id"`
	Scores          bidding.Scores `json:"scores"`
	Comment         string         `json:"comment"`
}

// request to draft a contract
type DraftContractRequest struct {
	BiddingID       uuid.UUID  `json:"bidding_id"`
	ParticipationID uuid.UUID  `json:"participation_id"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
}
