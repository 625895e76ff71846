package outbound

import (
	"context"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// BiddingRepository defines the interface for bidding data operations
type BiddingRepository interface {
	// Create stores a new bidding together with its creation history record
	Create(ctx context.Context, b *bidding.Bidding, record bidding.HistoryRecord) error

	// GetByID retrieves a bidding by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bidding.Bidding, error)

	// List retrieves biddings with an optional status filter
	List(ctx context.Context, statuses []bidding.Status, page, pageSize int) ([]*bidding.Bidding, error)

	// Update saves the bidding if its version is unchanged and appends the
	// history records in the same transaction. The version is bumped on success.
	Update(ctx context.Context, b *bidding.Bidding, records ...bidding.HistoryRecord) error

	// History returns the status log ordered oldest first
	History(ctx context.Context, biddingID uuid.UUID) ([]bidding.HistoryRecord, error)
}

// InvitationRepository defines the interface for invitation data operations
type InvitationRepository interface {
	// Create stores an invitation, returning ErrDuplicateInvitation if the
	// supplier is already invited
	Create(ctx context.Context, inv *bidding.Invitation) error

	// Get retrieves the invitation of a supplier to a bidding
	Get(ctx context.Context, biddingID, supplierID uuid.UUID) (*bidding.Invitation, error)

	// ListByBidding retrieves every invitation of a bidding
	ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Invitation, error)

	// Respond saves the answer only if the invitation is still unanswered
	Respond(ctx context.Context, inv *bidding.Invitation) error
}

// ParticipationRepository defines the interface for participation data operations
type ParticipationRepository interface {
	// Create stores a participation, returning ErrDuplicateParticipation if
	// the supplier already participates in the bidding
	Create(ctx context.Context, p *bidding.Participation) error

	// GetByID retrieves a participation by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bidding.Participation, error)

	// ListByBidding retrieves every participation of a bidding, withdrawn included
	ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Participation, error)

	// Update saves the confirmation and withdrawal fields of a participation
	Update(ctx context.Context, p *bidding.Participation) error

	// AssignWinner clears any previous winner of the bidding and flags the
	// given participation and evaluation, atomically
	AssignWinner(ctx context.Context, biddingID, participationID, evaluationID uuid.UUID, at time.Time) error
}

// EvaluationRepository defines the interface for evaluation data operations
type EvaluationRepository interface {
	// Create stores an evaluation and records its score on the participation,
	// returning ErrDuplicateEvaluation on a repeat by the same evaluator
	Create(ctx context.Context, e *bidding.Evaluation) error

	// GetByID retrieves an evaluation by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bidding.Evaluation, error)

	// ListByBidding retrieves every evaluation across the bidding's participations
	ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Evaluation, error)
}

// ContractRepository defines the interface for contract data operations
type ContractRepository interface {
	// Create stores a contract with its creation record, returning
	// ErrDuplicateContract if one exists for the participation
	Create(ctx context.Context, c *contract.Contract, record bidding.HistoryRecord) error

	// GetByID retrieves a contract by ID
	GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error)

	// ListByBidding retrieves the contracts drafted for a bidding
	ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*contract.Contract, error)

	// Update saves the contract under its version check and appends history
	Update(ctx context.Context, c *contract.Contract, records ...bidding.HistoryRecord) error

	// History returns the contract status log ordered oldest first
	History(ctx context.Context, contractID uuid.UUID) ([]bidding.HistoryRecord, error)
}

// OrderRepository defines the interface for purchase order data operations
type OrderRepository interface {
	// Create stores an order and marks its participation as ordered,
	// returning ErrDuplicateOrder if the contract already has one
	Create(ctx context.Context, o *order.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// GetByContract retrieves the order issued from a contract
	GetByContract(ctx context.Context, contractID uuid.UUID) (*order.Order, error)

	// Update saves the approval fields of an order
	Update(ctx context.Context, o *order.Order) error
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	// GetByID retrieves a member by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.Member, error)

	// Create creates a new member
	Create(ctx context.Context, m *shared.Member) error

	// ListByDepartment retrieves internal members of a department at or above a rank
	ListByDepartment(ctx context.Context, departmentID uuid.UUID, minRank shared.Rank) ([]*shared.Member, error)

	// ListAdministrators retrieves every administrator
	ListAdministrators(ctx context.Context) ([]*shared.Member, error)
}

// Sequencer hands out gap-free numbers per (prefix, date key)
type Sequencer interface {
	Next(ctx context.Context, prefix, dateKey string) (int64, error)
}

// Locker serializes mutations of a single aggregate instance
type Locker interface {
	// Lock blocks until the key is held or ctx ends. The returned function
	// releases the lock.
	Lock(ctx context.Context, key string) (func(), error)
}

// ClosingScheduler arranges for a bidding to be closed at its period end
type ClosingScheduler interface {
	ScheduleClosing(ctx context.Context, biddingID uuid.UUID, at time.Time) error
	CancelClosing(ctx context.Context, biddingID uuid.UUID) error
}

// Repositories bundles one storage backend's repositories for wiring
type Repositories struct {
	Biddings       BiddingRepository
	Invitations    InvitationRepository
	Participations ParticipationRepository
	Evaluations    EvaluationRepository
	Contracts      ContractRepository
	Orders         OrderRepository
	Members        MemberRepository
	Sequencer      Sequencer
}
