package bidding

import (
	"time"

	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// Status represents the lifecycle position of a bidding
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusOngoing  Status = "ONGOING"
	StatusClosed   Status = "CLOSED"
	StatusCanceled Status = "CANCELED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusOngoing: true, StatusCanceled: true},
	StatusOngoing:  {StatusClosed: true, StatusCanceled: true},
	StatusClosed:   {},
	StatusCanceled: {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

// CanTransition reports whether to is an allowed successor of from.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// TransitionAction maps a target status to the policy action gating it.
func TransitionAction(to Status) (policy.Action, bool) {
	switch to {
	case StatusOngoing:
		return policy.BiddingStart, true
	case StatusClosed:
		return policy.BiddingClose, true
	case StatusCanceled:
		return policy.BiddingCancel, true
	default:
		return "", false
	}
}

// HistoryRecord is one entry of the append-only status log.
type HistoryRecord struct {
	ID        uuid.UUID `json:"id"`
	EntityID  uuid.UUID `json:"entity_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   uuid.UUID `json:"actor_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHistoryRecord builds a log entry. An empty from marks creation.
func NewHistoryRecord(entityID uuid.UUID, from, to string, actor shared.Actor, reason string, now time.Time) HistoryRecord {
	return HistoryRecord{
		ID:        uuid.New(),
		EntityID:  entityID,
		From:      from,
		To:        to,
		ActorID:   actor.ID,
		Reason:    reason,
		CreatedAt: now,
	}
}

// Transition validates and applies a status change, returning the history
// record to persist. The bidding is left untouched on error.
func (b *Bidding) Transition(to Status, actor shared.Actor, reason string, p *policy.Policy, now time.Time) (HistoryRecord, error) {
	if !to.Valid() || !CanTransition(b.Status, to) {
		return HistoryRecord{}, shared.InvalidTransition("bidding", string(b.Status), string(to))
	}

	action, _ := TransitionAction(to)
	if err := p.Check(actor, action, string(b.Status)); err != nil {
		return HistoryRecord{}, err
	}

	// starting requires the period end to be ahead
	if to == StatusOngoing && now.After(b.Period.End) {
		return HistoryRecord{}, shared.State("bidding %s period ended at %s, it can no longer start", b.BidNumber, b.Period.End.Format(time.RFC3339))
	}

	from := b.Status
	b.Status = to
	b.UpdatedAt = now
	return NewHistoryRecord(b.ID, string(from), string(to), actor, reason, now), nil
}
