package memory

import (
	"context"
	"sort"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

type BiddingRepository struct {
	store *Store
}

func (r *BiddingRepository) Create(ctx context.Context, b *bidding.Bidding, record bidding.HistoryRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.biddings[b.ID]; exists {
		return shared.Duplicate("bidding %s already exists", b.ID)
	}
	for _, existing := range r.store.biddings {
		if existing.BidNumber == b.BidNumber {
			return shared.Duplicate("bid number %s already used", b.BidNumber)
		}
	}

	b.Version = 1
	r.store.biddings[b.ID] = copyBidding(b)
	r.store.biddingOrder = append(r.store.biddingOrder, b.ID)
	r.store.biddingHistory[b.ID] = append(r.store.biddingHistory[b.ID], record)
	return nil
}

func (r *BiddingRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Bidding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.biddings[id]
	if !ok {
		return nil, shared.ErrBiddingNotFound
	}
	return copyBidding(b), nil
}

// List returns newest first
func (r *BiddingRepository) List(ctx context.Context, statuses []bidding.Status, page, pageSize int) ([]*bidding.Bidding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[bidding.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var matched []*bidding.Bidding
	for i := len(r.store.biddingOrder) - 1; i >= 0; i-- {
		b := r.store.biddings[r.store.biddingOrder[i]]
		if len(wanted) > 0 && !wanted[b.Status] {
			continue
		}
		matched = append(matched, copyBidding(b))
	}

	offset := (page - 1) * pageSize
	if offset >= len(matched) {
		return []*bidding.Bidding{}, nil
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *BiddingRepository) Update(ctx context.Context, b *bidding.Bidding, records ...bidding.HistoryRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.biddings[b.ID]
	if !ok {
		return shared.ErrBiddingNotFound
	}
	if current.Version != b.Version {
		return shared.ErrConcurrentModification
	}

	b.Version++
	r.store.biddings[b.ID] = copyBidding(b)
	r.store.biddingHistory[b.ID] = append(r.store.biddingHistory[b.ID], records...)
	return nil
}

func (r *BiddingRepository) History(ctx context.Context, biddingID uuid.UUID) ([]bidding.HistoryRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.biddings[biddingID]; !ok {
		return nil, shared.ErrBiddingNotFound
	}
	return sortedHistory(r.store.biddingHistory[biddingID]), nil
}

func sortedHistory(records []bidding.HistoryRecord) []bidding.HistoryRecord {
	out := make([]bidding.HistoryRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type InvitationRepository struct {
	store *Store
}

func (r *InvitationRepository) Create(ctx context.Context, inv *bidding.Invitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := invitationKey{biddingID: inv.BiddingID, supplierID: inv.SupplierID}
	if _, exists := r.store.invitations[key]; exists {
		return shared.ErrDuplicateInvitation
	}
	r.store.invitations[key] = copyInvitation(inv)
	return nil
}

func (r *InvitationRepository) Get(ctx context.Context, biddingID, supplierID uuid.UUID) (*bidding.Invitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	inv, ok := r.store.invitations[invitationKey{biddingID: biddingID, supplierID: supplierID}]
	if !ok {
		return nil, shared.ErrInvitationNotFound
	}
	return copyInvitation(inv), nil
}

func (r *InvitationRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Invitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*bidding.Invitation
	for key, inv := range r.store.invitations {
		if key.biddingID == biddingID {
			out = append(out, copyInvitation(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InvitationRepository) Respond(ctx context.Context, inv *bidding.Invitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := invitationKey{biddingID: inv.BiddingID, supplierID: inv.SupplierID}
	current, ok := r.store.invitations[key]
	if !ok {
		return shared.ErrInvitationNotFound
	}
	if current.Response != bidding.ResponseUnanswered {
		return shared.ErrAlreadyResponded
	}
	r.store.invitations[key] = copyInvitation(inv)
	return nil
}

type ParticipationRepository struct {
	store *Store
}

func (r *ParticipationRepository) Create(ctx context.Context, p *bidding.Participation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.participations {
		if existing.BiddingID == p.BiddingID && existing.SupplierID == p.SupplierID {
			return shared.ErrDuplicateParticipation
		}
	}
	r.store.participations[p.ID] = copyParticipation(p)
	return nil
}

func (r *ParticipationRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Participation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.participations[id]
	if !ok {
		return nil, shared.ErrParticipationNotFound
	}
	return copyParticipation(p), nil
}

func (r *ParticipationRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Participation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*bidding.Participation
	for _, p := range r.store.participations {
		if p.BiddingID == biddingID {
			out = append(out, copyParticipation(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (r *ParticipationRepository) Update(ctx context.Context, p *bidding.Participation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.participations[p.ID]
	if !ok {
		return shared.ErrParticipationNotFound
	}
	// winner, evaluation and order flags belong to other writers
	stored.Confirmed = p.Confirmed
	stored.ConfirmedAt = p.ConfirmedAt
	stored.Withdrawn = p.Withdrawn
	stored.WithdrawnAt = p.WithdrawnAt
	stored.WithdrawReason = p.WithdrawReason
	return nil
}

func (r *ParticipationRepository) AssignWinner(ctx context.Context, biddingID, participationID, evaluationID uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	winner, ok := r.store.participations[participationID]
	if !ok || winner.BiddingID != biddingID {
		return shared.ErrParticipationNotFound
	}
	chosen, ok := r.store.evaluations[evaluationID]
	if !ok || chosen.ParticipationID != participationID {
		return shared.ErrEvaluationNotFound
	}

	for _, p := range r.store.participations {
		if p.BiddingID == biddingID && p.Winner {
			p.Winner = false
			p.WinnerAt = nil
		}
	}
	for _, e := range r.store.evaluations {
		if e.BiddingID == biddingID && e.Selected {
			e.Selected = false
			e.SelectedAt = nil
		}
	}

	selectedAt := at
	winner.Winner = true
	winner.WinnerAt = &selectedAt
	chosen.Selected = true
	chosen.SelectedAt = &selectedAt
	return nil
}

type EvaluationRepository struct {
	store *Store
}

func (r *EvaluationRepository) Create(ctx context.Context, e *bidding.Evaluation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.participations[e.ParticipationID]
	if !ok {
		return shared.ErrParticipationNotFound
	}
	for _, existing := range r.store.evaluations {
		if existing.ParticipationID == e.ParticipationID && existing.EvaluatorID == e.EvaluatorID {
			return shared.ErrDuplicateEvaluation
		}
	}

	r.store.evaluations[e.ID] = copyEvaluation(e)
	p.MarkEvaluated(e.TotalScore)
	return nil
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*bidding.Evaluation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.evaluations[id]
	if !ok {
		return nil, shared.ErrEvaluationNotFound
	}
	return copyEvaluation(e), nil
}

func (r *EvaluationRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*bidding.Evaluation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*bidding.Evaluation
	for _, e := range r.store.evaluations {
		if e.BiddingID == biddingID {
			out = append(out, copyEvaluation(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
