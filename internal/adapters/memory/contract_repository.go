package memory

import (
	"context"
	"sort"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

type ContractRepository struct {
	store *Store
}

func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract, record bidding.HistoryRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.contracts {
		if existing.BiddingID == c.BiddingID && existing.ParticipationID == c.ParticipationID {
			return shared.ErrDuplicateContract
		}
		if existing.TransactionNumber == c.TransactionNumber {
			return shared.Duplicate("transaction number %s already used", c.TransactionNumber)
		}
	}

	c.Version = 1
	r.store.contracts[c.ID] = copyContract(c)
	r.store.contractHistory[c.ID] = append(r.store.contractHistory[c.ID], record)
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.contracts[id]
	if !ok {
		return nil, shared.ErrContractNotFound
	}
	return copyContract(c), nil
}

func (r *ContractRepository) ListByBidding(ctx context.Context, biddingID uuid.UUID) ([]*contract.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*contract.Contract
	for _, c := range r.store.contracts {
		if c.BiddingID == biddingID {
			out = append(out, copyContract(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract, records ...bidding.HistoryRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.contracts[c.ID]
	if !ok {
		return shared.ErrContractNotFound
	}
	if current.Version != c.Version {
		return shared.ErrConcurrentModification
	}

	c.Version++
	r.store.contracts[c.ID] = copyContract(c)
	r.store.contractHistory[c.ID] = append(r.store.contractHistory[c.ID], records...)
	return nil
}

func (r *ContractRepository) History(ctx context.Context, contractID uuid.UUID) ([]bidding.HistoryRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.contracts[contractID]; !ok {
		return nil, shared.ErrContractNotFound
	}
	return sortedHistory(r.store.contractHistory[contractID]), nil
}

type OrderRepository struct {
	store *Store
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.orders {
		if existing.ContractID == o.ContractID {
			return shared.ErrDuplicateOrder
		}
	}
	p, ok := r.store.participations[o.ParticipationID]
	if !ok {
		return shared.ErrParticipationNotFound
	}

	r.store.orders[o.ID] = copyOrder(o)
	p.OrderCreated = true
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, shared.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *OrderRepository) GetByContract(ctx context.Context, contractID uuid.UUID) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, o := range r.store.orders {
		if o.ContractID == contractID {
			return copyOrder(o), nil
		}
	}
	return nil, shared.ErrOrderNotFound
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[o.ID]; !ok {
		return shared.ErrOrderNotFound
	}
	r.store.orders[o.ID] = copyOrder(o)
	return nil
}

type MemberRepository struct {
	store *Store
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.members[id]
	if !ok {
		return nil, shared.ErrMemberNotFound
	}
	c := *m
	return &c, nil
}

func (r *MemberRepository) Create(ctx context.Context, m *shared.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.members[m.ID]; exists {
		return shared.Duplicate("member %s already exists", m.ID)
	}
	c := *m
	r.store.members[m.ID] = &c
	return nil
}

func (r *MemberRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID, minRank shared.Rank) ([]*shared.Member, error) {
	return r.filter(func(m *shared.Member) bool {
		return m.Kind == shared.ActorInternal && m.DepartmentID == departmentID && m.Rank >= minRank
	}), nil
}

func (r *MemberRepository) ListAdministrators(ctx context.Context) ([]*shared.Member, error) {
	return r.filter(func(m *shared.Member) bool { return m.IsAdmin }), nil
}

func (r *MemberRepository) filter(keep func(*shared.Member) bool) []*shared.Member {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*shared.Member
	for _, m := range r.store.members {
		if keep(m) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
