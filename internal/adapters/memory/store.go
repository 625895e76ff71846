package memory

import (
	"sync"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
)

type invitationKey struct {
	biddingID  uuid.UUID
	supplierID uuid.UUID
}

// Store holds every aggregate behind one lock so that multi-entity writes
// are atomic, mirroring a database transaction.
type Store struct {
	mu sync.RWMutex

	biddings        map[uuid.UUID]*bidding.Bidding
	biddingHistory  map[uuid.UUID][]bidding.HistoryRecord
	biddingOrder    []uuid.UUID
	invitations     map[invitationKey]*bidding.Invitation
	participations  map[uuid.UUID]*bidding.Participation
	evaluations     map[uuid.UUID]*bidding.Evaluation
	contracts       map[uuid.UUID]*contract.Contract
	contractHistory map[uuid.UUID][]bidding.HistoryRecord
	orders          map[uuid.UUID]*order.Order
	members         map[uuid.UUID]*shared.Member
}

func NewStore() *Store {
	return &Store{
		biddings:        make(map[uuid.UUID]*bidding.Bidding),
		biddingHistory:  make(map[uuid.UUID][]bidding.HistoryRecord),
		invitations:     make(map[invitationKey]*bidding.Invitation),
		participations:  make(map[uuid.UUID]*bidding.Participation),
		evaluations:     make(map[uuid.UUID]*bidding.Evaluation),
		contracts:       make(map[uuid.UUID]*contract.Contract),
		contractHistory: make(map[uuid.UUID][]bidding.HistoryRecord),
		orders:          make(map[uuid.UUID]*order.Order),
		members:         make(map[uuid.UUID]*shared.Member),
	}
}

// RepositoryFactory hands out repositories sharing one store
type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) *RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) BiddingRepository() *BiddingRepository {
	return &BiddingRepository{store: f.store}
}

func (f *RepositoryFactory) InvitationRepository() *InvitationRepository {
	return &InvitationRepository{store: f.store}
}

func (f *RepositoryFactory) ParticipationRepository() *ParticipationRepository {
	return &ParticipationRepository{store: f.store}
}

func (f *RepositoryFactory) EvaluationRepository() *EvaluationRepository {
	return &EvaluationRepository{store: f.store}
}

func (f *RepositoryFactory) ContractRepository() *ContractRepository {
	return &ContractRepository{store: f.store}
}

func (f *RepositoryFactory) OrderRepository() *OrderRepository {
	return &OrderRepository{store: f.store}
}

func (f *RepositoryFactory) MemberRepository() *MemberRepository {
	return &MemberRepository{store: f.store}
}

// GetAllRepositories returns all repositories with a fresh in-process sequencer
func (f *RepositoryFactory) GetAllRepositories() outbound.Repositories {
	return outbound.Repositories{
		Biddings:       f.BiddingRepository(),
		Invitations:    f.InvitationRepository(),
		Participations: f.ParticipationRepository(),
		Evaluations:    f.EvaluationRepository(),
		Contracts:      f.ContractRepository(),
		Orders:         f.OrderRepository(),
		Members:        f.MemberRepository(),
		Sequencer:      NewSequencer(),
	}
}

func copyBidding(b *bidding.Bidding) *bidding.Bidding {
	c := *b
	return &c
}

func copyInvitation(i *bidding.Invitation) *bidding.Invitation {
	c := *i
	return &c
}

func copyParticipation(p *bidding.Participation) *bidding.Participation {
	c := *p
	return &c
}

func copyEvaluation(e *bidding.Evaluation) *bidding.Evaluation {
	c := *e
	return &c
}

func copyContract(k *contract.Contract) *contract.Contract {
	c := *k
	return &c
}

func copyOrder(o *order.Order) *order.Order {
	c := *o
	return &c
}
