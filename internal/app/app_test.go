package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"bidding-service/internal/adapters/memory"
	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var base = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

// steppingClock advances one minute per reading so submission and
// evaluation times are strictly ordered.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type recordingSink struct {
	mu      sync.Mutex
	intents []notification.Intent
}

func (r *recordingSink) Notify(ctx context.Context, intents []notification.Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intents...)
}

func (r *recordingSink) Types() []notification.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Type, 0, len(r.intents))
	for _, i := range r.intents {
		out = append(out, i.Type)
	}
	return out
}

type harness struct {
	ctx   context.Context
	repos *memory.RepositoryFactory
	sched *memory.ClosingScheduler
	sink  *recordingSink
	dept  uuid.UUID

	biddings       *BiddingService
	invitations    *InvitationService
	participations *ParticipationService
	awards         *AwardService
	contracts      *ContractService
	orders         *OrderService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repos := memory.NewRepositoryFactory(memory.NewStore())
	locker := memory.NewLocker()
	seq := memory.NewSequencer()
	sched := memory.NewClosingScheduler()
	sink := &recordingSink{}
	clock := &steppingClock{now: base}
	logger := zerolog.Nop()

	return &harness{
		ctx:   context.Background(),
		repos: repos,
		sched: sched,
		sink:  sink,
		dept:  uuid.New(),
		biddings: NewBiddingService(BiddingServiceParams{
			BiddingRepo: repos.BiddingRepository(),
			Sequencer:   seq,
			Scheduler:   sched,
			Locker:      locker,
			Notifier:    sink,
			Clock:       clock.Now,
			Logger:      logger,
		}),
		invitations: NewInvitationService(InvitationServiceParams{
			BiddingRepo:    repos.BiddingRepository(),
			InvitationRepo: repos.InvitationRepository(),
			MemberRepo:     repos.MemberRepository(),
			Locker:         locker,
			Notifier:       sink,
			Clock:          clock.Now,
			Logger:         logger,
		}),
		participations: NewParticipationService(ParticipationServiceParams{
			BiddingRepo:       repos.BiddingRepository(),
			InvitationRepo:    repos.InvitationRepository(),
			ParticipationRepo: repos.ParticipationRepository(),
			Locker:            locker,
			Notifier:          sink,
			Clock:             clock.Now,
			Logger:            logger,
		}),
		awards: NewAwardService(AwardServiceParams{
			BiddingRepo:       repos.BiddingRepository(),
			ParticipationRepo: repos.ParticipationRepository(),
			EvaluationRepo:    repos.EvaluationRepository(),
			Locker:            locker,
			Notifier:          sink,
			Clock:             clock.Now,
			Logger:            logger,
		}),
		contracts: NewContractService(ContractServiceParams{
			BiddingRepo:       repos.BiddingRepository(),
			ParticipationRepo: repos.ParticipationRepository(),
			ContractRepo:      repos.ContractRepository(),
			Sequencer:         seq,
			Locker:            locker,
			Notifier:          sink,
			Clock:             clock.Now,
			Logger:            logger,
		}),
		orders: NewOrderService(OrderServiceParams{
			BiddingRepo:  repos.BiddingRepository(),
			ContractRepo: repos.ContractRepository(),
			OrderRepo:    repos.OrderRepository(),
			Sequencer:    seq,
			Locker:       locker,
			Notifier:     sink,
			Clock:        clock.Now,
			Logger:       logger,
		}),
	}
}

func (h *harness) member(t *testing.T, rank shared.Rank) shared.Actor {
	t.Helper()
	m := &shared.Member{ID: uuid.New(), Name: rank.String(), Kind: shared.ActorInternal, Rank: rank, DepartmentID: h.dept, CreatedAt: base}
	assert.NoError(t, h.repos.MemberRepository().Create(h.ctx, m))
	return shared.ActorFromMember(m)
}

func (h *harness) supplier(t *testing.T) shared.Actor {
	t.Helper()
	m := &shared.Member{ID: uuid.New(), Name: "supplier", Kind: shared.ActorSupplier, CreatedAt: base}
	assert.NoError(t, h.repos.MemberRepository().Create(h.ctx, m))
	return shared.ActorFromMember(m)
}

func fixedPriceRequest() inbound.CreateBiddingRequest {
	unit := decimal.NewFromInt(1000)
	return inbound.CreateBiddingRequest{
		Title:     "Office chairs",
		Method:    bidding.MethodFixedPrice,
		Quantity:  10,
		UnitPrice: &unit,
		StartDate: base,
		EndDate:   base.Add(30 * 24 * time.Hour),
	}
}

func (h *harness) openBidding(t *testing.T) *bidding.Bidding {
	t.Helper()
	b, _, err := h.biddings.CreateBidding(h.ctx, fixedPriceRequest(), h.member(t, shared.RankStaff))
	assert.NoError(t, err)
	b, _, err = h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusOngoing, "", h.member(t, shared.RankManager))
	assert.NoError(t, err)
	return b
}

func (h *harness) submit(t *testing.T, b *bidding.Bidding, supplier shared.Actor) *bidding.Participation {
	t.Helper()
	p, _, err := h.participations.SubmitParticipation(h.ctx, inbound.SubmitParticipationRequest{
		BiddingID:  b.ID,
		SupplierID: supplier.ID,
	}, supplier)
	assert.NoError(t, err)
	return p
}

func (h *harness) evaluate(t *testing.T, p *bidding.Participation, score int, evaluator shared.Actor) *bidding.Evaluation {
	t.Helper()
	e, _, err := h.awards.Evaluate(h.ctx, inbound.EvaluateRequest{
		ParticipationID: p.ID,
		Scores:          bidding.Scores{Price: score, Quality: score, Delivery: score, Reliability: score},
	}, evaluator)
	assert.NoError(t, err)
	return e
}

func (h *harness) winners(t *testing.T, biddingID uuid.UUID) []uuid.UUID {
	t.Helper()
	parts, err := h.repos.ParticipationRepository().ListByBidding(h.ctx, biddingID)
	assert.NoError(t, err)
	var out []uuid.UUID
	for _, p := range parts {
		if p.Winner {
			out = append(out, p.ID)
		}
	}
	return out
}
