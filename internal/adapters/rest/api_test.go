package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bidding-service/internal/adapters/memory"
	"bidding-service/internal/app"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/rs/zerolog"
)

type testAPI struct {
	handler http.Handler
	repos   *memory.RepositoryFactory
	dept    uuid.UUID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	repos := memory.NewRepositoryFactory(memory.NewStore())
	locker := memory.NewLocker()
	seq := memory.NewSequencer()
	sched := memory.NewClosingScheduler()
	logger := zerolog.Nop()

	api := NewAPI(APIParams{
		BiddingService: app.NewBiddingService(app.BiddingServiceParams{
			BiddingRepo: repos.BiddingRepository(),
			Sequencer:   seq,
			Scheduler:   sched,
			Locker:      locker,
			Logger:      logger,
		}),
		InvitationService: app.NewInvitationService(app.InvitationServiceParams{
			BiddingRepo:    repos.BiddingRepository(),
			InvitationRepo: repos.InvitationRepository(),
			MemberRepo:     repos.MemberRepository(),
			Locker:         locker,
			Logger:         logger,
		}),
		ParticipationService: app.NewParticipationService(app.ParticipationServiceParams{
			BiddingRepo:       repos.BiddingRepository(),
			InvitationRepo:    repos.InvitationRepository(),
			ParticipationRepo: repos.ParticipationRepository(),
			Locker:            locker,
			Logger:            logger,
		}),
		AwardService: app.NewAwardService(app.AwardServiceParams{
			BiddingRepo:       repos.BiddingRepository(),
			ParticipationRepo: repos.ParticipationRepository(),
			EvaluationRepo:    repos.EvaluationRepository(),
			Locker:            locker,
			Logger:            logger,
		}),
		ContractService: app.NewContractService(app.ContractServiceParams{
			BiddingRepo:       repos.BiddingRepository(),
			ParticipationRepo: repos.ParticipationRepository(),
			ContractRepo:      repos.ContractRepository(),
			Sequencer:         seq,
			Locker:            locker,
			Logger:            logger,
		}),
		OrderService: app.NewOrderService(app.OrderServiceParams{
			BiddingRepo:  repos.BiddingRepository(),
			ContractRepo: repos.ContractRepository(),
			OrderRepo:    repos.OrderRepository(),
			Sequencer:    seq,
			Locker:       locker,
			Logger:       logger,
		}),
		MemberRepo: repos.MemberRepository(),
		Logger:     logger,
	})

	return &testAPI{handler: api.Routes(), repos: repos, dept: uuid.New()}
}

func (a *testAPI) member(t *testing.T, kind shared.ActorKind, rank shared.Rank, admin bool) uuid.UUID {
	t.Helper()
	m := &shared.Member{
		ID:           uuid.New(),
		Name:         rank.String(),
		Kind:         kind,
		Rank:         rank,
		DepartmentID: a.dept,
		IsAdmin:      admin,
	}
	assert.NoError(t, a.repos.MemberRepository().Create(context.Background(), m))
	return m.ID
}

func (a *testAPI) do(t *testing.T, method, path string, memberID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if memberID != uuid.Nil {
		req.Header.Set(memberHeader, memberID.String())
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func biddingBody() map[string]any {
	now := time.Now().UTC()
	return map[string]any{
		"title":      "Office chairs",
		"method":     "FIXED_PRICE",
		"quantity":   10,
		"unit_price": "1000",
		"start_date": now.Add(-time.Hour),
		"end_date":   now.Add(30 * 24 * time.Hour),
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[shared.Kind]int{
		shared.KindNotFound:          http.StatusNotFound,
		shared.KindInvalidTransition: http.StatusConflict,
		shared.KindPermission:        http.StatusForbidden,
		shared.KindDuplicate:         http.StatusConflict,
		shared.KindValidation:        http.StatusBadRequest,
		shared.KindState:             http.StatusConflict,
		shared.KindConflict:          http.StatusConflict,
		shared.KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		check.Equal(t, want, statusFor(kind))
	}
}

func TestAuthenticate(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/biddings", uuid.Nil, nil)
	check.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/biddings", uuid.New(), nil)
	check.Equal(t, http.StatusUnauthorized, rec.Code)

	staff := a.member(t, shared.ActorInternal, shared.RankStaff, false)
	rec = a.do(t, http.MethodGet, "/members/me", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	check.Equal[any](t, staff.String(), decodeBody(t, rec)["id"])
}

func TestBiddingLifecycleOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	staff := a.member(t, shared.ActorInternal, shared.RankStaff, false)
	manager := a.member(t, shared.ActorInternal, shared.RankManager, false)
	supplier := a.member(t, shared.ActorSupplier, shared.RankNone, false)

	rec := a.do(t, http.MethodPost, "/biddings", staff, biddingBody())
	assert.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	biddingID := created["id"].(string)
	check.Equal(t, "PENDING", created["status"])
	check.Equal(t, "11000", created["amounts"].(map[string]any)["total"])

	statusPath := fmt.Sprintf("/biddings/%s/status", biddingID)

	rec = a.do(t, http.MethodPost, statusPath, staff, statusRequest{Status: "ONGOING"})
	check.Equal(t, http.StatusForbidden, rec.Code)
	check.Equal(t, "permission", decodeBody(t, rec)["kind"])

	rec = a.do(t, http.MethodPost, statusPath, manager, statusRequest{Status: "ONGOING"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/biddings/%s/participations", biddingID), supplier, map[string]any{})
	assert.Equal(t, http.StatusCreated, rec.Code)
	check.Equal[any](t, supplier.String(), decodeBody(t, rec)["supplier_id"])

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/biddings/%s/participations", biddingID), supplier, map[string]any{})
	check.Equal(t, http.StatusConflict, rec.Code)
	check.Equal(t, "duplicate", decodeBody(t, rec)["kind"])

	rec = a.do(t, http.MethodPost, statusPath, manager, statusRequest{Status: "PENDING"})
	check.Equal(t, http.StatusConflict, rec.Code)
	check.Equal(t, "invalid_transition", decodeBody(t, rec)["kind"])

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/biddings/%s/history", biddingID), staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	check.Equal(t, 2, len(history))
}

func TestErrorsOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	staff := a.member(t, shared.ActorInternal, shared.RankStaff, false)

	rec := a.do(t, http.MethodGet, "/biddings/"+uuid.NewString(), staff, nil)
	check.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/biddings/not-a-uuid", staff, nil)
	check.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/biddings", bytes.NewBufferString("{"))
	req.Header.Set(memberHeader, staff.String())
	raw := httptest.NewRecorder()
	a.handler.ServeHTTP(raw, req)
	check.Equal(t, http.StatusBadRequest, raw.Code)

	body := biddingBody()
	body["quantity"] = 0
	rec = a.do(t, http.MethodPost, "/biddings", staff, body)
	check.Equal(t, http.StatusBadRequest, rec.Code)
	check.Equal(t, "validation", decodeBody(t, rec)["kind"])
}

func TestCreateMember_AdministratorsOnly(t *testing.T) {
	a := newTestAPI(t)
	admin := a.member(t, shared.ActorInternal, shared.RankDirector, true)
	director := a.member(t, shared.ActorInternal, shared.RankDirector, false)

	body := memberRequest{Name: "Acme Supplies", Kind: shared.ActorSupplier}

	rec := a.do(t, http.MethodPost, "/members", director, body)
	check.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/members", admin, body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	check.Equal(t, "SUPPLIER", created["kind"])

	rec = a.do(t, http.MethodPost, "/members", admin, memberRequest{Name: "Bad", Kind: shared.ActorSupplier, Rank: shared.RankManager})
	check.Equal(t, http.StatusBadRequest, rec.Code)
}
