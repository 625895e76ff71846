package bidding

import (
	"errors"
	"testing"
	"time"

	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

var now = time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)

func actor(rank shared.Rank) shared.Actor {
	return shared.Actor{ID: uuid.New(), Kind: shared.ActorInternal, Rank: rank, DepartmentID: uuid.New()}
}

func fixedDraft() Draft {
	return Draft{
		Title:     "Office chairs",
		Method:    MethodFixedPrice,
		Quantity:  10,
		UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		Period:    shared.Period{Start: now.Add(-time.Hour), End: now.Add(48 * time.Hour)},
	}
}

func newBidding(t *testing.T, d Draft) *Bidding {
	t.Helper()
	b, err := New(d, "BID-2025-0001", actor(shared.RankStaff), now)
	assert.NoError(t, err)
	return b
}

func TestNew_ComputesAmounts(t *testing.T) {
	b := newBidding(t, fixedDraft())

	check.Equal(t, StatusPending, b.Status)
	check.Equal(t, "10000", b.Amounts.SupplyPrice.String())
	check.Equal(t, "1000", b.Amounts.Tax.String())
	check.Equal(t, "11000", b.Amounts.Total.String())
}

func TestNew_PriceSuggestionDropsUnitPrice(t *testing.T) {
	d := fixedDraft()
	d.Method = MethodPriceSuggestion

	b := newBidding(t, d)

	check.False(t, b.UnitPrice.Valid)
	check.True(t, b.Amounts.Total.IsZero())
}

func TestDraft_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Draft)
	}{
		{"empty title", func(d *Draft) { d.Title = "  " }},
		{"unknown method", func(d *Draft) { d.Method = "AUCTION" }},
		{"zero quantity", func(d *Draft) { d.Quantity = 0 }},
		{"end before start", func(d *Draft) { d.Period.End = d.Period.Start.Add(-time.Minute) }},
		{"fixed price without price", func(d *Draft) { d.UnitPrice = decimal.NullDecimal{} }},
		{"negative price", func(d *Draft) { d.UnitPrice = decimal.NewNullDecimal(decimal.NewFromInt(-5)) }},
		{"fractional price", func(d *Draft) { d.UnitPrice = decimal.NewNullDecimal(decimal.RequireFromString("12.5")) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := fixedDraft()
			tc.mutate(&d)
			err := d.Validate()
			check.True(t, shared.IsKind(err, shared.KindValidation))
		})
	}
}

func TestTransition_ForwardWalk(t *testing.T) {
	b := newBidding(t, fixedDraft())
	p := policy.Default()
	manager := actor(shared.RankManager)

	rec, err := b.Transition(StatusOngoing, manager, "open", p, now)
	assert.NoError(t, err)
	check.Equal(t, "PENDING", rec.From)
	check.Equal(t, "ONGOING", rec.To)
	check.Equal(t, manager.ID, rec.ActorID)

	_, err = b.Transition(StatusClosed, manager, "", p, now)
	assert.NoError(t, err)
	check.Equal(t, StatusClosed, b.Status)

	_, err = b.Transition(StatusCanceled, actor(shared.RankDirector), "", p, now)
	check.True(t, shared.IsKind(err, shared.KindInvalidTransition))
	check.Equal(t, StatusClosed, b.Status)
}

func TestTransition_Rejections(t *testing.T) {
	p := policy.Default()

	cases := []struct {
		name string
		to   Status
		rank shared.Rank
		kind shared.Kind
	}{
		{"skip to closed", StatusClosed, shared.RankDirector, shared.KindInvalidTransition},
		{"self loop", StatusPending, shared.RankDirector, shared.KindInvalidTransition},
		{"unknown status", Status("ARCHIVED"), shared.RankDirector, shared.KindInvalidTransition},
		{"staff starts", StatusOngoing, shared.RankStaff, shared.KindPermission},
		{"manager cancels", StatusCanceled, shared.RankManager, shared.KindPermission},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBidding(t, fixedDraft())
			_, err := b.Transition(tc.to, actor(tc.rank), "", p, now)
			check.Equal(t, tc.kind, shared.KindOf(err))
			check.Equal(t, StatusPending, b.Status)
		})
	}
}

func TestTransition_StartAfterPeriodEnd(t *testing.T) {
	b := newBidding(t, fixedDraft())
	manager := actor(shared.RankManager)

	_, err := b.Transition(StatusOngoing, manager, "", policy.Default(), b.Period.End.Add(time.Second))
	check.True(t, shared.IsKind(err, shared.KindState))
	check.Equal(t, StatusPending, b.Status)

	_, err = b.Transition(StatusOngoing, manager, "", policy.Default(), b.Period.End)
	check.NoError(t, err)
	check.Equal(t, StatusOngoing, b.Status)
}

func TestStatusTable(t *testing.T) {
	check.True(t, CanTransition(StatusPending, StatusCanceled))
	check.True(t, CanTransition(StatusOngoing, StatusCanceled))
	check.False(t, CanTransition(StatusCanceled, StatusPending))
	check.False(t, CanTransition(StatusClosed, StatusOngoing))
	check.True(t, StatusClosed.Terminal())
	check.True(t, StatusCanceled.Terminal())
	check.False(t, StatusOngoing.Terminal())
}

func TestApply_Reprices(t *testing.T) {
	b := newBidding(t, fixedDraft())
	quantity := int64(20)
	unit := decimal.NewFromInt(500)

	err := b.Apply(Changes{Quantity: &quantity, UnitPrice: &unit}, now)
	assert.NoError(t, err)

	check.Equal(t, "10000", b.Amounts.SupplyPrice.String())
	check.Equal(t, "11000", b.Amounts.Total.String())
}

func TestApply_RejectsInvalidAndLeavesBiddingUnchanged(t *testing.T) {
	b := newBidding(t, fixedDraft())
	bad := shared.Period{Start: now, End: now.Add(-time.Hour)}

	err := b.Apply(Changes{Period: &bad}, now)
	check.True(t, shared.IsKind(err, shared.KindValidation))
	check.Equal(t, fixedDraft().Period.End, b.Period.End)

	b.Status = StatusClosed
	title := "late edit"
	err = b.Apply(Changes{Title: &title}, now)
	check.True(t, shared.IsKind(err, shared.KindState))
}

func TestInvitation_RespondOnce(t *testing.T) {
	inv := NewInvitation(uuid.New(), uuid.New(), actor(shared.RankManager), now)
	check.True(t, inv.Notified)

	assert.NoError(t, inv.Respond(false, "capacity", now))
	check.True(t, inv.IsRejected())
	check.Equal(t, "capacity", inv.Reason)

	err := inv.Respond(true, "", now)
	check.Error(t, err)
	check.True(t, shared.IsKind(err, shared.KindDuplicate))
	check.Equal(t, ResponseRejected, inv.Response)
}

func TestNewParticipation(t *testing.T) {
	b := newBidding(t, fixedDraft())
	b.Status = StatusOngoing
	supplier := uuid.New()

	p, err := NewParticipation(b, supplier, Offer{}, now)
	assert.NoError(t, err)
	check.Equal(t, int64(10), p.Quantity)
	check.Equal(t, "11000", p.Amounts.Total.String())

	_, err = NewParticipation(b, supplier, Offer{UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(900))}, now)
	check.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = NewParticipation(b, supplier, Offer{}, b.Period.End.Add(time.Second))
	check.True(t, errors.Is(err, shared.ErrOutsideBiddingPeriod))

	b.Status = StatusClosed
	_, err = NewParticipation(b, supplier, Offer{}, now)
	check.True(t, errors.Is(err, shared.ErrBiddingNotOpen))
}

func TestNewParticipation_PriceSuggestion(t *testing.T) {
	d := fixedDraft()
	d.Method = MethodPriceSuggestion
	b := newBidding(t, d)
	b.Status = StatusOngoing

	_, err := NewParticipation(b, uuid.New(), Offer{Quantity: 3}, now)
	check.True(t, shared.IsKind(err, shared.KindValidation))

	p, err := NewParticipation(b, uuid.New(), Offer{UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(95)), Quantity: 3}, now)
	assert.NoError(t, err)
	check.Equal(t, "285", p.Amounts.SupplyPrice.String())
	check.Equal(t, "29", p.Amounts.Tax.String())
	check.Equal(t, "314", p.Amounts.Total.String())

	_, err = NewParticipation(b, uuid.New(), Offer{UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.5")), Quantity: 3}, now)
	check.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestWithdraw(t *testing.T) {
	b := newBidding(t, fixedDraft())
	b.Status = StatusOngoing
	p, err := NewParticipation(b, uuid.New(), Offer{}, now)
	assert.NoError(t, err)

	assert.NoError(t, p.Withdraw(b, "pricing error", now))
	check.False(t, p.Active())
	check.True(t, errors.Is(p.Withdraw(b, "again", now), shared.ErrParticipationWithdrawn))

	other, err := NewParticipation(b, uuid.New(), Offer{}, now)
	assert.NoError(t, err)
	b.Status = StatusClosed
	check.True(t, shared.IsKind(other.Withdraw(b, "", now), shared.KindState))
}

func TestScores(t *testing.T) {
	check.Equal(t, 92, Scores{Price: 90, Quality: 95, Delivery: 92, Reliability: 93}.Total())
	check.Equal(t, 80, Scores{Price: 81, Quality: 80, Delivery: 80, Reliability: 80}.Total())

	err := Scores{Price: 101}.Validate()
	check.True(t, shared.IsKind(err, shared.KindValidation))
	err = Scores{Quality: -1}.Validate()
	check.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestNewEvaluation_RequiresClosed(t *testing.T) {
	b := newBidding(t, fixedDraft())
	b.Status = StatusOngoing
	p, err := NewParticipation(b, uuid.New(), Offer{}, now)
	assert.NoError(t, err)

	_, err = NewEvaluation(b, p, uuid.New(), Scores{Price: 80, Quality: 80, Delivery: 80, Reliability: 80}, "", now)
	check.True(t, shared.IsKind(err, shared.KindState))

	b.Status = StatusClosed
	e, err := NewEvaluation(b, p, uuid.New(), Scores{Price: 80, Quality: 80, Delivery: 80, Reliability: 80}, "solid", now)
	assert.NoError(t, err)
	check.Equal(t, 80, e.TotalScore)
	check.Equal(t, p.ID, e.ParticipationID)
}
