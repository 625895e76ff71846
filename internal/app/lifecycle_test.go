package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/contract"
	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestCreateBidding_ComputesAmountsAndSchedulesClosing(t *testing.T) {
	h := newHarness(t)

	b, intents, err := h.biddings.CreateBidding(h.ctx, fixedPriceRequest(), h.member(t, shared.RankStaff))
	assert.NoError(t, err)

	check.Equal(t, bidding.StatusPending, b.Status)
	check.Equal(t, "BID-2025-0001", b.BidNumber)
	check.Equal(t, "10000", b.Amounts.SupplyPrice.String())
	check.Equal(t, "1000", b.Amounts.Tax.String())
	check.Equal(t, "11000", b.Amounts.Total.String())
	check.Equal(t, 1, len(intents))
	check.Equal(t, notification.TypeBiddingCreated, intents[0].Type)

	at, ok := h.sched.Scheduled(b.ID)
	check.True(t, ok)
	check.Equal(t, b.Period.End, at)

	history, err := h.biddings.GetBiddingHistory(h.ctx, b.ID)
	assert.NoError(t, err)
	check.Equal(t, 1, len(history))
	check.Equal(t, "PENDING", history[0].To)
}

func TestChangeBiddingStatus_StaffCannotStart(t *testing.T) {
	h := newHarness(t)
	b, _, err := h.biddings.CreateBidding(h.ctx, fixedPriceRequest(), h.member(t, shared.RankStaff))
	assert.NoError(t, err)

	_, _, err = h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusOngoing, "", h.member(t, shared.RankStaff))
	check.True(t, shared.IsKind(err, shared.KindPermission))

	stored, err := h.biddings.GetBidding(h.ctx, b.ID)
	assert.NoError(t, err)
	check.Equal(t, bidding.StatusPending, stored.Status)
}

func TestChangeBiddingStatus_CanceledIsFinal(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	director := h.member(t, shared.RankDirector)

	_, _, err := h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusCanceled, "budget cut", director)
	assert.NoError(t, err)

	_, scheduled := h.sched.Scheduled(b.ID)
	check.False(t, scheduled)

	_, _, err = h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusOngoing, "", director)
	check.True(t, shared.IsKind(err, shared.KindInvalidTransition))
}

func TestChangeBiddingStatus_ExpiredPendingCannotStart(t *testing.T) {
	h := newHarness(t)
	req := fixedPriceRequest()
	req.StartDate = base.Add(-48 * time.Hour)
	req.EndDate = base.Add(-24 * time.Hour)

	b, _, err := h.biddings.CreateBidding(h.ctx, req, h.member(t, shared.RankStaff))
	assert.NoError(t, err)

	_, _, err = h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusOngoing, "", h.member(t, shared.RankManager))
	check.True(t, shared.IsKind(err, shared.KindState))

	stored, err := h.biddings.GetBidding(h.ctx, b.ID)
	assert.NoError(t, err)
	check.Equal(t, bidding.StatusPending, stored.Status)
}

func TestUpdateBidding_RepricesAndGatesByStatus(t *testing.T) {
	h := newHarness(t)
	staff := h.member(t, shared.RankStaff)
	b, _, err := h.biddings.CreateBidding(h.ctx, fixedPriceRequest(), staff)
	assert.NoError(t, err)

	quantity := int64(20)
	updated, _, err := h.biddings.UpdateBidding(h.ctx, b.ID, inbound.UpdateBiddingRequest{Quantity: &quantity}, staff)
	assert.NoError(t, err)
	check.Equal(t, "20000", updated.Amounts.SupplyPrice.String())
	check.Equal(t, "22000", updated.Amounts.Total.String())

	_, _, err = h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusOngoing, "", h.member(t, shared.RankManager))
	assert.NoError(t, err)

	_, _, err = h.biddings.UpdateBidding(h.ctx, b.ID, inbound.UpdateBiddingRequest{Quantity: &quantity}, staff)
	check.True(t, shared.IsKind(err, shared.KindPermission))

	zero := int64(0)
	_, _, err = h.biddings.UpdateBidding(h.ctx, b.ID, inbound.UpdateBiddingRequest{Quantity: &zero}, h.member(t, shared.RankManager))
	check.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestSubmitParticipation_DuplicateRejected(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)

	p := h.submit(t, b, supplier)
	check.Equal(t, "11000", p.Amounts.Total.String())

	_, _, err := h.participations.SubmitParticipation(h.ctx, inbound.SubmitParticipationRequest{
		BiddingID:  b.ID,
		SupplierID: supplier.ID,
	}, supplier)
	check.True(t, errors.Is(err, shared.ErrDuplicateParticipation))
}

func TestSubmitParticipation_ConcurrentDuplicates(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := h.participations.SubmitParticipation(h.ctx, inbound.SubmitParticipationRequest{
				BiddingID:  b.ID,
				SupplierID: supplier.ID,
			}, supplier)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, shared.ErrDuplicateParticipation) {
				dupes++
			}
		}()
	}
	wg.Wait()

	check.Equal(t, 1, succeeded)
	check.Equal(t, attempts-1, dupes)
}

func TestSubmitParticipation_RejectedInvitationBlocks(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)

	_, _, err := h.invitations.InviteSupplier(h.ctx, b.ID, supplier.ID, h.member(t, shared.RankManager))
	assert.NoError(t, err)

	_, _, err = h.invitations.RespondToInvitation(h.ctx, inbound.RespondToInvitationRequest{
		BiddingID:  b.ID,
		SupplierID: supplier.ID,
		Accept:     false,
		Comment:    "no capacity",
	}, supplier)
	assert.NoError(t, err)

	_, _, err = h.participations.SubmitParticipation(h.ctx, inbound.SubmitParticipationRequest{
		BiddingID:  b.ID,
		SupplierID: supplier.ID,
	}, supplier)
	check.True(t, errors.Is(err, shared.ErrInvitationRejected))
}

func TestSubmitParticipation_SupplierActsForItself(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)
	other := h.supplier(t)

	_, _, err := h.participations.SubmitParticipation(h.ctx, inbound.SubmitParticipationRequest{
		BiddingID:  b.ID,
		SupplierID: supplier.ID,
	}, other)
	check.True(t, shared.IsKind(err, shared.KindPermission))
}

func TestInviteSupplier_RespondOnce(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)

	inv, intents, err := h.invitations.InviteSupplier(h.ctx, b.ID, supplier.ID, h.member(t, shared.RankManager))
	assert.NoError(t, err)
	check.True(t, inv.Notified)
	check.Equal(t, notification.TypeSupplierInvited, intents[0].Type)

	_, _, err = h.invitations.InviteSupplier(h.ctx, b.ID, supplier.ID, h.member(t, shared.RankManager))
	check.True(t, errors.Is(err, shared.ErrDuplicateInvitation))

	req := inbound.RespondToInvitationRequest{BiddingID: b.ID, SupplierID: supplier.ID, Accept: true}
	_, _, err = h.invitations.RespondToInvitation(h.ctx, req, supplier)
	assert.NoError(t, err)
	_, _, err = h.invitations.RespondToInvitation(h.ctx, req, supplier)
	check.True(t, errors.Is(err, shared.ErrAlreadyResponded))
}

func TestEvaluate_RequiresClosedBidding(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	p := h.submit(t, b, h.supplier(t))

	_, _, err := h.awards.Evaluate(h.ctx, inbound.EvaluateRequest{
		ParticipationID: p.ID,
		Scores:          bidding.Scores{Price: 80, Quality: 80, Delivery: 80, Reliability: 80},
	}, h.member(t, shared.RankSeniorManager))
	check.True(t, shared.IsKind(err, shared.KindState))
}

func TestSelectWinner_HighestScoreWins(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	first := h.submit(t, b, h.supplier(t))
	second := h.submit(t, b, h.supplier(t))
	third := h.submit(t, b, h.supplier(t))

	_, _, err := h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusClosed, "", h.member(t, shared.RankManager))
	assert.NoError(t, err)

	evaluator := h.member(t, shared.RankSeniorManager)
	h.evaluate(t, first, 80, evaluator)
	h.evaluate(t, second, 92, evaluator)

	winner, intents, err := h.awards.SelectWinner(h.ctx, b.ID, evaluator)
	assert.NoError(t, err)
	check.Equal(t, second.ID, winner.ParticipationID)
	check.Equal(t, 92, winner.TotalScore)
	check.True(t, winner.Selected)
	check.Equal(t, []uuid.UUID{second.ID}, h.winners(t, b.ID))
	check.Equal(t, notification.TypeWinnerSelected, intents[0].Type)

	// a later tie does not move the winner until selection runs again
	h.evaluate(t, third, 92, evaluator)
	check.Equal(t, []uuid.UUID{second.ID}, h.winners(t, b.ID))

	again, _, err := h.awards.SelectWinner(h.ctx, b.ID, evaluator)
	assert.NoError(t, err)
	check.Equal(t, second.ID, again.ParticipationID)
	check.Equal(t, []uuid.UUID{second.ID}, h.winners(t, b.ID))
}

func TestSelectWinner_OngoingBiddingNeedsClose(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	h.submit(t, b, h.supplier(t))

	_, _, err := h.awards.SelectWinner(h.ctx, b.ID, h.member(t, shared.RankDirector))
	check.True(t, shared.IsKind(err, shared.KindState))
	check.False(t, errors.Is(err, shared.ErrNoEvaluations))

	stored, err := h.biddings.GetBidding(h.ctx, b.ID)
	assert.NoError(t, err)
	check.Equal(t, bidding.StatusOngoing, stored.Status)
}

func TestSelectWinner_ClosedWithoutEvaluations(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	h.submit(t, b, h.supplier(t))

	_, _, err := h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusClosed, "", h.member(t, shared.RankManager))
	assert.NoError(t, err)

	_, _, err = h.awards.SelectWinner(h.ctx, b.ID, h.member(t, shared.RankSeniorManager))
	check.True(t, errors.Is(err, shared.ErrNoEvaluations))
}

func TestSelectWinner_PendingBidding(t *testing.T) {
	h := newHarness(t)
	b, _, err := h.biddings.CreateBidding(h.ctx, fixedPriceRequest(), h.member(t, shared.RankStaff))
	assert.NoError(t, err)

	_, _, err = h.awards.SelectWinner(h.ctx, b.ID, h.member(t, shared.RankDirector))
	check.True(t, shared.IsKind(err, shared.KindState))
}

func TestCloseExpired_RunsAsSystem(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)

	closed, err := h.biddings.CloseExpired(h.ctx, b.ID)
	assert.NoError(t, err)
	check.Equal(t, bidding.StatusClosed, closed.Status)

	history, err := h.biddings.GetBiddingHistory(h.ctx, b.ID)
	assert.NoError(t, err)
	last := history[len(history)-1]
	check.Equal(t, uuid.Nil, last.ActorID)
	check.Equal(t, "CLOSED", last.To)
}

func TestFullLifecycle_ContractAndOrder(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)
	p := h.submit(t, b, supplier)

	senior := h.member(t, shared.RankSeniorManager)
	manager := h.member(t, shared.RankManager)
	director := h.member(t, shared.RankDirector)

	_, _, err := h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusClosed, "", manager)
	assert.NoError(t, err)
	h.evaluate(t, p, 85, senior)
	_, _, err = h.awards.SelectWinner(h.ctx, b.ID, senior)
	assert.NoError(t, err)

	c, _, err := h.contracts.DraftContract(h.ctx, inbound.DraftContractRequest{
		BiddingID:       b.ID,
		ParticipationID: p.ID,
	}, senior)
	assert.NoError(t, err)
	check.Equal(t, contract.StatusDraft, c.Status)
	check.Equal(t, "11000", c.Amounts.Total.String())
	check.Equal(t, "CNT-20250303-0001", c.TransactionNumber)

	_, _, err = h.contracts.DraftContract(h.ctx, inbound.DraftContractRequest{
		BiddingID:       b.ID,
		ParticipationID: p.ID,
	}, senior)
	check.True(t, errors.Is(err, shared.ErrDuplicateContract))

	_, _, err = h.orders.IssueOrder(h.ctx, c.ID, manager)
	check.True(t, shared.IsKind(err, shared.KindState))

	_, _, err = h.contracts.ChangeContractStatus(h.ctx, c.ID, contract.StatusInProgress, "sent for signature", manager)
	assert.NoError(t, err)

	_, _, err = h.contracts.ChangeContractStatus(h.ctx, c.ID, contract.StatusClosed, "", manager)
	check.True(t, shared.IsKind(err, shared.KindInvalidTransition))

	c, _, err = h.contracts.SignContract(h.ctx, c.ID, contract.RoleBuyer, "buyer-sig", manager)
	assert.NoError(t, err)
	check.Equal(t, contract.StatusInProgress, c.Status)

	_, _, err = h.orders.IssueOrder(h.ctx, c.ID, manager)
	check.True(t, errors.Is(err, shared.ErrContractNotSigned))

	_, _, err = h.contracts.SignContract(h.ctx, c.ID, contract.RoleSupplier, "supplier-sig", h.supplier(t))
	check.True(t, shared.IsKind(err, shared.KindPermission))

	c, intents, err := h.contracts.SignContract(h.ctx, c.ID, contract.RoleSupplier, "supplier-sig", supplier)
	assert.NoError(t, err)
	check.Equal(t, contract.StatusClosed, c.Status)
	check.True(t, c.FullySigned())
	check.NotEqual(t, 0, len(intents))

	history, err := h.contracts.GetContractHistory(h.ctx, c.ID)
	assert.NoError(t, err)
	check.Equal(t, 3, len(history))

	o, _, err := h.orders.IssueOrder(h.ctx, c.ID, manager)
	assert.NoError(t, err)
	check.Equal(t, order.StatusRequested, o.Status)
	check.Equal(t, "ORD-20250303-0001", o.OrderNumber)
	check.Equal(t, "11000", o.Amounts.Total.String())

	_, _, err = h.orders.IssueOrder(h.ctx, c.ID, manager)
	check.True(t, errors.Is(err, shared.ErrDuplicateOrder))

	stored, err := h.repos.ParticipationRepository().GetByID(h.ctx, p.ID)
	assert.NoError(t, err)
	check.True(t, stored.OrderCreated)

	_, _, err = h.orders.ApproveOrder(h.ctx, o.ID, true, "", manager)
	check.True(t, shared.IsKind(err, shared.KindPermission))

	o, _, err = h.orders.ApproveOrder(h.ctx, o.ID, true, "ok", director)
	assert.NoError(t, err)
	check.Equal(t, order.StatusApproved, o.Status)
}

func TestDraftContract_RequiresWinner(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	winner := h.submit(t, b, h.supplier(t))
	loser := h.submit(t, b, h.supplier(t))

	senior := h.member(t, shared.RankSeniorManager)
	_, _, err := h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusClosed, "", senior)
	assert.NoError(t, err)
	h.evaluate(t, winner, 90, senior)
	h.evaluate(t, loser, 70, senior)
	_, _, err = h.awards.SelectWinner(h.ctx, b.ID, senior)
	assert.NoError(t, err)

	_, _, err = h.contracts.DraftContract(h.ctx, inbound.DraftContractRequest{
		BiddingID:       b.ID,
		ParticipationID: loser.ID,
	}, senior)
	check.True(t, errors.Is(err, shared.ErrNotWinner))
}

func TestWithdrawParticipation_ExcludedFromAward(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	supplier := h.supplier(t)
	withdrawn := h.submit(t, b, supplier)
	kept := h.submit(t, b, h.supplier(t))

	_, err := h.participations.WithdrawParticipation(h.ctx, withdrawn.ID, "price error", supplier)
	assert.NoError(t, err)

	senior := h.member(t, shared.RankSeniorManager)
	_, _, err = h.biddings.ChangeBiddingStatus(h.ctx, b.ID, bidding.StatusClosed, "", senior)
	assert.NoError(t, err)
	h.evaluate(t, kept, 60, senior)

	winner, _, err := h.awards.SelectWinner(h.ctx, b.ID, senior)
	assert.NoError(t, err)
	check.Equal(t, kept.ID, winner.ParticipationID)
}

func TestNotifications_PublishedAfterCommit(t *testing.T) {
	h := newHarness(t)
	b := h.openBidding(t)
	h.submit(t, b, h.supplier(t))

	types := h.sink.Types()
	check.Equal(t, notification.TypeBiddingCreated, types[0])
	check.Equal(t, notification.TypeParticipationSubmitted, types[len(types)-1])
}
