package memory

import (
	"context"
	"testing"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/order"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestParticipationUpdate_KeepsOrderFlag(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryFactory(NewStore())
	participations := repos.ParticipationRepository()

	p := &bidding.Participation{
		ID:          uuid.New(),
		BiddingID:   uuid.New(),
		SupplierID:  uuid.New(),
		Quantity:    3,
		SubmittedAt: time.Now(),
	}
	assert.NoError(t, participations.Create(ctx, p))

	// read before the order lands, written back after it
	stale, err := participations.GetByID(ctx, p.ID)
	assert.NoError(t, err)

	assert.NoError(t, repos.OrderRepository().Create(ctx, &order.Order{
		ID:              uuid.New(),
		BiddingID:       p.BiddingID,
		ContractID:      uuid.New(),
		ParticipationID: p.ID,
		SupplierID:      p.SupplierID,
	}))

	confirmedAt := time.Now()
	stale.Confirmed = true
	stale.ConfirmedAt = &confirmedAt
	stale.Winner = true
	assert.NoError(t, participations.Update(ctx, stale))

	got, err := participations.GetByID(ctx, p.ID)
	assert.NoError(t, err)
	check.True(t, got.Confirmed)
	check.True(t, got.OrderCreated)
	check.False(t, got.Winner)
}

func TestParticipationUpdate_NotFound(t *testing.T) {
	repos := NewRepositoryFactory(NewStore())
	err := repos.ParticipationRepository().Update(context.Background(), &bidding.Participation{ID: uuid.New()})
	check.True(t, shared.IsKind(err, shared.KindNotFound))
}
