package app

import (
	"context"
	"time"

	"bidding-service/internal/domain/notification"
	"bidding-service/internal/domain/numbering"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// lifecycle carries what every orchestrator service shares: the per-aggregate
// lock, the rank policy, the clock and the notification sink.
type lifecycle struct {
	locker   outbound.Locker
	policy   *policy.Policy
	notifier IntentSink
	clock    shared.Clock
	logger   zerolog.Logger
}

func newLifecycle(locker outbound.Locker, p *policy.Policy, notifier IntentSink, clock shared.Clock, logger zerolog.Logger) lifecycle {
	if p == nil {
		p = policy.Default()
	}
	if clock == nil {
		clock = shared.SystemClock
	}
	return lifecycle{
		locker:   locker,
		policy:   p,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

func biddingKey(id uuid.UUID) string {
	return "bidding:" + id.String()
}

func contractKey(id uuid.UUID) string {
	return "contract:" + id.String()
}

func (l *lifecycle) now() time.Time {
	return l.clock()
}

// withLock runs fn while holding key so that check-then-apply sequences on
// one aggregate never interleave.
func (l *lifecycle) withLock(ctx context.Context, key string, fn func() error) error {
	release, err := l.locker.Lock(ctx, key)
	if err != nil {
		l.logger.Error().Err(err).Str("lock_key", key).Msg("Failed to acquire lock")
		return err
	}
	defer release()
	return fn()
}

// publish hands committed intents to the sink. It never fails the caller.
func (l *lifecycle) publish(ctx context.Context, intents []notification.Intent) {
	if l.notifier == nil || len(intents) == 0 {
		return
	}
	l.notifier.Notify(ctx, intents)
}

func nextNumber(ctx context.Context, seq outbound.Sequencer, prefix numbering.Prefix, now time.Time) (string, error) {
	dateKey := numbering.DateKey(prefix, now)
	n, err := seq.Next(ctx, string(prefix), dateKey)
	if err != nil {
		return "", err
	}
	return numbering.Format(prefix, dateKey, n), nil
}

func requireSupplier(actor shared.Actor, supplierID uuid.UUID) error {
	if !actor.IsSupplier() || actor.ID != supplierID {
		return shared.Permission("only supplier %s may act on this record", supplierID)
	}
	return nil
}
