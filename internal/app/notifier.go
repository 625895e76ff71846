package app

import (
	"context"
	"time"

	"bidding-service/internal/domain/notification"
	"bidding-service/internal/ports/outbound"

	"github.com/alitto/pond"
	"github.com/rs/zerolog"
)

// IntentSink receives the intents produced by a committed operation
type IntentSink interface {
	Notify(ctx context.Context, intents []notification.Intent)
}

// Notifier hands intents to the dispatcher on a worker pool so that a slow
// or failing transport never blocks or undoes the operation that produced them
type Notifier struct {
	dispatcher outbound.Dispatcher
	pool       *pond.WorkerPool
	timeout    time.Duration
	logger     zerolog.Logger
}

type NotifierParams struct {
	Dispatcher  outbound.Dispatcher
	MaxWorkers  int
	MaxCapacity int
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// NewNotifier creates a new async notifier
func NewNotifier(params NotifierParams) *Notifier {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Notifier{
		dispatcher: params.Dispatcher,
		pool: pond.New(
			params.MaxWorkers,
			params.MaxCapacity,
			pond.Strategy(pond.Balanced()),
		),
		timeout: timeout,
		logger:  params.Logger.With().Str("component", "notifier").Logger(),
	}
}

// Notify queues every intent. A full queue drops the intent with a warning.
func (n *Notifier) Notify(ctx context.Context, intents []notification.Intent) {
	for _, intent := range intents {
		intent := intent
		submitted := n.pool.TrySubmit(func() {
			dispatchCtx, cancel := context.WithTimeout(context.Background(), n.timeout)
			defer cancel()

			if err := n.dispatcher.Dispatch(dispatchCtx, intent); err != nil {
				n.logger.Error().
					Err(err).
					Str("intent_id", intent.ID.String()).
					Str("type", string(intent.Type)).
					Str("recipient", intent.Recipient.String()).
					Msg("Failed to dispatch notification")
				return
			}

			n.logger.Debug().
				Str("intent_id", intent.ID.String()).
				Str("type", string(intent.Type)).
				Str("recipient", intent.Recipient.String()).
				Msg("Notification dispatched")
		})

		if !submitted {
			n.logger.Warn().
				Str("intent_id", intent.ID.String()).
				Str("type", string(intent.Type)).
				Msg("Notification queue full, dropping intent")
		}
	}
}

// Stop waits for queued intents to be dispatched
func (n *Notifier) Stop() {
	n.logger.Info().Msg("Stopping notifier")
	n.pool.StopAndWait()
}
