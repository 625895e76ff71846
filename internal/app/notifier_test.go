package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bidding-service/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
	"github.com/rs/zerolog"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	seen []uuid.UUID
	fail bool
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, intent notification.Intent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, intent.ID)
	if d.fail {
		return errors.New("transport down")
	}
	return nil
}

func sampleIntents(n int) []notification.Intent {
	out := make([]notification.Intent, n)
	for i := range out {
		out[i] = notification.Intent{
			ID:        uuid.New(),
			Type:      notification.TypeBiddingCreated,
			Recipient: notification.Administrators(),
		}
	}
	return out
}

func TestNotifier_DispatchesEveryIntent(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	n := NewNotifier(NotifierParams{
		Dispatcher:  dispatcher,
		MaxWorkers:  4,
		MaxCapacity: 100,
		Logger:      zerolog.Nop(),
	})

	n.Notify(context.Background(), sampleIntents(10))
	n.Stop()

	check.Equal(t, 10, len(dispatcher.seen))
}

func TestNotifier_FailuresDoNotPropagate(t *testing.T) {
	dispatcher := &recordingDispatcher{fail: true}
	n := NewNotifier(NotifierParams{
		Dispatcher:  dispatcher,
		MaxWorkers:  2,
		MaxCapacity: 10,
		Logger:      zerolog.Nop(),
	})

	n.Notify(context.Background(), sampleIntents(3))
	n.Stop()

	check.Equal(t, 3, len(dispatcher.seen))
}
