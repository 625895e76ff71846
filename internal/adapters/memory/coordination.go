package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sequencer counts per (prefix, date key) in process memory
type Sequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequencer() *Sequencer {
	return &Sequencer{counters: make(map[string]int64)}
}

func (s *Sequencer) Next(ctx context.Context, prefix, dateKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := prefix + ":" + dateKey
	s.counters[key]++
	return s.counters[key], nil
}

// Locker is a keyed mutex. Each key owns a one-slot channel so waiting
// callers can give up when their context ends.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocker() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ClosingScheduler records requested closings without acting on them.
// Without Redis the process has no durable timer, so biddings are closed
// manually or by a later run with Redis configured.
type ClosingScheduler struct {
	mu        sync.Mutex
	scheduled map[uuid.UUID]time.Time
}

func NewClosingScheduler() *ClosingScheduler {
	return &ClosingScheduler{scheduled: make(map[uuid.UUID]time.Time)}
}

func (s *ClosingScheduler) ScheduleClosing(ctx context.Context, biddingID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[biddingID] = at
	return nil
}

func (s *ClosingScheduler) CancelClosing(ctx context.Context, biddingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, biddingID)
	return nil
}

// Scheduled reports the closing time recorded for a bidding.
func (s *ClosingScheduler) Scheduled(biddingID uuid.UUID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.scheduled[biddingID]
	return at, ok
}
