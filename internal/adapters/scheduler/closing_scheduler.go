package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const closingsKey = "bidding:closings"

// BiddingCloser closes a bidding whose period has ended
type BiddingCloser interface {
	CloseExpired(ctx context.Context, biddingID uuid.UUID) (*bidding.Bidding, error)
}

// ClosingScheduler keeps pending closings in a Redis sorted set scored by
// period end and closes them as they fall due
type ClosingScheduler struct {
	redis    *redis.Client
	closer   BiddingCloser
	interval time.Duration
	batch    int64
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}
type ClosingSchedulerParams struct {
	RedisClient *redis.Client
	Interval    time.Duration
	Logger      zerolog.Logger
}

func NewClosingScheduler(params ClosingSchedulerParams) *ClosingScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	interval := params.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return &ClosingScheduler{
		redis:    params.RedisClient,
		interval: interval,
		batch:    10,
		logger:   params.Logger.With().Str("component", "closing_scheduler").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ScheduleClosing adds or moves the closing time of a bidding
func (s *ClosingScheduler) ScheduleClosing(ctx context.Context, biddingID uuid.UUID, at time.Time) error {
	err := s.redis.ZAdd(ctx, closingsKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: biddingID.String(),
	}).Err()

	if err != nil {
		s.logger.Error().Err(err).Str("bidding_id", biddingID.String()).Msg("Failed to schedule closing")
		return fmt.Errorf("failed to schedule closing: %w", err)
	}

	s.logger.Info().
		Str("bidding_id", biddingID.String()).
		Time("closes_at", at).
		Msg("Bidding scheduled for closing")

	return nil
}

// CancelClosing removes a bidding from the schedule
func (s *ClosingScheduler) CancelClosing(ctx context.Context, biddingID uuid.UUID) error {
	if err := s.redis.ZRem(ctx, closingsKey, biddingID.String()).Err(); err != nil {
		return fmt.Errorf("failed to cancel closing: %w", err)
	}
	return nil
}

// Start begins the scheduler loop
func (s *ClosingScheduler) Start(closer BiddingCloser) {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting closing scheduler")
	s.closer = closer

	s.wg.Add(1)
	go s.schedulerLoop()
}

// Stop gracefully stops the scheduler
func (s *ClosingScheduler) Stop() {
	s.logger.Info().Msg("Stopping closing scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *ClosingScheduler) schedulerLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.closeDue(time.Now())
		case <-s.ctx.Done():
			s.logger.Info().Msg("Scheduler loop stopped")
			return
		}
	}
}

// closeDue processes biddings whose closing time is at or before now
func (s *ClosingScheduler) closeDue(now time.Time) {
	due, err := s.redis.ZRangeByScore(s.ctx, closingsKey, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: s.batch,
	}).Result()

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read due closings")
		return
	}

	if len(due) > 0 {
		s.logger.Debug().Int("count", len(due)).Msg("Found due closings")
	}

	for _, member := range due {
		// Removing the member claims it; another instance that read the
		// same entry gets zero and skips it
		claimed, err := s.redis.ZRem(s.ctx, closingsKey, member).Result()
		if err != nil || claimed == 0 {
			continue
		}

		biddingID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Error().Err(err).Str("bidding_id", member).Msg("Invalid bidding ID")
			continue
		}

		s.wg.Add(1)
		go s.closeBidding(biddingID, now)
	}
}

func (s *ClosingScheduler) closeBidding(biddingID uuid.UUID, now time.Time) {
	defer s.wg.Done()

	b, err := s.closer.CloseExpired(s.ctx, biddingID)
	if err == nil {
		s.logger.Info().
			Str("bidding_id", biddingID.String()).
			Str("status", string(b.Status)).
			Msg("Bidding closed at period end")
		return
	}

	if retryable(err) {
		retryAt := now.Add(s.interval)
		s.logger.Warn().
			Err(err).
			Str("bidding_id", biddingID.String()).
			Time("retry_at", retryAt).
			Msg("Closing deferred")
		if err := s.ScheduleClosing(s.ctx, biddingID, retryAt); err != nil {
			s.logger.Error().Err(err).Str("bidding_id", biddingID.String()).Msg("Failed to reschedule closing")
		}
		return
	}

	// PENDING, already terminal or deleted: nothing left to close
	s.logger.Info().
		Err(err).
		Str("bidding_id", biddingID.String()).
		Msg("Dropped closing for bidding that cannot be closed")
}

// retryable reports errors that a later attempt may not hit
func retryable(err error) bool {
	switch shared.KindOf(err) {
	case shared.KindConflict, shared.KindInternal:
		return true
	}
	return false
}
