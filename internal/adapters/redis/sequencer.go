package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequencer numbers documents with INCR on one key per (prefix, date)
type Sequencer struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSequencer creates a Redis sequencer. Counters expire after ttl so
// daily keys do not accumulate; zero keeps them forever.
func NewSequencer(client *redis.Client, ttl time.Duration) *Sequencer {
	return &Sequencer{client: client, ttl: ttl}
}

func (s *Sequencer) Next(ctx context.Context, prefix, dateKey string) (int64, error) {
	key := fmt.Sprintf("seq:%s:%s", prefix, dateKey)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key, err)
	}

	return incr.Val(), nil
}
