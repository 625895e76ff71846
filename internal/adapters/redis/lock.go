package redis

import (
	"context"
	"time"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const lockPrefix = "lock:"

// releaseScript deletes the key only when it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a per-key distributed mutex built on SET NX PX
type Locker struct {
	client     *redis.Client
	ttl        time.Duration
	retryEvery time.Duration
	logger     zerolog.Logger
}

type LockerParams struct {
	RedisClient *redis.Client
	TTL         time.Duration
	Logger      zerolog.Logger
}

// NewLocker creates a new Redis-backed locker
func NewLocker(params LockerParams) *Locker {
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{
		client:     params.RedisClient,
		ttl:        ttl,
		retryEvery: 25 * time.Millisecond,
		logger:     params.Logger.With().Str("component", "redis_locker").Logger(),
	}
}

// Lock blocks until key is acquired, the TTL elapses or ctx is done
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := lockPrefix + key

	deadline := time.NewTimer(l.ttl)
	defer deadline.Stop()
	ticker := time.NewTicker(l.retryEvery)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			l.logger.Warn().Str("lock_key", key).Msg("Gave up waiting for lock")
			return nil, shared.ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(redisKey, token string) func() {
	return func() {
		// The caller's context may already be done; release regardless
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Error().Err(err).Str("lock_key", redisKey).Msg("Failed to release lock")
		}
	}
}
