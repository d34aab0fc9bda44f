package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

const (
	seedLockKey  = "mediation:seed:lock"
	seedLockTTL  = 30 * time.Second
	seedLockWait = 10 * time.Second
	seedLockPoll = 100 * time.Millisecond
)

// ErrSeedLocked is returned when another instance holds the seed lock for
// longer than the wait allows.
var ErrSeedLocked = errors.New("seed lock held by another instance")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// SeedLock serializes seed runs across gateway instances sharing a store.
// Key format: mediation:seed:lock, value is a per-acquire token.
type SeedLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	wait   time.Duration
}

// NewSeedLock creates a SeedLock wrapping the given Redis client.
func NewSeedLock(client *redis.Client) *SeedLock {
	return &SeedLock{client: client, key: seedLockKey, ttl: seedLockTTL, wait: seedLockWait}
}

var _ ports.SeedLocker = (*SeedLock)(nil)

// Acquire blocks until the lock is taken, ctx ends, or the wait elapses.
// The returned release is safe to call after the TTL has expired.
func (l *SeedLock) Acquire(ctx context.Context) (func(), error) {
	token := primitive.NewObjectID().Hex()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("seed lock: %w", err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrSeedLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(seedLockPoll):
		}
	}
}
