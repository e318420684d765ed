package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// incrementScript arms the expiry when the key is created, or when an older
// key was left without one. Later increments never extend the window.
var incrementScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) == -1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// decrementScript never creates a key and never goes below zero. DECR and
// INCRBY keep the remaining TTL.
var decrementScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	return 0
end
local n = tonumber(v)
if n > 0 then
	return redis.call('DECR', KEYS[1])
end
if n < 0 then
	redis.call('INCRBY', KEYS[1], -n)
end
return 0
`)

// CounterStore implements ports.CounterStore on Redis.
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore creates a CounterStore wrapping the given Redis client.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

func (s *CounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := incrementScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, storeErr("counter increment", err)
	}
	return n, nil
}

func (s *CounterStore) DecrementIfPositive(ctx context.Context, key string) (int64, error) {
	n, err := decrementScript.Run(ctx, s.client, []string{key}).Int64()
	if err != nil {
		return 0, storeErr("counter decrement", err)
	}
	return n, nil
}

func (s *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("counter get", err)
	}
	return n, nil
}

func (s *CounterStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, storeErr("counter ttl", err)
	}
	// -1 (no expiry) and -2 (missing key) come back as negative durations.
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
