package ports

import (
	"context"
	"time"
)

// CounterStore is a shared key/value store of expiring integer counters.
// Every operation is atomic on the store side.
type CounterStore interface {
	// Increment adds one to key and returns the new value. When the increment
	// creates the key (or the key carries no expiry) it expires after window.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	// DecrementIfPositive subtracts one only when the stored value is above
	// zero. A missing key stays missing and its expiry is left alone.
	DecrementIfPositive(ctx context.Context, key string) (int64, error)
	// Get returns the current value, zero when the key does not exist.
	Get(ctx context.Context, key string) (int64, error)
	// TTL returns the remaining lifetime of key, zero when it has none.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
