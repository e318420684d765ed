package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/api/metrics"
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const (
	DefaultIssueLimit  = 2
	DefaultIssueWindow = 24 * time.Hour
)

// RateLimiter caps issue creation per user over a fixed window. The window
// starts with the first creation and is never extended by later ones.
type RateLimiter struct {
	store  ports.CounterStore
	max    int
	window time.Duration
	log    zerolog.Logger
}

// NewRateLimiter returns a limiter allowing limit creations per window. Non-positive
// values fall back to DefaultIssueLimit and DefaultIssueWindow.
func NewRateLimiter(store ports.CounterStore, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	if limit <= 0 {
		limit = DefaultIssueLimit
	}
	if window <= 0 {
		window = DefaultIssueWindow
	}
	return &RateLimiter{store: store, max: limit, window: window, log: log}
}

// CheckAndIncrement consumes one slot for userID and reports whether it was
// available. A blocked attempt gives its increment back, so the counter never
// rises above max and a later Release frees exactly one slot.
func (l *RateLimiter) CheckAndIncrement(ctx context.Context, userID string) (bool, error) {
	key := l.key(userID)

	n, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		metrics.RateLimitDecisionsTotal.WithLabelValues("error").Inc()
		return false, unavailable(err)
	}
	if n <= int64(l.max) {
		metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
		return true, nil
	}

	if _, err := l.store.DecrementIfPositive(ctx, key); err != nil {
		l.log.Warn().Err(err).Str("user_id", userID).Msg("failed to undo blocked increment")
	}
	metrics.RateLimitDecisionsTotal.WithLabelValues("blocked").Inc()
	return false, nil
}

// Release returns one slot to userID, e.g. after the issue it paid for was
// deleted. It is a no-op once the window has expired.
func (l *RateLimiter) Release(ctx context.Context, userID string) error {
	if _, err := l.store.DecrementIfPositive(ctx, l.key(userID)); err != nil {
		return unavailable(err)
	}
	return nil
}

// Usage reports how much of the current window userID has consumed.
func (l *RateLimiter) Usage(ctx context.Context, userID string) (*ports.Quota, error) {
	key := l.key(userID)

	used, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, unavailable(err)
	}
	ttl, err := l.store.TTL(ctx, key)
	if err != nil {
		return nil, unavailable(err)
	}

	q := &ports.Quota{Used: int(used), Limit: l.max, ResetIn: ttl}
	q.Remaining = max(l.max-q.Used, 0)
	return q, nil
}

func (l *RateLimiter) key(userID string) string {
	return "issue_limit:" + userID
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrRateLimitUnavailable, err)
}
