package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidID     = errors.New("invalid identifier")
	ErrForbidden     = errors.New("access forbidden")
	// ErrIssueLocked is returned when an issue has left the Pending status and
	// can no longer be edited or deleted.
	ErrIssueLocked  = errors.New("only pending issues can be modified")
	ErrAlreadyVoted = errors.New("you have already voted on this issue")
	ErrNotVoted     = errors.New("you have not voted on this issue")

	ErrRateLimited          = errors.New("issue creation limit exceeded")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrRateLimitUnavailable = fmt.Errorf("rate limiter: %w", ErrStoreUnavailable)

	ErrInvalidActivityCount = errors.New("activity counts must be non-negative")
)

// RateLimitError reports a blocked issue creation together with the time left
// until the window resets.
type RateLimitError struct {
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: %d issues per window, retry in %s", ErrRateLimited, e.Limit, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
