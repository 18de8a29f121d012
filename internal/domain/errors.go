package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means the account has no eligible post. It is not a failure.
	ErrNotFound = errors.New("no eligible post")

	// ErrValidation marks text that must never be published as is.
	ErrValidation = errors.New("validation failed")
)

// RateLimitError is returned by any remote backend answering HTTP 429.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s)", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Service)
}

// IsRateLimited reports whether err wraps a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// RetryAfter returns the wait hinted by a wrapped RateLimitError, or zero.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
