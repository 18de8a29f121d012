// Package ratelimit maps HTTP 429 answers to domain errors and provides the
// context-aware sleep used between retries.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"parodybot/internal/domain"
)

// Check returns a *domain.RateLimitError when resp is a 429, nil otherwise.
func Check(service string, resp *http.Response) error {
	if resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	return &domain.RateLimitError{
		Service:    service,
		RetryAfter: RetryAfter(resp.Header, time.Now()),
	}
}

// RetryAfter reads Retry-After (seconds) or x-rate-limit-reset (unix epoch).
func RetryAfter(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil && at.After(now) {
			return at.Sub(now)
		}
	}
	if v := h.Get("X-Rate-Limit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
