package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parodybot/internal/domain"
	"parodybot/internal/logger"
)

type scriptedScraper struct {
	errs  []error
	calls int
}

func (s *scriptedScraper) Latest(_ context.Context, account string) (domain.Post, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return domain.Post{}, s.errs[i]
	}
	return domain.Post{ID: "42", Author: account, Text: "gm"}, nil
}

func newTestRetrying(next Scraper, retries int) (*Retrying, *[]time.Duration) {
	r := NewRetrying(next, retries, time.Minute, logger.Discard)
	var waits []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetrying_RecoversAfterRateLimit(t *testing.T) {
	inner := &scriptedScraper{errs: []error{
		&domain.RateLimitError{Service: "nitter", RetryAfter: 5 * time.Second},
		&domain.RateLimitError{Service: "nitter"},
	}}
	r, waits := newTestRetrying(inner, 3)

	post, err := r.Latest(context.Background(), "saylor")
	require.NoError(t, err)
	assert.Equal(t, "42", post.ID)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, time.Minute}, *waits)
}

func TestRetrying_GivesUp(t *testing.T) {
	rl := &domain.RateLimitError{Service: "nitter"}
	inner := &scriptedScraper{errs: []error{rl, rl, rl, rl}}
	r, _ := newTestRetrying(inner, 2)

	_, err := r.Latest(context.Background(), "saylor")
	assert.True(t, domain.IsRateLimited(err))
	assert.Equal(t, 3, inner.calls)
}

func TestRetrying_NoRetryOnOtherErrors(t *testing.T) {
	inner := &scriptedScraper{errs: []error{errors.New("connection reset")}}
	r, waits := newTestRetrying(inner, 3)

	_, err := r.Latest(context.Background(), "saylor")
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, 1, inner.calls)
	assert.Empty(t, *waits)
}

func TestRetrying_ZeroRetries(t *testing.T) {
	inner := &scriptedScraper{errs: []error{&domain.RateLimitError{Service: "xapi"}}}
	r, _ := newTestRetrying(inner, 0)

	_, err := r.Latest(context.Background(), "saylor")
	assert.True(t, domain.IsRateLimited(err))
	assert.Equal(t, 1, inner.calls)
}
