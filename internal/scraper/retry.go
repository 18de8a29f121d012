package scraper

import (
	"context"
	"time"

	"parodybot/internal/domain"
	"parodybot/internal/logger"
	"parodybot/internal/ratelimit"
)

// Retrying retries a Scraper on rate-limit errors only. The wait is the
// server's hint when it is shorter than the configured wait.
type Retrying struct {
	next    Scraper
	retries int
	wait    time.Duration
	log     logger.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewRetrying(next Scraper, retries int, wait time.Duration, log logger.Logger) *Retrying {
	return &Retrying{
		next:    next,
		retries: retries,
		wait:    wait,
		log:     log,
		sleep:   ratelimit.Sleep,
	}
}

func (r *Retrying) Latest(ctx context.Context, account string) (domain.Post, error) {
	for attempt := 0; ; attempt++ {
		post, err := r.next.Latest(ctx, account)
		if err == nil || !domain.IsRateLimited(err) || attempt >= r.retries {
			return post, err
		}

		wait := r.wait
		if hint := domain.RetryAfter(err); hint > 0 && hint < wait {
			wait = hint
		}

		r.log.Warnf("[FETCH] @%s: rate limited, waiting %s (retry %d/%d)", account, wait, attempt+1, r.retries)
		if err := r.sleep(ctx, wait); err != nil {
			return domain.Post{}, err
		}
	}
}
