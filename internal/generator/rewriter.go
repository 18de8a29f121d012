package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parodybot/internal/domain"
	"parodybot/internal/logger"
	"parodybot/internal/ratelimit"
	"parodybot/internal/textutil"
)

type Options struct {
	MaxTokens      int
	Temperature    float64
	Attempts       int
	RateLimitDelay time.Duration
	MaxLength      int
	MinLength      int
}

// Rewriter turns a post into a parody within a bounded number of attempts.
//
// A rate-limited attempt sleeps RateLimitDelay and rotates the key pool. An
// output that is too short after cleaning also uses up an attempt. Any other
// backend error aborts at once.
type Rewriter struct {
	backend Backend
	keys    *KeyPool
	prompt  *Prompt
	opts    Options
	log     logger.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewRewriter(b Backend, keys *KeyPool, prompt *Prompt, opts Options, log logger.Logger) *Rewriter {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Rewriter{
		backend: b,
		keys:    keys,
		prompt:  prompt,
		opts:    opts,
		log:     log,
		sleep:   ratelimit.Sleep,
	}
}

func (r *Rewriter) Rewrite(ctx context.Context, post domain.Post) (domain.Parody, error) {
	prompt, err := r.prompt.Render(post)
	if err != nil {
		return domain.Parody{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		out, err := r.backend.Complete(ctx, Request{
			Prompt:      prompt,
			MaxTokens:   r.opts.MaxTokens,
			Temperature: r.opts.Temperature,
			APIKey:      r.keys.Current(),
		})

		switch {
		case err == nil:
		case domain.IsRateLimited(err):
			lastErr = err
			if attempt == r.opts.Attempts {
				continue
			}
			r.log.Warnf("[AI] %s rate limit hit. Waiting %s...", r.backend.Name(), r.opts.RateLimitDelay)
			if r.keys.Len() > 1 {
				r.keys.Rotate()
			}
			if err := r.sleep(ctx, r.opts.RateLimitDelay); err != nil {
				return domain.Parody{}, err
			}
			continue
		default:
			return domain.Parody{}, fmt.Errorf("%s: %w", r.backend.Name(), err)
		}

		text := textutil.Truncate(textutil.Clean(out, prompt), r.opts.MaxLength)
		if textutil.Len(text) <= r.opts.MinLength {
			lastErr = fmt.Errorf("%w: output too short (%d runes)", domain.ErrValidation, textutil.Len(text))
			r.log.Debugf("[AI] attempt %d/%d discarded: %v", attempt, r.opts.Attempts, lastErr)
			continue
		}

		return domain.Parody{Post: post, Text: text, Attempts: attempt}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	return domain.Parody{}, fmt.Errorf("%s: gave up after %d attempts: %w", r.backend.Name(), r.opts.Attempts, lastErr)
}
