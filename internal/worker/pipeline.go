package worker

import (
	"context"
	"errors"
	"time"

	"parodybot/internal/domain"
	"parodybot/internal/logger"
	"parodybot/internal/publisher"
	"parodybot/internal/scraper"
	"parodybot/internal/storage"
)

// Outcome is where one pipeline pass for an account ended.
type Outcome string

const (
	OutcomeNotFound       Outcome = "not_found"
	OutcomeFetchFailed    Outcome = "fetch_failed"
	OutcomeSeen           Outcome = "seen"
	OutcomeGenerateFailed Outcome = "generate_failed"
	OutcomeRejected       Outcome = "rejected"
	OutcomeDryRun         Outcome = "dry_run"
	OutcomePublishFailed  Outcome = "publish_failed"
	OutcomeStoreFailed    Outcome = "store_failed"
	OutcomePublished      Outcome = "published"
)

// Failed reports whether the pass ended on an error rather than a normal skip.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeFetchFailed, OutcomeGenerateFailed, OutcomeRejected, OutcomePublishFailed, OutcomeStoreFailed:
		return true
	}
	return false
}

type Result struct {
	Account     string
	Outcome     Outcome
	Post        domain.Post
	Parody      domain.Parody
	PublishedID string
	Err         error
	At          time.Time
}

// Rewriter produces the parody text for a post.
type Rewriter interface {
	Rewrite(ctx context.Context, post domain.Post) (domain.Parody, error)
}

// Sink is told about every published parody. Its errors are logged only.
type Sink interface {
	Notify(ctx context.Context, res Result) error
}

type Deps struct {
	Scraper   scraper.Scraper
	Seen      storage.ProcessedSet
	Rewriter  Rewriter
	Publisher publisher.Publisher
	Sinks     []Sink
}

type Options struct {
	Compose publisher.Options
	// DryRun composes the payload but neither publishes nor records it.
	DryRun bool
}

// Pipeline runs fetch, dedup, rewrite and publish for one account at a time.
// The processed set is only written after the publisher accepted the post.
type Pipeline struct {
	deps Deps
	opts Options
	log  logger.Logger
	now  func() time.Time
}

func NewPipeline(deps Deps, opts Options, log logger.Logger) *Pipeline {
	return &Pipeline{
		deps: deps,
		opts: opts,
		log:  log,
		now:  time.Now,
	}
}

func (p *Pipeline) Run(ctx context.Context, account string) Result {
	res := Result{Account: account, At: p.now()}

	post, err := p.deps.Scraper.Latest(ctx, account)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		p.log.Infof("[FETCH] @%s: no eligible post", account)
		return res.end(OutcomeNotFound, nil)
	case err != nil:
		p.log.Errorf("[FETCH] @%s: %v", account, err)
		return res.end(OutcomeFetchFailed, err)
	}
	res.Post = post
	p.log.Infof("[FETCH] @%s: %s %q", account, post.ID, truncate(post.Text, 60))

	seen, err := p.deps.Seen.Contains(ctx, account, post.ID)
	if err != nil {
		p.log.Errorf("[DEDUP] @%s: %v", account, err)
		return res.end(OutcomeStoreFailed, err)
	}
	if seen {
		p.log.Infof("[DEDUP] @%s: %s already processed", account, post.ID)
		return res.end(OutcomeSeen, nil)
	}

	parody, err := p.deps.Rewriter.Rewrite(ctx, post)
	if err != nil {
		p.log.Errorf("[AI] @%s: %v", account, err)
		return res.end(OutcomeGenerateFailed, err)
	}

	payload, err := publisher.Compose(parody.Text, post, p.opts.Compose)
	if err != nil {
		p.log.Warnf("[COMPOSE] @%s: dropping %s: %v", account, post.ID, err)
		return res.end(OutcomeRejected, err)
	}
	parody.Payload = payload.Text
	res.Parody = parody

	if p.opts.DryRun {
		p.log.Infof("[DRY-RUN] @%s: %q", account, payload.Text)
		return res.end(OutcomeDryRun, nil)
	}

	id, err := p.deps.Publisher.Publish(ctx, payload)
	if err != nil {
		p.log.Errorf("[PUBLISH] @%s: %s via %s: %v", account, post.ID, p.deps.Publisher.Name(), err)
		return res.end(OutcomePublishFailed, err)
	}
	res.PublishedID = id
	p.log.Infof("[PUBLISH] @%s: %s posted as %s", account, post.ID, id)

	rec := domain.Record{
		Account:     account,
		PostID:      post.ID,
		PublishedID: id,
		Text:        parody.Text,
		PublishedAt: p.now(),
	}
	if err := p.deps.Seen.Add(ctx, rec); err != nil {
		p.log.Errorf("[STORE] @%s: %s published but not recorded: %v", account, post.ID, err)
		res = res.end(OutcomeStoreFailed, err)
	} else {
		res = res.end(OutcomePublished, nil)
	}

	for _, s := range p.deps.Sinks {
		if err := s.Notify(ctx, res); err != nil {
			p.log.Warnf("[SINK] @%s: %v", account, err)
		}
	}

	return res
}

func (r Result) end(o Outcome, err error) Result {
	r.Outcome = o
	r.Err = err
	return r
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
