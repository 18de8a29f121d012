package cli

import (
	"context"
	"errors"
	"fmt"

	"parodybot/internal/config"
	"parodybot/internal/generator"
	"parodybot/internal/logger"
	"parodybot/internal/publisher"
	"parodybot/internal/queue"
	"parodybot/internal/scraper"
	"parodybot/internal/storage"
	"parodybot/internal/worker"
)

// app holds everything one process needs to drive the pipeline.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	store  storage.ProcessedSet
	events queue.Producer
	board  *worker.Board
	driver *worker.Driver
}

type appOptions struct {
	dryRun bool
	// board and sinks let a status server observe the pipeline.
	board *worker.Board
	sinks []worker.Sink
}

func buildApp(ctx context.Context, cfg *config.Config, log logger.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, log: log}

	sc, err := scraper.New(cfg.Scraper, log)
	if err != nil {
		return nil, err
	}

	rewriter, err := newRewriter(cfg.Generator, log)
	if err != nil {
		return nil, err
	}

	pub, err := publisher.New(ctx, cfg.Publisher)
	if err != nil {
		return nil, err
	}

	a.store, err = storage.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	sinks := opts.sinks
	if len(cfg.Events.Brokers) > 0 && !opts.dryRun {
		k, err := queue.NewKafka(cfg.Events.Brokers, cfg.Events.Topic)
		if err != nil {
			_ = a.store.Close()
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		a.events = k
		sinks = append(sinks, worker.NewEventSink(k))
	}

	pipeline := worker.NewPipeline(worker.Deps{
		Scraper:   sc,
		Seen:      a.store,
		Rewriter:  rewriter,
		Publisher: pub,
		Sinks:     sinks,
	}, worker.Options{
		Compose: publisher.ComposeOptions(cfg.Publisher, config.PostLimit),
		DryRun:  opts.dryRun,
	}, log)

	a.board = opts.board
	if a.board == nil {
		a.board = worker.NewBoard(cfg.Accounts)
	}
	a.driver = worker.NewDriver(pipeline, cfg.Accounts, cfg.Schedule.AccountDelay, cfg.Schedule.CycleDelay, a.board, log)

	return a, nil
}

func newRewriter(cfg config.GeneratorConfig, log logger.Logger) (*generator.Rewriter, error) {
	backend, err := generator.NewBackend(generator.BackendConfig{
		Backend:  cfg.Backend,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	src := cfg.Prompt
	if src == "" {
		src = generator.DefaultPrompt
	}
	prompt, err := generator.NewPrompt(src)
	if err != nil {
		return nil, err
	}

	return generator.NewRewriter(backend, generator.NewKeyPool(cfg.APIKeys), prompt, generator.Options{
		MaxTokens:      cfg.MaxTokens,
		Temperature:    cfg.Temperature,
		Attempts:       cfg.Attempts,
		RateLimitDelay: cfg.RateLimitDelay,
		MaxLength:      cfg.MaxLength,
		MinLength:      cfg.MinLength,
	}, log), nil
}

func (a *app) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// openLogger builds the console + file logger from cfg. The returned func
// flushes and closes the file.
func openLogger(cfg config.LogConfig) (logger.Logger, func(), error) {
	l, err := logger.New(cfg.Level, cfg.File)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Close() }, nil
}
