// Package storage persists the identifiers of posts that already got a
// parody, so a restart never publishes the same post twice.
package storage

import (
	"context"
	"fmt"

	"parodybot/internal/config"
	"parodybot/internal/domain"
)

// ProcessedSet is the dedup store. Contains has no side effects; Add is
// called only after a successful publish.
type ProcessedSet interface {
	Contains(ctx context.Context, account, postID string) (bool, error)
	Add(ctx context.Context, rec domain.Record) error
	Close() error
}

// History is implemented by the stores that keep full records.
type History interface {
	Recent(ctx context.Context, limit int) ([]domain.Record, error)
}

// Open creates the store named by cfg.Driver and loads its current state.
func Open(ctx context.Context, cfg config.StoreConfig) (ProcessedSet, error) {
	switch cfg.Driver {
	case "file":
		return OpenFile(cfg.Path)
	case "json":
		return OpenJSON(cfg.Path)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN)
	case "redis":
		return NewRedis(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
