package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"parodybot/internal/domain"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Contains(ctx context.Context, _, postID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM processed WHERE post_id = $1)`

	var exists bool
	err := p.db.QueryRowContext(ctx, query, postID).Scan(&exists)
	return exists, err
}

func (p *Postgres) Add(ctx context.Context, rec domain.Record) error {
	query := `
		INSERT INTO processed (post_id, account, published_id, text, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.PostID,
		rec.Account,
		rec.PublishedID,
		rec.Text,
		rec.PublishedAt,
	)

	return err
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	query := `
		SELECT account, post_id, published_id, text, published_at
		FROM processed ORDER BY published_at DESC LIMIT $1
	`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}
