package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"parodybot/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Contains(ctx context.Context, _, postID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM processed WHERE post_id = ?)`, postID).Scan(&exists)
	return exists, err
}

func (s *SQLite) Add(ctx context.Context, rec domain.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed (post_id, account, published_id, text, published_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (post_id) DO NOTHING
	`, rec.PostID, rec.Account, rec.PublishedID, rec.Text, rec.PublishedAt.UTC())
	return err
}

// Recent lists the newest records first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account, post_id, published_id, text, published_at
		FROM processed ORDER BY published_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var out []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(
			&rec.Account,
			&rec.PostID,
			&rec.PublishedID,
			&rec.Text,
			&rec.PublishedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
