package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"parodybot/internal/domain"
)

// JSON remembers only the last processed post per account. A post counts as
// seen when it is that last one.
type JSON struct {
	mu   sync.Mutex
	path string
	last map[string]string
}

func OpenJSON(path string) (*JSON, error) {
	s := &JSON{path: path, last: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.last); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return s, nil
}

func (s *JSON) Contains(_ context.Context, account, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last[account] == postID, nil
}

func (s *JSON) Add(_ context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.last[rec.Account]
	s.last[rec.Account] = rec.PostID

	if err := s.flush(); err != nil {
		if had {
			s.last[rec.Account] = prev
		} else {
			delete(s.last, rec.Account)
		}
		return err
	}
	return nil
}

// flush replaces the file through a rename so a crash never leaves half a
// document behind.
func (s *JSON) flush() error {
	raw, err := json.MarshalIndent(s.last, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".processed-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *JSON) Close() error { return nil }
