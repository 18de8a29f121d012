package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"parodybot/internal/domain"
)

// File keeps one post ID per line. Post IDs are globally unique, so the
// account is not stored.
type File struct {
	mu   sync.Mutex
	path string
	ids  map[string]struct{}
}

func OpenFile(path string) (*File, error) {
	f := &File{path: path, ids: make(map[string]struct{})}

	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			f.ids[id] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return f, nil
}

func (f *File) Contains(_ context.Context, _, postID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.ids[postID]
	return ok, nil
}

func (f *File) Add(_ context.Context, rec domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.ids[rec.PostID]; ok {
		return nil
	}

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	if _, err := fh.WriteString(rec.PostID + "\n"); err != nil {
		_ = fh.Close()
		return fmt.Errorf("append %s: %w", f.path, err)
	}
	if err := fh.Close(); err != nil {
		return err
	}

	f.ids[rec.PostID] = struct{}{}
	return nil
}

func (f *File) Close() error { return nil }
