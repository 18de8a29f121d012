package queue

import (
	"context"
	"time"
)

// Event announces a published parody to downstream consumers.
type Event struct {
	ID          string    `json:"id"`
	Account     string    `json:"account"`
	PostID      string    `json:"post_id"`
	Permalink   string    `json:"permalink"`
	PublishedID string    `json:"published_id"`
	Text        string    `json:"text"`
	Attempts    int       `json:"attempts"`
	PublishedAt time.Time `json:"published_at"`
}

type Producer interface {
	Emit(ctx context.Context, ev Event) error
	Close() error
}
