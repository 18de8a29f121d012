package domain

import (
	"fmt"
	"time"
)

// Post is the latest eligible post of a watched account.
type Post struct {
	ID        string
	Author    string
	Text      string
	CreatedAt time.Time
	Source    Source
}

// Permalink returns the canonical status URL of the post.
func (p Post) Permalink() string {
	return fmt.Sprintf("https://x.com/%s/status/%s", p.Author, p.ID)
}

type Source string

const (
	SourceNitter Source = "nitter"
	SourceXAPI   Source = "xapi"
	SourceXPage  Source = "xpage"
)

// Parody is a generated rewrite of a source post.
type Parody struct {
	Post     Post
	Text     string
	Payload  string
	Attempts int
}

// Record is what gets persisted once a parody is published.
type Record struct {
	Account     string
	PostID      string
	PublishedID string
	Text        string
	PublishedAt time.Time
}
