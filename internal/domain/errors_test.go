package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("generate: %w", &RateLimitError{Service: "openrouter", RetryAfter: 20 * time.Second})

	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 20*time.Second, RetryAfter(err))
	assert.Contains(t, err.Error(), "retry after 20s")

	assert.False(t, IsRateLimited(ErrNotFound))
	assert.Zero(t, RetryAfter(ErrNotFound))
}

func TestPermalink(t *testing.T) {
	p := Post{ID: "1790000000000000000", Author: "saylor"}
	assert.Equal(t, "https://x.com/saylor/status/1790000000000000000", p.Permalink())
}
