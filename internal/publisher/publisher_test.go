package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parodybot/internal/config"
)

func TestNew(t *testing.T) {
	p, err := New(context.Background(), config.PublisherConfig{Backend: "x", X: config.XConfig{AccessToken: "at"}})
	require.NoError(t, err)
	assert.Equal(t, "x", p.Name())

	p, err = New(context.Background(), config.PublisherConfig{
		Backend:  "telegram",
		Telegram: config.TelegramConfig{Token: "t", ChatIDs: []string{"@c"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "telegram", p.Name())

	_, err = New(context.Background(), config.PublisherConfig{Backend: "mastodon"})
	assert.Error(t, err)
}

func TestComposeOptions(t *testing.T) {
	opts := ComposeOptions(config.PublisherConfig{Quote: true, Tags: []string{"#a"}, MaxTags: 1}, 280)
	assert.Equal(t, Options{Quote: true, Tags: []string{"#a"}, MaxTags: 1, Limit: 280}, opts)
}
