package publisher

import (
	"context"
	"fmt"

	"parodybot/internal/config"
)

// Post is the final payload handed to a publishing backend.
type Post struct {
	Text string
	// QuoteID, when set, asks the backend to quote the original post.
	QuoteID string
}

// Publisher submits a composed post and returns the ID the platform assigned.
// A 429 answer surfaces as a *domain.RateLimitError.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, p Post) (string, error)
}

type apiError struct {
	service string
	status  int
	detail  string
}

func (e *apiError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s error: %d: %s", e.service, e.status, e.detail)
	}
	return fmt.Sprintf("%s error: %d", e.service, e.status)
}

// New builds the configured backend.
func New(ctx context.Context, cfg config.PublisherConfig) (Publisher, error) {
	switch cfg.Backend {
	case "x":
		return NewX(ctx, cfg.X.BaseURL, XCredentials{
			ClientID:     cfg.X.ClientID,
			ClientSecret: cfg.X.ClientSecret,
			RefreshToken: cfg.X.RefreshToken,
			AccessToken:  cfg.X.AccessToken,
			TokenURL:     cfg.X.TokenURL,
		}, cfg.Timeout), nil
	case "telegram":
		return NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatIDs, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported publisher backend: %s", cfg.Backend)
	}
}

// ComposeOptions maps the publisher config onto Compose options.
func ComposeOptions(cfg config.PublisherConfig, limit int) Options {
	return Options{
		Quote:   cfg.Quote,
		Tags:    cfg.Tags,
		MaxTags: cfg.MaxTags,
		Limit:   limit,
	}
}
