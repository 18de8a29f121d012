package scraper

import (
	"context"
	"fmt"

	"parodybot/internal/config"
	"parodybot/internal/domain"
	"parodybot/internal/logger"
)

// Scraper returns the most recent eligible post of an account, skipping
// replies and reposts. It returns domain.ErrNotFound when there is none.
type Scraper interface {
	Latest(ctx context.Context, account string) (domain.Post, error)
}

// New builds the configured backend wrapped in the rate-limit retry policy.
func New(cfg config.ScraperConfig, log logger.Logger) (Scraper, error) {
	var s Scraper
	switch cfg.Backend {
	case "nitter":
		s = NewNitter(cfg.Instance, cfg.Timeout)
	case "xapi":
		s = NewXAPI(cfg.BaseURL, cfg.BearerToken, cfg.Timeout)
	case "xpage":
		s = NewXPage(cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported scraper backend: %s", cfg.Backend)
	}
	return NewRetrying(s, cfg.Retries, cfg.RateLimitWait, log), nil
}
