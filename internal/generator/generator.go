package generator

import (
	"context"
	"fmt"
	"time"
)

// Request is one completion call. APIKey is picked from the KeyPool per call
// so backends stay stateless about credentials.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	APIKey      string
}

// Backend is a hosted text-generation service. A 429 answer must surface as
// a *domain.RateLimitError.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

type BackendConfig struct {
	Backend  string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// NewBackend creates the backend named in cfg.
func NewBackend(cfg BackendConfig) (Backend, error) {
	switch cfg.Backend {
	case "huggingface":
		return NewHuggingFace(cfg.Model, cfg.Endpoint, cfg.Timeout), nil
	case "openrouter":
		return NewOpenRouter(cfg.Model, cfg.Endpoint, cfg.Timeout), nil
	case "openai":
		return NewOpenAI(cfg.Model, cfg.Endpoint, cfg.Timeout), nil
	case "gemini":
		return NewGemini(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported generator backend: %s", cfg.Backend)
	}
}
