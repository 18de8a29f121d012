package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"parodybot/internal/domain"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini generates through the genai SDK. A client is created lazily per API
// key since the SDK binds the key at construction.
type Gemini struct {
	model   string
	clients map[string]*genai.Client
}

func NewGemini(model string) *Gemini {
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		model:   model,
		clients: make(map[string]*genai.Client),
	}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, in Request) (string, error) {
	client, err := g.client(ctx, in.APIKey)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(in.Temperature)),
	}
	if in.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(in.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(in.Prompt), cfg)
	if err != nil {
		return "", geminiError(err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

func (g *Gemini) client(ctx context.Context, key string) (*genai.Client, error) {
	if c, ok := g.clients[key]; ok {
		return c, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g.clients[key] = c
	return c, nil
}

func geminiError(err error) error {
	code := 0

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	if code == http.StatusTooManyRequests {
		return &domain.RateLimitError{Service: "gemini"}
	}
	return err
}
