package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"parodybot/internal/ratelimit"
)

const (
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
)

// ChatCompletions talks to any OpenAI-compatible chat completions endpoint.
type ChatCompletions struct {
	name     string
	model    string
	endpoint string
	client   *http.Client
}

func NewOpenRouter(model, endpoint string, timeout time.Duration) *ChatCompletions {
	if model == "" {
		model = "mistralai/mistral-7b-instruct"
	}
	return newChatCompletions("openrouter", model, endpoint, openRouterEndpoint, timeout)
}

func newChatCompletions(name, model, endpoint, fallback string, timeout time.Duration) *ChatCompletions {
	if endpoint == "" {
		endpoint = fallback
	}
	return &ChatCompletions{
		name:     name,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (o *ChatCompletions) Name() string { return o.name }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *ChatCompletions) Complete(ctx context.Context, in Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "user", Content: in.Prompt},
		},
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+in.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := ratelimit.Check(o.name, resp); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: %d", resp.StatusCode)
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", err
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return apiResp.Choices[0].Message.Content, nil
}
