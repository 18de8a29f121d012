package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"parodybot/internal/ratelimit"
)

const (
	defaultHFEndpoint = "https://api-inference.huggingface.co/models/"
	defaultHFModel    = "HuggingFaceH4/zephyr-7b-beta"
)

// HuggingFace calls the hosted inference API. Text-generation models echo
// the prompt in front of the output; Rewriter strips it.
type HuggingFace struct {
	url    string
	client *http.Client
}

func NewHuggingFace(model, endpoint string, timeout time.Duration) *HuggingFace {
	if model == "" {
		model = defaultHFModel
	}
	if endpoint == "" {
		endpoint = defaultHFEndpoint
	}
	return &HuggingFace{
		url:    strings.TrimRight(endpoint, "/") + "/" + model,
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type hfOutput struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Complete(ctx context.Context, in Request) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: in.Prompt,
		Parameters: hfParameters{
			MaxNewTokens: in.MaxTokens,
			Temperature:  in.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+in.APIKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := ratelimit.Check(h.Name(), resp); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out []hfOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return out[0].GeneratedText, nil
}
