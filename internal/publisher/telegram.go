package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"parodybot/internal/ratelimit"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts parodies to one or more channels. The ID of the message in
// the first chat is returned. Quote targets have no Telegram equivalent and
// are ignored.
type Telegram struct {
	baseURL  string
	botToken string
	chatIDs  []string
	client   *http.Client
}

func NewTelegram(botToken string, chatIDs []string, timeout time.Duration) *Telegram {
	return &Telegram{
		baseURL:  telegramAPI,
		botToken: botToken,
		chatIDs:  chatIDs,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Publish(ctx context.Context, p Post) (string, error) {
	var first string
	for i, chatID := range t.chatIDs {
		id, err := t.send(ctx, chatID, p.Text)
		if err != nil {
			return "", fmt.Errorf("chat %s: %w", chatID, err)
		}
		if i == 0 {
			first = id
		}
	}
	return first, nil
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Parameters struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (t *Telegram) send(ctx context.Context, chatID, text string) (string, error) {
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.baseURL, "/"), t.botToken)

	body, _ := json.Marshal(map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": false,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out telegramResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)

	if err := ratelimit.Check(t.Name(), resp); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return "", &apiError{service: "telegram", status: resp.StatusCode, detail: out.Description}
	}

	return strconv.FormatInt(out.Result.MessageID, 10), nil
}
