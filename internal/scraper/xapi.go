package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parodybot/internal/domain"
	"parodybot/internal/ratelimit"
)

const defaultXAPIBaseURL = "https://api.x.com"

// XAPI reads timelines through the official v2 API with an app bearer token.
// User IDs are looked up once per handle.
type XAPI struct {
	baseURL string
	token   string
	client  *http.Client
	ids     map[string]string
}

func NewXAPI(baseURL, bearerToken string, timeout time.Duration) *XAPI {
	if baseURL == "" {
		baseURL = defaultXAPIBaseURL
	}
	return &XAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   bearerToken,
		client:  &http.Client{Timeout: timeout},
		ids:     make(map[string]string),
	}
}

type xUserResponse struct {
	Data *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type xTimelineResponse struct {
	Data []struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
}

func (x *XAPI) Latest(ctx context.Context, account string) (domain.Post, error) {
	userID, err := x.userID(ctx, account)
	if err != nil {
		return domain.Post{}, err
	}

	q := url.Values{}
	q.Set("max_results", "5")
	q.Set("exclude", "replies,retweets")
	q.Set("tweet.fields", "created_at")

	var timeline xTimelineResponse
	if err := x.get(ctx, "/2/users/"+userID+"/tweets?"+q.Encode(), &timeline); err != nil {
		return domain.Post{}, err
	}

	for _, t := range timeline.Data {
		if t.ID == "" || strings.TrimSpace(t.Text) == "" {
			continue
		}
		return domain.Post{
			ID:        t.ID,
			Author:    account,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
			Source:    domain.SourceXAPI,
		}, nil
	}

	return domain.Post{}, domain.ErrNotFound
}

func (x *XAPI) userID(ctx context.Context, account string) (string, error) {
	if id, ok := x.ids[account]; ok {
		return id, nil
	}

	var user xUserResponse
	if err := x.get(ctx, "/2/users/by/username/"+url.PathEscape(account), &user); err != nil {
		return "", err
	}
	if user.Data == nil || user.Data.ID == "" {
		return "", domain.ErrNotFound
	}

	x.ids[account] = user.Data.ID
	return user.Data.ID, nil
}

func (x *XAPI) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+x.token)

	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := ratelimit.Check("xapi", resp); err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("xapi: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("xapi: decode response: %w", err)
	}
	return nil
}
