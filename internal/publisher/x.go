package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"parodybot/internal/ratelimit"
)

const (
	defaultXBaseURL  = "https://api.x.com"
	defaultXTokenURL = "https://api.x.com/2/oauth2/token"
)

var xScopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

// X posts through the v2 API with an OAuth 2.0 user-context token.
type X struct {
	baseURL string
	client  *http.Client
}

type XCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	TokenURL     string
}

// NewX builds the client. With a refresh token the oauth2 token source
// refreshes access tokens on demand; a bare access token is used as is.
func NewX(ctx context.Context, baseURL string, creds XCredentials, timeout time.Duration) *X {
	if baseURL == "" {
		baseURL = defaultXBaseURL
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})

	var ts oauth2.TokenSource
	if creds.RefreshToken != "" {
		tokenURL := creds.TokenURL
		if tokenURL == "" {
			tokenURL = defaultXTokenURL
		}
		cfg := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       xScopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		}
		ts = cfg.TokenSource(ctx, &oauth2.Token{
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
		})
	} else {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
	}

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = timeout

	return &X{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (x *X) Name() string { return "x" }

type xTweetRequest struct {
	Text         string `json:"text"`
	QuoteTweetID string `json:"quote_tweet_id,omitempty"`
}

type xTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Detail string `json:"detail"`
}

func (x *X) Publish(ctx context.Context, p Post) (string, error) {
	body, err := json.Marshal(xTweetRequest{Text: p.Text, QuoteTweetID: p.QuoteID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := ratelimit.Check(x.Name(), resp); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out xTweetResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", &apiError{service: "x", status: resp.StatusCode, detail: out.Detail}
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("x: response carries no post id")
	}

	return out.Data.ID, nil
}
