package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"parodybot/internal/domain"
	"parodybot/internal/ratelimit"
)

const (
	defaultXPageBaseURL = "https://x.com"
	xPageStateMarker    = "__REACT_QUERY_INITIAL_QUERIES__"
	xPageStatePrefix    = `{"props":`
	xPageUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var errNoPageState = errors.New("xpage: embedded page state not found")

// XPage scrapes the public profile page and decodes the timeline state the
// page embeds in a script tag. The markup is unstable; prefer Nitter or XAPI.
type XPage struct {
	baseURL string
	client  *http.Client
}

func NewXPage(baseURL string, timeout time.Duration) *XPage {
	if baseURL == "" {
		baseURL = defaultXPageBaseURL
	}
	return &XPage{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type pageState struct {
	Props struct {
		PageProps struct {
			Tweets []pageTweet `json:"tweets"`
		} `json:"pageProps"`
	} `json:"props"`
}

type pageTweet struct {
	IDStr             string          `json:"id_str"`
	FullText          string          `json:"full_text"`
	CreatedAt         string          `json:"created_at"`
	InReplyToStatusID string          `json:"in_reply_to_status_id_str"`
	RetweetedStatus   json.RawMessage `json:"retweeted_status"`
	User              struct {
		Username   string `json:"username"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

func (t pageTweet) author() string {
	if t.User.Username != "" {
		return t.User.Username
	}
	return t.User.ScreenName
}

func (t pageTweet) eligible() bool {
	isRetweet := len(t.RetweetedStatus) > 0 && string(t.RetweetedStatus) != "null"
	return t.IDStr != "" && strings.TrimSpace(t.FullText) != "" &&
		t.InReplyToStatusID == "" && !isRetweet
}

func (p *XPage) Latest(ctx context.Context, account string) (domain.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+account, nil)
	if err != nil {
		return domain.Post{}, err
	}
	req.Header.Set("User-Agent", xPageUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Post{}, err
	}
	defer resp.Body.Close()

	if err := ratelimit.Check("xpage", resp); err != nil {
		return domain.Post{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Post{}, fmt.Errorf("xpage: HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return domain.Post{}, fmt.Errorf("xpage: parse html: %w", err)
	}

	state, err := extractPageState(doc)
	if err != nil {
		return domain.Post{}, err
	}

	for _, t := range state.Props.PageProps.Tweets {
		if !strings.EqualFold(t.author(), account) || !t.eligible() {
			continue
		}

		var createdAt time.Time
		if parsed, err := time.Parse(time.RubyDate, t.CreatedAt); err == nil {
			createdAt = parsed
		}

		return domain.Post{
			ID:        t.IDStr,
			Author:    account,
			Text:      t.FullText,
			CreatedAt: createdAt,
			Source:    domain.SourceXPage,
		}, nil
	}

	return domain.Post{}, domain.ErrNotFound
}

func extractPageState(doc *html.Node) (*pageState, error) {
	var script string

	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			if text := nodeText(n); strings.Contains(text, xPageStateMarker) {
				script = text
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	start := strings.Index(script, xPageStatePrefix)
	if start < 0 {
		return nil, errNoPageState
	}

	// The decoder stops after the first JSON value, dropping the trailing "});".
	var state pageState
	if err := json.NewDecoder(strings.NewReader(script[start:])).Decode(&state); err != nil {
		return nil, fmt.Errorf("xpage: decode page state: %w", err)
	}
	return &state, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
