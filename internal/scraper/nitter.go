package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"parodybot/internal/domain"
	"parodybot/internal/ratelimit"
)

var statusIDRe = regexp.MustCompile(`/status/(\d+)`)

type Nitter struct {
	instance string
	baseURL  string
	client   *http.Client
	parser   *gofeed.Parser
}

func NewNitter(instance string, timeout time.Duration) *Nitter {
	return &Nitter{
		instance: instance,
		baseURL:  "https://" + instance,
		client:   &http.Client{Timeout: timeout},
		parser:   gofeed.NewParser(),
	}
}

func (n *Nitter) Latest(ctx context.Context, account string) (domain.Post, error) {
	url := fmt.Sprintf("%s/%s/rss", n.baseURL, account)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Post{}, err
	}

	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := n.client.Do(req)
	if err != nil {
		return domain.Post{}, err
	}
	defer resp.Body.Close()

	if err := ratelimit.Check("nitter", resp); err != nil {
		return domain.Post{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.Post{}, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Post{}, fmt.Errorf("nitter: HTTP %d", resp.StatusCode)
	}

	feed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return domain.Post{}, fmt.Errorf("nitter: parse feed: %w", err)
	}

	for _, item := range feed.Items {
		if !eligibleTitle(item.Title) {
			continue
		}

		id := statusID(item.GUID)
		if id == "" {
			id = statusID(item.Link)
		}
		if id == "" {
			continue
		}

		var createdAt time.Time
		if item.PublishedParsed != nil {
			createdAt = *item.PublishedParsed
		}

		return domain.Post{
			ID:        id,
			Author:    account,
			Text:      strings.TrimSpace(item.Title),
			CreatedAt: createdAt,
			Source:    domain.SourceNitter,
		}, nil
	}

	return domain.Post{}, domain.ErrNotFound
}

// Nitter prefixes reposts with "RT by @x:" and replies with "R to @x:".
func eligibleTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return !strings.HasPrefix(title, "RT by @") && !strings.HasPrefix(title, "R to @")
}

func statusID(s string) string {
	m := statusIDRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
