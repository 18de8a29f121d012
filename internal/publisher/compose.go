package publisher

import (
	"fmt"
	"strings"

	"parodybot/internal/domain"
	"parodybot/internal/textutil"
)

// Options controls how a parody becomes a payload.
type Options struct {
	// Quote sends the original as a quote target instead of a trailing link.
	Quote bool
	Tags  []string
	// MaxTags caps how many tags are appended.
	MaxTags int
	// Limit is the platform length ceiling in runes.
	Limit int
}

// Compose builds the payload for a parody: the text, then a blank line and
// the permalink (or a quote target), then whichever tags still fit. A text
// that does not fit next to the link is cut at a word boundary. When no text
// survives the result wraps domain.ErrValidation.
func Compose(text string, post domain.Post, opts Options) (Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Post{}, fmt.Errorf("%w: empty parody", domain.ErrValidation)
	}

	suffix := ""
	out := Post{}
	if opts.Quote {
		out.QuoteID = post.ID
	} else {
		suffix = "\n\n" + post.Permalink()
	}

	budget := opts.Limit - textutil.Len(suffix)
	if budget <= 0 {
		return Post{}, fmt.Errorf("%w: link alone exceeds %d characters", domain.ErrValidation, opts.Limit)
	}

	body := textutil.Truncate(text, budget)
	if strings.TrimSpace(body) == "" {
		return Post{}, fmt.Errorf("%w: nothing left of the parody within %d characters", domain.ErrValidation, budget)
	}

	if tags := fitTags(opts.Tags, opts.MaxTags, budget-textutil.Len(body)); tags != "" {
		body += " " + tags
	}

	out.Text = body + suffix
	if n := textutil.Len(out.Text); n > opts.Limit {
		return Post{}, fmt.Errorf("%w: payload is %d characters, limit %d", domain.ErrValidation, n, opts.Limit)
	}
	return out, nil
}

// fitTags joins up to maxTags tags, stopping before the first one that would not
// fit in room (including its leading space).
func fitTags(tags []string, maxTags, room int) string {
	var picked []string
	used := 0
	for _, t := range tags {
		if len(picked) >= maxTags {
			break
		}
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		if used+1+textutil.Len(t) > room {
			break
		}
		picked = append(picked, t)
		used += 1 + textutil.Len(t)
	}
	return strings.Join(picked, " ")
}
