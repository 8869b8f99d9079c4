package feed

import (
	"context"
	"strings"
	"time"

	"github.com/smckee/worldpulse/internal/fetch"
	"github.com/smckee/worldpulse/internal/model"
)

// snippetLen is the maximum snippet length in runes.
const snippetLen = 200

// pubDateLayouts are the date formats seen across real-world feeds.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// URLResolver canonicalizes aggregator redirect links. ok=false means the
// link could not be canonicalized and the caller keeps the original.
type URLResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, bool)
}

// Normalizer converts raw items into article records.
type Normalizer struct {
	resolver URLResolver
	now      func() time.Time
}

// NewNormalizer creates a normalizer using resolver for indirect links.
func NewNormalizer(resolver URLResolver) *Normalizer {
	return &Normalizer{resolver: resolver, now: time.Now}
}

// Normalize cleans a raw item and attaches source metadata. Returns nil when
// the item has no usable title or URL after cleaning. Items without a
// parseable publish date default to the current time.
func (n *Normalizer) Normalize(ctx context.Context, raw model.RawItem, src model.Source) *model.Article {
	title := Clean(raw.Title)
	link := strings.TrimSpace(raw.Link)
	if title == "" || link == "" {
		return nil
	}

	// Only indirect links warrant a resolution attempt; direct URLs pass
	// through without a network call. A declined or failed resolution keeps
	// the original link and lets the URL filters decide its fate.
	if fetch.IsIndirect(link) && n.resolver != nil {
		if resolved, ok := n.resolver.Resolve(ctx, link); ok {
			link = resolved
		}
	}

	desc := Clean(raw.Description)
	snippet := desc
	if snippet == "" {
		snippet = title
	}
	snippet = Truncate(snippet, snippetLen)

	sourceName := Clean(raw.SourceName)
	if sourceName == "" {
		sourceName = src.Name
	}

	return &model.Article{
		Title:         title,
		Snippet:       snippet,
		URL:           link,
		SourceName:    sourceName,
		SourceCountry: src.Country,
		SourceRegion:  src.Region,
		PublishedAt:   n.publishedAt(raw),
	}
}

func (n *Normalizer) publishedAt(raw model.RawItem) time.Time {
	if raw.PubTime != nil {
		return *raw.PubTime
	}
	text := strings.TrimSpace(raw.PubDate)
	if text != "" {
		for _, layout := range pubDateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t
			}
		}
	}
	return n.now()
}
