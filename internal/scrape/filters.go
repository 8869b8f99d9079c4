// Package scrape fans fetching, parsing and normalization out across the
// configured sources and merges the results into one deduplicated batch.
package scrape

import (
	"net/url"
	"strings"
	"time"

	"github.com/smckee/worldpulse/internal/fetch"
	"github.com/smckee/worldpulse/internal/model"
)

// placeholderHosts are sample/test domains that occasionally leak out of
// broken feeds and low-precision page scrapes.
var placeholderHosts = map[string]bool{
	"example.com": true,
	"example.org": true,
	"example.net": true,
	"localhost":   true,
}

// rejectURL reports whether an article URL should be discarded: placeholder
// and test domains, and aggregator redirect hosts that survived resolution.
// It runs both before and after redirect resolution, since resolution can
// itself land on a placeholder.
func rejectURL(rawURL string) bool {
	if fetch.IsIndirect(rawURL) {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	if placeholderHosts[host] {
		return true
	}
	for ph := range placeholderHosts {
		if strings.HasSuffix(host, "."+ph) {
			return true
		}
	}
	return strings.HasSuffix(host, ".test") || strings.HasSuffix(host, ".invalid")
}

// matchesKeyword reports whether the keyword appears, case-insensitively, as
// a substring of the article's title or snippet.
func matchesKeyword(a model.Article, keyword string) bool {
	if keyword == "" {
		return true
	}
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(a.Title), k) ||
		strings.Contains(strings.ToLower(a.Snippet), k)
}

// isFresh reports whether the article falls within the retention window.
func isFresh(a model.Article, now time.Time, retention time.Duration) bool {
	return !a.PublishedAt.Before(now.Add(-retention))
}
