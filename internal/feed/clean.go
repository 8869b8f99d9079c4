// Package feed extracts raw items from RSS/XML payloads and HTML pages and
// normalizes them into article records.
package feed

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRE   = regexp.MustCompile(`<[^>]*>`)
	spaceRE = regexp.MustCompile(`\s+`)
)

// Clean decodes HTML/XML entities, strips embedded markup tags and collapses
// whitespace. Decoding runs first so encoded tags like &lt;a&gt; are stripped
// along with literal ones.
func Clean(s string) string {
	s = html.UnescapeString(s)
	s = tagRE.ReplaceAllString(s, " ")
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
