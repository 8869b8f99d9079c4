package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/smckee/worldpulse/internal/model"
)

// Plausible headline length bounds. Shorter anchors are navigation chrome,
// longer ones are paragraph text.
const (
	minHeadlineLen = 20
	maxHeadlineLen = 200
)

// ParseHeadlines extracts (title, link) pairs from an HTML page using anchor
// heuristics. It is the fallback path for sources without a usable feed;
// precision is lower than the feed parser and some navigation links will
// slip through. Relative hrefs are resolved against base. Titles are
// deduplicated within the page.
func ParseHeadlines(htmlText string, base *url.URL, limit int) []model.RawItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var items []model.RawItem
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(spaceRE.ReplaceAllString(sel.Text(), " "))
		if len([]rune(text)) < minHeadlineLen || len([]rune(text)) > maxHeadlineLen {
			return true
		}
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}
		if seen[text] {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return true
		}

		seen[text] = true
		items = append(items, model.RawItem{Title: text, Link: ref.String()})
		return len(items) < limit
	})
	return items
}
