package feed

import (
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/smckee/worldpulse/internal/fetch"
	"github.com/smckee/worldpulse/internal/model"
)

// Field extraction patterns. Each field may be CDATA-wrapped or plain text;
// the feeds are flat enough that no XML document model is needed.
var (
	itemRE    = regexp.MustCompile(`(?is)<item[^>]*>(.*?)</item>`)
	titleRE   = regexp.MustCompile(`(?is)<title[^>]*>\s*(?:<!\[CDATA\[(.*?)\]\]>|(.*?))\s*</title>`)
	linkRE    = regexp.MustCompile(`(?is)<link[^>]*>\s*(?:<!\[CDATA\[(.*?)\]\]>|(.*?))\s*</link>`)
	descRE    = regexp.MustCompile(`(?is)<description[^>]*>\s*(?:<!\[CDATA\[(.*?)\]\]>|(.*?))\s*</description>`)
	pubDateRE = regexp.MustCompile(`(?is)<pubDate[^>]*>(.*?)</pubDate>`)
	sourceRE  = regexp.MustCompile(`(?is)<source[^>]*>\s*(?:<!\[CDATA\[(.*?)\]\]>|(.*?))\s*</source>`)
	hrefRE    = regexp.MustCompile(`href=["']([^"']+)["']`)
)

// cdataOrPlain returns whichever alternation group matched.
func cdataOrPlain(m []string) string {
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// ParseFeed extracts up to limit raw items from an RSS payload by scanning
// flat <item> blocks. Items lacking a title or link are dropped silently.
// Payloads with no <item> blocks at all (Atom, RDF) are handed to gofeed.
func ParseFeed(xml string, limit int) []model.RawItem {
	blocks := itemRE.FindAllStringSubmatch(xml, limit)
	if len(blocks) == 0 {
		return parseWithGofeed(xml, limit)
	}

	var items []model.RawItem
	for _, block := range blocks {
		itemXML := block[1]

		title := strings.TrimSpace(cdataOrPlain(titleRE.FindStringSubmatch(itemXML)))
		link := strings.TrimSpace(cdataOrPlain(linkRE.FindStringSubmatch(itemXML)))
		if title == "" || link == "" {
			continue
		}

		desc := strings.TrimSpace(cdataOrPlain(descRE.FindStringSubmatch(itemXML)))

		// Google News wraps article links in redirects but usually carries
		// the real link as the first external href in the description.
		if fetch.IsIndirect(link) {
			if m := hrefRE.FindStringSubmatch(desc); m != nil {
				if target := Clean(m[1]); target != "" && !fetch.IsIndirect(target) {
					link = target
				}
			}
		}

		item := model.RawItem{
			Title:       title,
			Link:        link,
			Description: desc,
			SourceName:  strings.TrimSpace(cdataOrPlain(sourceRE.FindStringSubmatch(itemXML))),
		}
		if m := pubDateRE.FindStringSubmatch(itemXML); m != nil {
			item.PubDate = strings.TrimSpace(m[1])
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	return items
}

// parseWithGofeed covers Atom and RDF feeds the flat scanner cannot see.
// Parse errors degrade to zero items; the caller already tolerates empty
// results per source.
func parseWithGofeed(xml string, limit int) []model.RawItem {
	parsed, err := gofeed.NewParser().ParseString(xml)
	if err != nil {
		return nil
	}

	var items []model.RawItem
	for _, it := range parsed.Items {
		if it.Title == "" || it.Link == "" {
			continue
		}
		item := model.RawItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			PubDate:     it.Published,
		}
		if it.PublishedParsed != nil {
			item.PubTime = it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			item.PubTime = it.UpdatedParsed
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	return items
}
