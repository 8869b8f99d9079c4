// Package opml exports the configured source list as an OPML document.
package opml

import (
	"encoding/xml"
	"time"

	"github.com/smckee/worldpulse/internal/model"
)

// OPML represents the root of an OPML document.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head contains OPML metadata.
type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

// Body contains the outlines.
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline represents a single outline element (region group or source).
type Outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL  string    `xml:"htmlUrl,attr,omitempty"`
	Outlines []Outline `xml:"outline,omitempty"`
}

// Export renders the source list as OPML, grouped by region in declaration
// order.
func Export(title string, sources []model.Source) ([]byte, error) {
	doc := OPML{
		Version: "2.0",
		Head: Head{
			Title:       title,
			DateCreated: time.Now().Format(time.RFC1123Z),
		},
	}

	groups := make(map[string]*Outline)
	var order []string
	for _, src := range sources {
		group, ok := groups[src.Region]
		if !ok {
			group = &Outline{Text: src.Region, Title: src.Region}
			groups[src.Region] = group
			order = append(order, src.Region)
		}
		outline := Outline{
			Text:  src.Name,
			Title: src.Name,
			Type:  "rss",
		}
		if src.Kind == "html" {
			outline.Type = ""
			outline.HTMLURL = src.URL
		} else {
			outline.XMLURL = src.URL
		}
		group.Outlines = append(group.Outlines, outline)
	}
	for _, region := range order {
		doc.Body.Outlines = append(doc.Body.Outlines, *groups[region])
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
