// Package model defines shared data structures.
package model

import "time"

// Source identifies one feed or page endpoint to poll.
// The list is loaded from configuration and never mutated at run time.
type Source struct {
	Name    string `yaml:"name" json:"name"`
	Country string `yaml:"country" json:"country"`
	Region  string `yaml:"region" json:"region"`
	URL     string `yaml:"url" json:"url"`
	Kind    string `yaml:"kind,omitempty" json:"kind,omitempty"` // "rss" (default) or "html"
}

// RawItem is an unprocessed extraction from a feed or page.
// It lives only between a parser and the normalizer.
type RawItem struct {
	Title       string
	Link        string
	Description string
	PubDate     string     // raw date text from the feed, if any
	PubTime     *time.Time // pre-parsed date when the parser already has one
	SourceName  string     // per-item <source> override from the feed, if any
}

// Article is the canonical persisted record. URL is the dedup key:
// two articles with the same URL are the same article.
type Article struct {
	Title         string    `json:"title"`
	Snippet       string    `json:"snippet"`
	URL           string    `json:"url"`
	SourceName    string    `json:"source_name"`
	SourceCountry string    `json:"source_country"`
	SourceRegion  string    `json:"source_region"`
	PublishedAt   time.Time `json:"published_at"`
}

// ScrapeResult summarizes one aggregation run.
type ScrapeResult struct {
	Articles         []Article
	SourcesProcessed int
	SourcesSucceeded int
}
