package scrape

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/smckee/worldpulse/internal/feed"
	"github.com/smckee/worldpulse/internal/fetch"
	"github.com/smckee/worldpulse/internal/model"
)

// RegionAll disables region filtering when passed as the region argument.
const RegionAll = "all"

// Aggregator runs the whole ingestion pipeline across a source list.
type Aggregator struct {
	client      *fetch.Client
	norm        *feed.Normalizer
	sources     []model.Source
	concurrency int
	maxArticles int
	perFeedCap  int
	retention   time.Duration
	now         func() time.Time
}

// Options configures an Aggregator. Zero values get sensible defaults.
type Options struct {
	Sources     []model.Source
	Client      *fetch.Client
	Normalizer  *feed.Normalizer
	Concurrency int
	MaxArticles int
	PerFeedCap  int
	Retention   time.Duration
}

// New creates an aggregator over an explicitly injected source list.
func New(opts Options) *Aggregator {
	a := &Aggregator{
		client:      opts.Client,
		norm:        opts.Normalizer,
		sources:     opts.Sources,
		concurrency: opts.Concurrency,
		maxArticles: opts.MaxArticles,
		perFeedCap:  opts.PerFeedCap,
		retention:   opts.Retention,
		now:         time.Now,
	}
	if a.client == nil {
		a.client = fetch.NewClient(15 * time.Second)
	}
	if a.norm == nil {
		a.norm = feed.NewNormalizer(fetch.NewResolver(2500 * time.Millisecond))
	}
	if a.concurrency <= 0 {
		a.concurrency = 10
	}
	if a.maxArticles <= 0 {
		a.maxArticles = 50
	}
	if a.perFeedCap <= 0 {
		a.perFeedCap = 15
	}
	if a.retention <= 0 {
		a.retention = 72 * time.Hour
	}
	return a
}

// sourceResult carries one source's contribution. Index preserves the
// declaration order of the source list for stable deduplication.
type sourceResult struct {
	index    int
	articles []model.Article
	err      error
}

// Run executes one ingestion pass. Sources outside the requested region are
// skipped before any network call. Per-source failures contribute zero
// articles and never abort sibling units; only context cancellation is
// returned as an error, alongside whatever was collected before it.
func (a *Aggregator) Run(ctx context.Context, keyword, region string) (*model.ScrapeResult, error) {
	selected := a.selectSources(region)
	log.Printf("Scraping %d sources with concurrency=%d (keyword=%q region=%q)",
		len(selected), a.concurrency, keyword, region)

	collected := make([][]model.Article, len(selected))
	succeeded := 0

	var wg sync.WaitGroup
	jobs := make(chan int, len(selected))
	results := make(chan sourceResult, len(selected))

	workers := a.concurrency
	if workers > len(selected) {
		workers = len(selected)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					results <- sourceResult{index: idx, err: ctx.Err()}
					continue
				default:
				}
				articles, err := a.scrapeSource(ctx, selected[idx], keyword)
				results <- sourceResult{index: idx, articles: articles, err: err}
			}
		}()
	}

	for idx := range selected {
		jobs <- idx
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect-all-then-merge: each unit's slice lands in its own slot once
	// the unit has fully resolved.
	for res := range results {
		if res.err != nil {
			log.Printf("Failed to scrape %s: %v", selected[res.index].Name, res.err)
			continue
		}
		collected[res.index] = res.articles
		succeeded++
	}

	var all []model.Article
	for _, batch := range collected {
		all = append(all, batch...)
	}

	// Defensive keyword pass: some upstreams ignore the keyword parameter.
	if keyword != "" {
		kept := all[:0]
		for _, art := range all {
			if matchesKeyword(art, keyword) {
				kept = append(kept, art)
			}
		}
		all = kept
	}

	all = dedupeByURL(all)
	if len(all) > a.maxArticles {
		all = all[:a.maxArticles]
	}

	result := &model.ScrapeResult{
		Articles:         all,
		SourcesProcessed: len(selected),
		SourcesSucceeded: succeeded,
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// selectSources applies the region filter before any fetching happens.
func (a *Aggregator) selectSources(region string) []model.Source {
	if region == "" || region == RegionAll {
		return a.sources
	}
	var out []model.Source
	for _, s := range a.sources {
		if s.Region == region {
			out = append(out, s)
		}
	}
	return out
}

// scrapeSource runs fetch, parse, normalize and filter for one source.
func (a *Aggregator) scrapeSource(ctx context.Context, src model.Source, keyword string) ([]model.Article, error) {
	body, err := a.client.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	var raw []model.RawItem
	if strings.EqualFold(src.Kind, "html") {
		base, err := url.Parse(src.URL)
		if err != nil {
			return nil, err
		}
		raw = feed.ParseHeadlines(body, base, a.perFeedCap)
	} else {
		raw = feed.ParseFeed(body, a.perFeedCap)
	}

	now := a.now()
	var articles []model.Article
	for _, item := range raw {
		art := a.norm.Normalize(ctx, item, src)
		if art == nil {
			continue
		}
		if rejectURL(art.URL) {
			continue
		}
		if !matchesKeyword(*art, keyword) {
			continue
		}
		if !isFresh(*art, now, a.retention) {
			continue
		}
		articles = append(articles, *art)
	}
	log.Printf("Fetched %d articles from %s", len(articles), src.Name)
	return articles, nil
}

// dedupeByURL keeps the first occurrence of each URL, preserving order.
func dedupeByURL(articles []model.Article) []model.Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	return out
}
