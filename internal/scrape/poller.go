package scrape

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/smckee/worldpulse/internal/database"
)

// runTimeout bounds one full background ingestion pass.
const runTimeout = 5 * time.Minute

// Poller re-runs a full unfiltered scrape on a fixed interval and upserts
// the results.
type Poller struct {
	agg      *Aggregator
	db       database.Store
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a background poller.
func NewPoller(agg *Aggregator, db database.Store, interval time.Duration) *Poller {
	return &Poller{
		agg:      agg,
		db:       db,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the polling loop.
func (p *Poller) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			log.Printf("Poller: scraping all sources (interval: %s)", p.interval)

			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			result, err := p.agg.Run(ctx, "", "")
			cancel()

			if err != nil {
				log.Printf("Poller error: %v", err)
			} else {
				inserted := 0
				if len(result.Articles) > 0 {
					inserted, err = p.db.UpsertArticles(result.Articles)
					if err != nil {
						log.Printf("Poller: upsert failed: %v", err)
					}
				}
				log.Printf("Poller: %d articles from %d/%d sources, %d new",
					len(result.Articles), result.SourcesSucceeded, result.SourcesProcessed, inserted)
			}

			select {
			case <-p.stopChan:
				return
			case <-time.After(p.interval):
			}
		}
	}()
}

// Stop stops the poller gracefully.
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}
