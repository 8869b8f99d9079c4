package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/smckee/worldpulse/internal/config"
	"github.com/smckee/worldpulse/internal/database"
	"github.com/smckee/worldpulse/internal/feed"
	"github.com/smckee/worldpulse/internal/fetch"
	"github.com/smckee/worldpulse/internal/scrape"
	"github.com/smckee/worldpulse/internal/server"
)

func main() {
	var (
		addr       = flag.String("addr", "", "listen address (overrides config)")
		configPath = flag.String("config", "", "path to YAML config file")
		dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if pg := os.Getenv("WORLDPULSE_PG"); pg != "" {
		cfg.PostgresURL = pg
	}
	if path := os.Getenv("WORLDPULSE_DB"); path != "" {
		cfg.DBPath = path
	}

	var db database.Store
	if cfg.PostgresURL != "" {
		db, err = database.NewPostgres(cfg.PostgresURL)
	} else {
		db, err = database.New(cfg.DBPath)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("Using %s database with %d sources", db.DatabaseType(), len(cfg.Sources))

	client := fetch.NewClient(time.Duration(cfg.FetchTimeoutSec) * time.Second)
	resolver := fetch.NewResolver(cfg.ResolveTimeout)
	agg := scrape.New(scrape.Options{
		Sources:     cfg.Sources,
		Client:      client,
		Normalizer:  feed.NewNormalizer(resolver),
		Concurrency: cfg.Concurrency,
		MaxArticles: cfg.MaxArticles,
		PerFeedCap:  cfg.PerFeedCap,
		Retention:   time.Duration(cfg.RetentionHours) * time.Hour,
	})
	poller := scrape.NewPoller(agg, db, time.Duration(cfg.PollIntervalMin)*time.Minute)

	srv := server.New(db, agg, poller, cfg.Sources)
	defer srv.Stop()
	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
