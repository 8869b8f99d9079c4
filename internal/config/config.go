// Package config loads the service configuration and the source list.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/smckee/worldpulse/internal/model"
	"gopkg.in/yaml.v3"
)

// Config holds all tunables. Zero values are replaced by defaults in Load.
type Config struct {
	Addr            string         `yaml:"addr"`
	DBPath          string         `yaml:"db_path"`
	PostgresURL     string         `yaml:"postgres_url"`
	PollIntervalMin int            `yaml:"poll_interval_minutes"`
	MaxArticles     int            `yaml:"max_articles"`
	PerFeedCap      int            `yaml:"per_feed_cap"`
	RetentionHours  int            `yaml:"retention_hours"`
	Concurrency     int            `yaml:"concurrency"`
	FetchTimeoutSec int            `yaml:"fetch_timeout_seconds"`
	ResolveTimeout  time.Duration  `yaml:"-"`
	Sources         []model.Source `yaml:"sources"`
}

// Default returns the built-in configuration with the full source table.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DBPath:          "worldpulse.db",
		PollIntervalMin: 60,
		MaxArticles:     50,
		PerFeedCap:      15,
		RetentionHours:  72,
		Concurrency:     10,
		FetchTimeoutSec: 15,
		ResolveTimeout:  2500 * time.Millisecond,
		Sources:         DefaultSources(),
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// A config file that lists sources replaces the built-in table entirely.
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if file.Addr != "" {
		cfg.Addr = file.Addr
	}
	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}
	if file.PostgresURL != "" {
		cfg.PostgresURL = file.PostgresURL
	}
	if file.PollIntervalMin > 0 {
		cfg.PollIntervalMin = file.PollIntervalMin
	}
	if file.MaxArticles > 0 {
		cfg.MaxArticles = file.MaxArticles
	}
	if file.PerFeedCap > 0 {
		cfg.PerFeedCap = file.PerFeedCap
	}
	if file.RetentionHours > 0 {
		cfg.RetentionHours = file.RetentionHours
	}
	if file.Concurrency > 0 {
		cfg.Concurrency = file.Concurrency
	}
	if file.FetchTimeoutSec > 0 {
		cfg.FetchTimeoutSec = file.FetchTimeoutSec
	}
	if len(file.Sources) > 0 {
		cfg.Sources = file.Sources
	}
	for i, s := range cfg.Sources {
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("source %d: name and url are required", i)
		}
	}
	return cfg, nil
}

// DefaultSources returns the built-in (source, country, region) table.
func DefaultSources() []model.Source {
	return []model.Source{
		// North America
		{Name: "CNN", Country: "US", Region: "North America", URL: "http://rss.cnn.com/rss/edition.rss"},
		{Name: "BBC News", Country: "US", Region: "North America", URL: "http://feeds.bbci.co.uk/news/rss.xml"},
		{Name: "Reuters", Country: "US", Region: "North America", URL: "https://feeds.reuters.com/reuters/topNews"},
		{Name: "Associated Press", Country: "US", Region: "North America", URL: "https://feeds.apnews.com/apnews/topnews"},
		{Name: "CBC News", Country: "CA", Region: "North America", URL: "https://rss.cbc.ca/rss/-/topstories"},

		// Europe
		{Name: "The Guardian", Country: "GB", Region: "Europe", URL: "https://www.theguardian.com/world/rss"},
		{Name: "BBC News UK", Country: "GB", Region: "Europe", URL: "http://feeds.bbci.co.uk/news/uk/rss.xml"},
		{Name: "Deutsche Welle", Country: "DE", Region: "Europe", URL: "https://rss.dw.com/rdf/rss-en-all"},
		{Name: "France 24", Country: "FR", Region: "Europe", URL: "https://www.france24.com/en/rss"},

		// Asia
		{Name: "Al Jazeera", Country: "QA", Region: "Asia", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
		{Name: "Times of India", Country: "IN", Region: "Asia", URL: "https://timesofindia.indiatimes.com/rssfeeds/296589292.cms"},
		{Name: "China Daily", Country: "CN", Region: "Asia", URL: "https://www.chinadaily.com.cn/rss/world.xml"},
		{Name: "Japan Times", Country: "JP", Region: "Asia", URL: "https://www.japantimes.co.jp/rss/news/"},
		{Name: "Straits Times", Country: "SG", Region: "Asia", URL: "https://www.straitstimes.com/news/world/rss.xml"},

		// Africa
		{Name: "BBC Africa", Country: "GB", Region: "Africa", URL: "http://feeds.bbci.co.uk/news/world/africa/rss.xml"},
		{Name: "News24", Country: "ZA", Region: "Africa", URL: "https://www.news24.com/feeds/rss"},
		{Name: "Premium Times", Country: "NG", Region: "Africa", URL: "https://www.premiumtimesng.com/feed"},

		// South America
		{Name: "BBC Latin America", Country: "GB", Region: "South America", URL: "http://feeds.bbci.co.uk/news/world/latin_america/rss.xml"},
		{Name: "Folha de S.Paulo", Country: "BR", Region: "South America", URL: "https://feeds.folha.uol.com.br/folha/mundo/rss091.xml"},
		{Name: "Clarin", Country: "AR", Region: "South America", URL: "https://www.clarin.com/rss/lo-ultimo/"},

		// Oceania
		{Name: "ABC News Australia", Country: "AU", Region: "Oceania", URL: "https://www.abc.net.au/news/feed/51120/rss.xml"},
		{Name: "BBC Australia", Country: "GB", Region: "Oceania", URL: "http://feeds.bbci.co.uk/news/world/australia/rss.xml"},
		{Name: "Stuff New Zealand", Country: "NZ", Region: "Oceania", URL: "https://www.stuff.co.nz/rss", Kind: "html"},
	}
}

// Regions returns the distinct regions in declaration order.
func Regions(sources []model.Source) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range sources {
		if !seen[s.Region] {
			seen[s.Region] = true
			out = append(out, s.Region)
		}
	}
	return out
}
