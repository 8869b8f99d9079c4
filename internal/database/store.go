// Package database provides storage backends for scraped articles.
package database

import "github.com/smckee/worldpulse/internal/model"

// ArticleQuery selects stored articles. Search is a case-insensitive
// substring match over title and snippet. Region of "" or "all" means no
// region restriction.
type ArticleQuery struct {
	Region string
	Search string
	Limit  int
	Offset int
}

// Store defines the interface for article storage.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// UpsertArticles inserts a batch with insert-or-ignore semantics keyed
	// by URL: existing rows are left untouched so the original discovery
	// time survives repeated ingestion runs. Returns the number of rows
	// actually inserted. Any storage error aborts the whole batch.
	UpsertArticles(articles []model.Article) (int, error)

	// QueryArticles returns stored articles ordered by published_at
	// descending, paginated by offset/limit.
	QueryArticles(q ArticleQuery) ([]model.Article, error)

	// CountArticles returns the total number of stored articles.
	CountArticles() (int64, error)

	// CountByRegion returns stored article counts grouped by source region.
	CountByRegion() (map[string]int64, error)
}
