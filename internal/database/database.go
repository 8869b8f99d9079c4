// Package database provides SQLite storage for scraped articles.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/smckee/worldpulse/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		snippet TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL UNIQUE,
		source_name TEXT NOT NULL DEFAULT '',
		source_country TEXT NOT NULL DEFAULT '',
		source_region TEXT NOT NULL DEFAULT '',
		published_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC);
	CREATE INDEX IF NOT EXISTS idx_articles_source_region ON articles(source_region);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// UpsertArticles inserts a batch, ignoring rows whose URL already exists.
func (db *DB) UpsertArticles(articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO articles (title, snippet, url, source_name, source_country, source_region, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range articles {
		res, err := stmt.Exec(a.Title, a.Snippet, a.URL, a.SourceName, a.SourceCountry, a.SourceRegion, a.PublishedAt)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// QueryArticles returns stored articles matching q, newest first.
func (db *DB) QueryArticles(q ArticleQuery) ([]model.Article, error) {
	query := "SELECT title, snippet, url, source_name, source_country, source_region, published_at FROM articles"
	var where []string
	var args []interface{}

	if q.Region != "" && q.Region != "all" {
		where = append(where, "source_region = ?")
		args = append(args, q.Region)
	}
	if q.Search != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(snippet) LIKE ?)")
		pattern := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published_at DESC LIMIT ? OFFSET ?"
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, q.Offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.Title, &a.Snippet, &a.URL, &a.SourceName, &a.SourceCountry, &a.SourceRegion, &a.PublishedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// CountArticles returns the total number of stored articles.
func (db *DB) CountArticles() (int64, error) {
	var n int64
	err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n)
	return n, err
}

// CountByRegion returns stored article counts grouped by source region.
func (db *DB) CountByRegion() (map[string]int64, error) {
	rows, err := db.conn.Query("SELECT source_region, COUNT(*) FROM articles GROUP BY source_region")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var region string
		var n int64
		if err := rows.Scan(&region, &n); err != nil {
			return nil, err
		}
		counts[region] = n
	}
	return counts, rows.Err()
}
