package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smckee/worldpulse/internal/database"
	"github.com/smckee/worldpulse/internal/feed"
	"github.com/smckee/worldpulse/internal/fetch"
	"github.com/smckee/worldpulse/internal/model"
	"github.com/smckee/worldpulse/internal/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, database.Store) {
	t.Helper()

	now := time.Now().Format(time.RFC1123Z)
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel>
		<item><title>EU considers new tariff structure</title><link>https://www.dailyorbit.com/tariffs</link><pubDate>` + now + `</pubDate></item>
		<item><title>Weather update for the weekend</title><link>https://www.dailyorbit.com/weather</link><pubDate>` + now + `</pubDate></item>
		</channel></rss>`))
	}))
	t.Cleanup(feedSrv.Close)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sources := []model.Source{
		{Name: "Daily Orbit", Country: "GB", Region: "Europe", URL: feedSrv.URL},
	}
	agg := scrape.New(scrape.Options{
		Sources:    sources,
		Client:     fetch.NewClient(2 * time.Second),
		Normalizer: feed.NewNormalizer(nil),
	})

	return New(db, agg, nil, sources), db
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/scrape", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "content-type")
}

func TestScrapeEndpoint(t *testing.T) {
	s, db := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Success          bool   `json:"success"`
		ArticlesScraped  int    `json:"articlesScraped"`
		SourcesProcessed int    `json:"sourcesProcessed"`
		SourcesSucceeded int    `json:"sourcesSucceeded"`
		Message          string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.ArticlesScraped)
	assert.Equal(t, 1, resp.SourcesProcessed)
	assert.Equal(t, 1, resp.SourcesSucceeded)
	assert.NotEmpty(t, resp.Message)

	total, err := db.CountArticles()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestScrapeEndpointWithKeyword(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(`{"searchQuery":"tariff"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ArticlesScraped int `json:"articlesScraped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ArticlesScraped)
}

func TestScrapeEndpointEmptyBody(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestArticlesEndpoint(t *testing.T) {
	s, db := newTestServer(t)
	_, err := db.UpsertArticles([]model.Article{{
		Title:        "Stored headline",
		Snippet:      "stored snippet",
		URL:          "https://www.dailyorbit.com/stored",
		SourceRegion: "Europe",
		PublishedAt:  time.Now(),
	}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/articles?region=Europe&q=stored", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Articles []model.Article `json:"articles"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Stored headline", resp.Articles[0].Title)
}

func TestArticlesEndpointEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// An empty store yields an empty list, not null.
	assert.Contains(t, rec.Body.String(), `"articles":[]`)
}

func TestSourcesEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Daily Orbit")
}

func TestStatsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"SQLite"`)
}

func TestExportOPMLEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/export-opml", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Daily Orbit")
}
