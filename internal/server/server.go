// Package server provides the HTTP server and handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/smckee/worldpulse/internal/database"
	"github.com/smckee/worldpulse/internal/model"
	"github.com/smckee/worldpulse/internal/opml"
	"github.com/smckee/worldpulse/internal/scrape"
)

// scrapeTimeout bounds a user-triggered ingestion run.
const scrapeTimeout = 30 * time.Second

// Server is the main HTTP server.
type Server struct {
	db      database.Store
	agg     *scrape.Aggregator
	poller  *scrape.Poller
	sources []model.Source
	router  chi.Router
}

// New creates a new server.
func New(db database.Store, agg *scrape.Aggregator, poller *scrape.Poller, sources []model.Source) *Server {
	s := &Server{
		db:      db,
		agg:     agg,
		poller:  poller,
		sources: sources,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", s.handleScrape)
		r.Get("/articles", s.handleArticles)
		r.Get("/sources", s.handleSources)
		r.Get("/stats", s.handleStats)
		r.Get("/export-opml", s.handleExportOPML)
	})

	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server and poller.
func (s *Server) Start(addr string) error {
	if s.poller != nil {
		s.poller.Start()
	}
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop stops the poller.
func (s *Server) Stop() {
	if s.poller != nil {
		s.poller.Stop()
	}
}

// corsMiddleware permits any origin and answers preflight requests with a
// no-op response.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- API Handlers ---

// scrapeRequest is the ingestion trigger payload. Both fields are optional;
// an empty or absent body scrapes everything.
type scrapeRequest struct {
	SearchQuery string `json:"searchQuery"`
	Region      string `json:"region"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	// Tolerate an empty body the way the UI sends it.
	_ = json.NewDecoder(r.Body).Decode(&req)

	ctx, cancel := context.WithTimeout(r.Context(), scrapeTimeout)
	defer cancel()

	result, err := s.agg.Run(ctx, req.SearchQuery, req.Region)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.writeError(w, http.StatusInternalServerError, "timeout", "scrape run exceeded the time budget")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "scrape", err.Error())
		return
	}

	inserted := 0
	if len(result.Articles) > 0 {
		inserted, err = s.db.UpsertArticles(result.Articles)
		if err != nil {
			log.Printf("Error inserting articles: %v", err)
			s.writeError(w, http.StatusInternalServerError, "store", err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"articlesScraped":  len(result.Articles),
		"articlesInserted": inserted,
		"sourcesProcessed": result.SourcesProcessed,
		"sourcesSucceeded": result.SourcesSucceeded,
		"message": fmt.Sprintf("Successfully scraped %d articles from %d/%d sources",
			len(result.Articles), result.SourcesSucceeded, result.SourcesProcessed),
	})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	q := database.ArticleQuery{
		Region: r.URL.Query().Get("region"),
		Search: r.URL.Query().Get("q"),
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	articles, err := s.db.QueryArticles(q)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "query", err.Error())
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
		"count":    len(articles),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": s.sources,
		"count":   len(s.sources),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.db.CountArticles()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "stats", err.Error())
		return
	}
	byRegion, err := s.db.CountByRegion()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "stats", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": total,
		"byRegion": byRegion,
		"database": s.db.DatabaseType(),
	})
}

func (s *Server) handleExportOPML(w http.ResponseWriter, r *http.Request) {
	data, err := opml.Export("Worldpulse Sources", s.sources)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "export", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", "attachment; filename=worldpulse-sources.opml")
	w.Write(data)
}

// --- Helpers ---

func (s *Server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   kind,
		"message": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
