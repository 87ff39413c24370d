// Package api provides the read-only HTTP API for tickerpulse.
//
// It exposes the compiled knowledge index, stored sentiment rows, pipeline
// run history and an ad-hoc headline matching endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/infra"
	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/internal/matching"
	"github.com/seenimoa/tickerpulse/internal/store/sqlite"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Version is reported by /health.
var Version = "dev"

// ScoreReader is the read side of the sentiment store.
type ScoreReader interface {
	ScoresByTicker(ctx context.Context, q sqlite.ScoreQuery) ([]models.ScoredRow, error)
	TickerSummaries(ctx context.Context) ([]models.TickerSummary, error)
	RecentRuns(ctx context.Context, limit int) ([]models.RunReport, error)
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	index   *knowledge.Index
	matcher *matching.Matcher
	store   ScoreReader // nil when storage is disabled
	cache   *infra.Cache[any]
	logger  *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
// store may be nil; score and run endpoints then answer 503.
func NewServer(cfg *config.Config, ix *knowledge.Index, store ScoreReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ttl := time.Duration(cfg.API.CacheTTL) * time.Second
	srv := &Server{
		cfg:     cfg,
		index:   ix,
		matcher: matching.New(ix),
		store:   store,
		cache:   infra.NewCache[any](ttl),
		logger:  logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT/SIGTERM or when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Knowledge index
		r.Get("/tickers", s.handleTickers)
		r.Get("/tickers/{ticker}", s.handleTicker)

		// Stored scores
		r.Get("/tickers/{ticker}/scores", s.handleTickerScores)
		r.Get("/summary", s.handleSummary)
		r.Get("/runs", s.handleRuns)

		// Matching
		r.Post("/match", s.handleMatch)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TickerInfo summarizes one ticker profile for GET /api/v1/tickers.
type TickerInfo struct {
	Ticker          string `json:"ticker"`
	Keywords        int    `json:"keywords"`
	PartnerKeywords int    `json:"partner_keywords"`
	Contexts        int    `json:"contexts"`
	SourcePath      string `json:"source_path,omitempty"`
}

// MatchRequest is the body for POST /api/v1/match.
type MatchRequest struct {
	Headline string `json:"headline"`
	URL      string `json:"url,omitempty"`
	Source   string `json:"source,omitempty"`
	Reporter string `json:"reporter,omitempty"`
	PostedAt string `json:"posted_at,omitempty"`
}

// MatchResponse is the data returned by POST /api/v1/match.
type MatchResponse struct {
	IsAIRelated bool                `json:"is_ai_related"`
	Tickers     []string            `json:"tickers"`
	Context     string              `json:"context,omitempty"`
	Rows        []models.MatchedRow `json:"rows"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"tickers": s.index.Len(),
			"storage": s.store != nil,
			"time":    utils.FormatISO(time.Now()),
		},
	})
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	symbols := s.index.Symbols()
	out := make([]TickerInfo, 0, len(symbols))
	for _, sym := range symbols {
		p, _ := s.index.Profile(sym)
		out = append(out, TickerInfo{
			Ticker:          sym,
			Keywords:        len(p.Keywords),
			PartnerKeywords: len(p.PartnerKeywords),
			Contexts:        len(p.KeywordContexts),
			SourcePath:      p.SourcePath,
		})
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	p, ok := s.index.Profile(ticker)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown ticker: %s", ticker))
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: p})
}

func (s *Server) handleTickerScores(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not enabled")
		return
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	q := sqlite.ScoreQuery{Ticker: ticker, Limit: 100, Since: r.URL.Query().Get("since")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		q.Limit = n
	}
	if v := r.URL.Query().Get("ai_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ai_only must be a boolean")
			return
		}
		q.AIOnly = b
	}

	key := fmt.Sprintf("scores:%s:%d:%t:%s", q.Ticker, q.Limit, q.AIOnly, q.Since)
	rows, err := s.cache.GetOrLoad(key, func() (any, error) {
		rows, err := s.store.ScoresByTicker(r.Context(), q)
		if rows == nil {
			rows = []models.ScoredRow{}
		}
		return rows, err
	})
	if err != nil {
		s.logger.Error("querying scores", "ticker", ticker, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rows})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not enabled")
		return
	}
	sums, err := s.cache.GetOrLoad("summary", func() (any, error) {
		sums, err := s.store.TickerSummaries(r.Context())
		if sums == nil {
			sums = []models.TickerSummary{}
		}
		return sums, err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sums})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not enabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.store.RecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []models.RunReport{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: runs})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Headline) == "" {
		writeError(w, http.StatusBadRequest, "headline is required")
		return
	}

	rows := s.matcher.Match(models.HeadlineRecord{
		Headline: req.Headline,
		URL:      req.URL,
		Source:   req.Source,
		Reporter: req.Reporter,
		PostedAt: req.PostedAt,
	})
	resp := MatchResponse{
		IsAIRelated: s.matcher.IsAIRelated(req.Headline),
		Tickers:     make([]string, 0, len(rows)),
		Rows:        rows,
	}
	if resp.Rows == nil {
		resp.Rows = []models.MatchedRow{}
	}
	for _, row := range rows {
		resp.Tickers = append(resp.Tickers, row.Ticker)
	}
	resp.Context = s.index.ContextFor(req.Headline, resp.Tickers)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
