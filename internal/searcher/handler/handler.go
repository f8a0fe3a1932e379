// Package handler serves two-keyword search and index administration over
// HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/middleware"
)

type SearchExecutor interface {
	Execute(ctx context.Context, kw1, kw2 string) (*executor.SearchResult, error)
	Options() executor.Options
}

// IndexManager exposes the published index and full rebuilds.
type IndexManager interface {
	Index() *index.Index
	Rebuild(ctx context.Context, reason string) (indexer.BuildStats, error)
}

// Tracker receives analytics events. Track must not block.
type Tracker interface {
	Track(event any)
}

type Handler struct {
	executor SearchExecutor
	indexes  IndexManager
	cache    *cache.QueryCache
	tracker  Tracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New wires a Handler. queryCache, tracker and m are optional.
func New(exec SearchExecutor, indexes IndexManager, queryCache *cache.QueryCache, tracker Tracker, m *metrics.Metrics) *Handler {
	return &Handler{
		executor: exec,
		indexes:  indexes,
		cache:    queryCache,
		tracker:  tracker,
		metrics:  m,
		logger:   logger.WithComponent("search-handler"),
	}
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("POST /api/v1/index/rebuild", h.Rebuild)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	kw1 := r.URL.Query().Get("kw1")
	kw2 := r.URL.Query().Get("kw2")
	if kw1 == "" || kw2 == "" {
		h.recordOutcome("error")
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"query parameters 'kw1' and 'kw2' are required"))
		return
	}

	var (
		result   *executor.SearchResult
		cacheHit bool
		err      error
	)
	if idx := h.indexes.Index(); h.cache != nil && idx != nil {
		opts := h.executor.Options()
		result, cacheHit, err = h.cache.GetOrCompute(ctx, idx.ID(), kw1, kw2, opts.Limit, opts.Dedupe,
			func() (*executor.SearchResult, error) {
				return h.executor.Execute(ctx, kw1, kw2)
			})
	} else {
		result, err = h.executor.Execute(ctx, kw1, kw2)
	}
	if err != nil {
		h.recordOutcome("error")
		log.Error("search execution failed", "kw1", kw1, "kw2", kw2, "error", err)
		h.writeError(w, err)
		return
	}
	if result.Documents == nil {
		result.Documents = []string{}
	}

	latency := time.Since(start)
	outcome := "match"
	eventType := analytics.EventSearch
	if !result.Found {
		outcome = "no_match"
		eventType = analytics.EventNoMatch
	}
	h.recordOutcome(outcome)
	if h.metrics != nil {
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(result.Documents)))
	}

	log.Info("search completed",
		"kw1", kw1,
		"kw2", kw2,
		"found", result.Found,
		"returned", len(result.Documents),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.tracker != nil {
		h.tracker.Track(analytics.SearchEvent{
			Type:      eventType,
			Keyword1:  kw1,
			Keyword2:  kw2,
			Returned:  len(result.Documents),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	idx := h.indexes.Index()
	if idx == nil {
		h.writeError(w, apperrors.ErrIndexNotReady)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"keywords":  idx.KeywordCount(),
		"documents": idx.DocumentCount(),
		"built_at":  idx.BuiltAt().UTC().Format(time.RFC3339),
	})
}

// Rebuild runs a full rebuild and answers with its stats. A rebuild already
// running is reported as a conflict. The build does not inherit the request's
// cancellation: if the client goes away or the request times out, the build
// still completes and is published, and GET /api/v1/index/stats shows its
// built_at.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	stats, err := h.indexes.Rebuild(context.WithoutCancel(r.Context()), "http")
	if err != nil {
		if !errors.Is(err, apperrors.ErrBuildInProgress) {
			logger.FromContext(r.Context()).Error("index rebuild failed", "error", err)
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"build_id":    stats.BuildID,
		"documents":   stats.Documents,
		"keywords":    stats.Keywords,
		"duration_ms": stats.Duration.Milliseconds(),
		"built_at":    stats.BuiltAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) recordOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps err to its status code. Server-side failures are reported
// without their detail.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
