package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daye10/textsearch/internal/analytics"
	"github.com/daye10/textsearch/internal/cache"
	"github.com/daye10/textsearch/internal/engine"
	"github.com/daye10/textsearch/internal/search"
	"github.com/daye10/textsearch/pkg/config"
	apperrors "github.com/daye10/textsearch/pkg/errors"
	"github.com/daye10/textsearch/pkg/logger"
	"github.com/daye10/textsearch/pkg/metrics"
	"github.com/daye10/textsearch/pkg/middleware"
)

// Handler serves the query endpoints.
type Handler struct {
	svc       *engine.Service
	rebuilder *Rebuilder
	cache     *cache.QueryCache
	collector *analytics.Collector
	stats     *analytics.Store
	metrics   *metrics.Metrics
	searchCfg config.SearchConfig
	logger    *slog.Logger
}

func NewHandler(
	svc *engine.Service,
	rebuilder *Rebuilder,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	stats *analytics.Store,
	m *metrics.Metrics,
	searchCfg config.SearchConfig,
) *Handler {
	return &Handler{
		svc:       svc,
		rebuilder: rebuilder,
		cache:     queryCache,
		collector: collector,
		stats:     stats,
		metrics:   m,
		searchCfg: searchCfg,
		logger:    slog.Default().With("component", "server-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&limit=N with BM25 ranking.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	compute := func() ([]search.ScoredDoc, error) {
		results := h.svc.SearchBM25(query, h.searchCfg.K1, h.searchCfg.B)
		if len(results) > limit {
			results = results[:limit]
		}
		return results, nil
	}

	var results []search.ScoredDoc
	var err error
	cacheHit := false
	if h.cache != nil {
		results, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, compute)
	} else {
		results, err = compute()
	}
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []search.ScoredDoc{}
	}

	latency := time.Since(start)
	h.observeQuery("bm25", len(results), latency)
	h.trackQuery(ctx, analytics.EventSearch, query, len(results), latency, cacheHit)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}

// BooleanAnd handles GET /api/v1/and?terms=a,b,c.
func (h *Handler) BooleanAnd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	raw := r.URL.Query().Get("terms")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'terms' is required")
		return
	}
	terms := strings.Split(raw, ",")

	docIDs := h.svc.SearchBooleanAnd(terms)
	if docIDs == nil {
		docIDs = []string{}
	}

	latency := time.Since(start)
	h.observeQuery("boolean_and", len(docIDs), latency)
	h.trackQuery(r.Context(), analytics.EventBooleanAnd, raw, len(docIDs), latency, false)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"terms":   terms,
		"doc_ids": docIDs,
	})
}

// Suggest handles GET /api/v1/suggest?prefix=...
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'prefix' is required")
		return
	}

	suggestions := h.svc.Suggest(prefix)
	if suggestions == nil {
		suggestions = []string{}
	}

	latency := time.Since(start)
	if h.metrics != nil {
		h.metrics.SuggestQueriesTotal.Inc()
	}
	h.trackQuery(r.Context(), analytics.EventSuggest, prefix, len(suggestions), latency, false)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"prefix":      prefix,
		"suggestions": suggestions,
	})
}

// Rebuild handles POST /api/v1/rebuild.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	report, err := h.rebuilder.Rebuild(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("rebuild failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "rebuild failed: "+err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// CacheStats handles GET /api/v1/cache/stats.
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
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Analytics handles GET /api/v1/analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.stats.Snapshot(10))
}

func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := h.searchCfg.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, false
		}
		if parsed > h.searchCfg.MaxResults {
			parsed = h.searchCfg.MaxResults
		}
		limit = parsed
	}
	return limit, true
}

func (h *Handler) observeQuery(kind string, results int, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "hit"
	if results == 0 {
		outcome = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(kind, outcome).Inc()
	h.metrics.SearchLatency.WithLabelValues(kind).Observe(latency.Seconds())
}

func (h *Handler) trackQuery(ctx context.Context, eventType analytics.EventType, query string, results int, latency time.Duration, cacheHit bool) {
	if h.collector == nil {
		return
	}
	if results == 0 {
		eventType = analytics.EventZeroResult
	}
	h.collector.Track(analytics.QueryEvent{
		Type:      eventType,
		Query:     query,
		Results:   results,
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
