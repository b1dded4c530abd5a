// Package server exposes the retrieval engine over HTTP and coordinates
// index rebuilds triggered by ingest events or explicit requests.
package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/daye10/textsearch/internal/analytics"
	"github.com/daye10/textsearch/internal/cache"
	"github.com/daye10/textsearch/internal/engine"
	"github.com/daye10/textsearch/internal/index"
	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/pkg/kafka"
	"github.com/daye10/textsearch/pkg/metrics"
)

// SourceFactory opens a fresh document source for one rebuild pass.
type SourceFactory func(ctx context.Context) (source.Source, error)

// Rebuilder serialises index rebuilds: it builds a new snapshot through the
// engine service (which swaps it in atomically), invalidates the query
// cache, and updates build metrics.
type Rebuilder struct {
	svc       *engine.Service
	newSource SourceFactory
	cache     *cache.QueryCache
	metrics   *metrics.Metrics
	collector *analytics.Collector
	dirty     atomic.Bool
	mu        sync.Mutex
	logger    *slog.Logger
}

func NewRebuilder(svc *engine.Service, newSource SourceFactory, queryCache *cache.QueryCache, m *metrics.Metrics, collector *analytics.Collector) *Rebuilder {
	return &Rebuilder{
		svc:       svc,
		newSource: newSource,
		cache:     queryCache,
		metrics:   m,
		collector: collector,
		logger:    slog.Default().With("component", "rebuilder"),
	}
}

// Rebuild runs one full rebuild. Concurrent calls are serialised; readers
// keep the previous snapshot until the swap.
func (r *Rebuilder) Rebuild(ctx context.Context) (*index.BuildReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty.Store(false)

	src, err := r.newSource(ctx)
	if err != nil {
		return nil, err
	}
	report, err := r.svc.Rebuild(ctx, src)
	if err != nil {
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.DocsIndexedTotal.Add(float64(report.DocsIndexed))
		r.metrics.DocsSkippedTotal.Add(float64(len(report.Skipped)))
		r.metrics.IndexBuildDuration.Observe(report.Duration.Seconds())
		if snap := r.svc.Snapshot(); snap != nil {
			r.metrics.IndexDocCount.Set(float64(snap.DocCount))
			r.metrics.IndexTermCount.Set(float64(snap.TermCount()))
		}
	}
	if r.cache != nil {
		if err := r.cache.Invalidate(ctx); err != nil {
			r.logger.Error("cache invalidation after rebuild failed", "error", err)
		}
	}
	if r.collector != nil {
		r.collector.Track(analytics.RebuildEvent{
			Type:        analytics.EventRebuild,
			DocsIndexed: report.DocsIndexed,
			Terms:       report.Terms,
			Skipped:     len(report.Skipped),
			DurationMs:  report.Duration.Milliseconds(),
			Timestamp:   time.Now().UTC(),
		})
	}
	return report, nil
}

// MarkDirty flags the index for the next pass of the rebuild loop.
func (r *Rebuilder) MarkDirty() {
	r.dirty.Store(true)
}

// HandleIngestEvent is the kafka.MessageHandler for document-ingest events.
// Each event only marks the index dirty; the loop coalesces bursts into a
// single rebuild.
func (r *Rebuilder) HandleIngestEvent(ctx context.Context, key, value []byte) error {
	event, err := kafka.DecodeJSON[struct {
		DocumentID string `json:"document_id"`
	}](value)
	if err != nil {
		r.logger.Error("undecodable ingest event", "error", err)
		return nil
	}
	r.logger.Debug("ingest event received", "doc_id", event.DocumentID)
	r.MarkDirty()
	return nil
}

// StartLoop rebuilds whenever the dirty flag is set, checking at the given
// interval, until ctx is cancelled.
func (r *Rebuilder) StartLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !r.dirty.Load() {
					continue
				}
				if _, err := r.Rebuild(ctx); err != nil {
					r.logger.Error("scheduled rebuild failed", "error", err)
				}
			}
		}
	}()
}
