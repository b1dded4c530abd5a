package analytics

import (
	"sort"
	"sync"
)

// Stats is a point-in-time view of the aggregated analytics.
type Stats struct {
	TotalQueries  int64            `json:"total_queries"`
	ZeroResults   int64            `json:"zero_results"`
	CacheHits     int64            `json:"cache_hits"`
	Rebuilds      int64            `json:"rebuilds"`
	AvgLatencyMs  float64          `json:"avg_latency_ms"`
	QueriesByType map[string]int64 `json:"queries_by_type"`
	TopQueries    []QueryCount     `json:"top_queries"`
}

// QueryCount pairs a query string with how often it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Store accumulates event counts in memory. It is safe for concurrent use.
type Store struct {
	mu            sync.Mutex
	totalQueries  int64
	zeroResults   int64
	cacheHits     int64
	rebuilds      int64
	latencySumMs  int64
	latencyCount  int64
	queriesByType map[string]int64
	queryCounts   map[string]int64
}

func NewStore() *Store {
	return &Store{
		queriesByType: make(map[string]int64),
		queryCounts:   make(map[string]int64),
	}
}

// RecordQuery folds one query event into the aggregates.
func (s *Store) RecordQuery(ev QueryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries++
	s.queriesByType[string(ev.Type)]++
	if ev.Results == 0 {
		s.zeroResults++
	}
	if ev.CacheHit {
		s.cacheHits++
	}
	s.latencySumMs += ev.LatencyMs
	s.latencyCount++
	if ev.Query != "" {
		s.queryCounts[ev.Query]++
	}
}

// RecordRebuild folds one rebuild event into the aggregates.
func (s *Store) RecordRebuild(ev RebuildEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuilds++
}

// Snapshot returns a copy of the current aggregates with the top queries
// capped at limit.
func (s *Store) Snapshot(limit int) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalQueries:  s.totalQueries,
		ZeroResults:   s.zeroResults,
		CacheHits:     s.cacheHits,
		Rebuilds:      s.rebuilds,
		QueriesByType: make(map[string]int64, len(s.queriesByType)),
	}
	if s.latencyCount > 0 {
		stats.AvgLatencyMs = float64(s.latencySumMs) / float64(s.latencyCount)
	}
	for t, n := range s.queriesByType {
		stats.QueriesByType[t] = n
	}

	top := make([]QueryCount, 0, len(s.queryCounts))
	for q, n := range s.queryCounts {
		top = append(top, QueryCount{Query: q, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Query < top[j].Query
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	stats.TopQueries = top
	return stats
}
