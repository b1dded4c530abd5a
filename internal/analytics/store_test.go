package analytics

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStoreAggregatesQueries(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.RecordQuery(QueryEvent{Type: EventSearch, Query: "cat", Results: 3, LatencyMs: 10})
	s.RecordQuery(QueryEvent{Type: EventSearch, Query: "cat", Results: 3, LatencyMs: 20, CacheHit: true})
	s.RecordQuery(QueryEvent{Type: EventSearch, Query: "dog", Results: 0, LatencyMs: 30})
	s.RecordQuery(QueryEvent{Type: EventSuggest, Query: "ca", Results: 2, LatencyMs: 0})
	s.RecordRebuild(RebuildEvent{Type: EventRebuild, DocsIndexed: 10})

	stats := s.Snapshot(10)

	if stats.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d, want 4", stats.TotalQueries)
	}
	if stats.ZeroResults != 1 {
		t.Errorf("ZeroResults = %d, want 1", stats.ZeroResults)
	}
	if stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", stats.CacheHits)
	}
	if stats.Rebuilds != 1 {
		t.Errorf("Rebuilds = %d, want 1", stats.Rebuilds)
	}
	if stats.AvgLatencyMs != 15 {
		t.Errorf("AvgLatencyMs = %f, want 15", stats.AvgLatencyMs)
	}
	if got := stats.QueriesByType[string(EventSearch)]; got != 3 {
		t.Errorf("QueriesByType[search] = %d, want 3", got)
	}

	wantTop := []QueryCount{
		{Query: "cat", Count: 2},
		{Query: "ca", Count: 1},
		{Query: "dog", Count: 1},
	}
	if diff := cmp.Diff(wantTop, stats.TopQueries); diff != "" {
		t.Errorf("TopQueries mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreTopQueriesLimit(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		s.RecordQuery(QueryEvent{Type: EventSearch, Query: q, Results: 1})
	}

	stats := s.Snapshot(2)
	if len(stats.TopQueries) != 2 {
		t.Errorf("len(TopQueries) = %d, want 2", len(stats.TopQueries))
	}
}

func TestStoreEmptySnapshot(t *testing.T) {
	t.Parallel()

	stats := NewStore().Snapshot(10)
	if stats.TotalQueries != 0 || stats.AvgLatencyMs != 0 {
		t.Errorf("empty store snapshot = %+v", stats)
	}
	if len(stats.TopQueries) != 0 {
		t.Errorf("TopQueries = %v, want empty", stats.TopQueries)
	}
}

func TestStoreConcurrentRecords(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.RecordQuery(QueryEvent{Type: EventSearch, Query: "load", Results: 1})
			}
		}()
	}
	wg.Wait()

	stats := s.Snapshot(1)
	if stats.TotalQueries != 800 {
		t.Errorf("TotalQueries = %d, want 800", stats.TotalQueries)
	}
	if stats.TopQueries[0].Count != 800 {
		t.Errorf("TopQueries[0].Count = %d, want 800", stats.TopQueries[0].Count)
	}
}
