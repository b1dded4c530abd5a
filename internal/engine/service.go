// Package engine ties the index builder, search engine, and autocomplete
// engine together behind one read interface. The current read state is an
// immutable snapshot reached through an atomic pointer: rebuilds construct
// a complete replacement off to the side and swap it in, so readers never
// observe a half-built index and no internal locking is needed.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/daye10/textsearch/internal/index"
	"github.com/daye10/textsearch/internal/search"
	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/internal/suggest"
	"github.com/daye10/textsearch/internal/tokenizer"
)

// state bundles everything derived from one snapshot. It is never mutated
// after publication.
type state struct {
	snap      *index.Snapshot
	searcher  *search.Engine
	suggester *suggest.Engine
	report    *index.BuildReport
}

// Service owns the current read state and coordinates rebuilds.
type Service struct {
	builder  *index.Builder
	tok      tokenizer.Tokenizer
	suggestK int
	current  atomic.Pointer[state]
	logger   *slog.Logger
}

// New creates a Service with an empty index. suggestK is validated on the
// first rebuild (suggest.NewEngine rejects non-positive values).
func New(tok tokenizer.Tokenizer, suggestK int) *Service {
	return &Service{
		builder:  index.NewBuilder(tok),
		tok:      tok,
		suggestK: suggestK,
		logger:   slog.Default().With("component", "engine"),
	}
}

// Rebuild builds a fresh snapshot from the source, derives the search and
// autocomplete engines from it, and atomically swaps the bundle in.
// Concurrent readers keep the previous state until the swap completes.
func (s *Service) Rebuild(ctx context.Context, src source.Source) (*index.BuildReport, error) {
	snap, report, err := s.builder.Build(ctx, src)
	if err != nil {
		return nil, err
	}
	searcher, err := search.NewEngine(snap, s.tok)
	if err != nil {
		return nil, err
	}
	suggester, err := suggest.NewEngine(s.suggestK)
	if err != nil {
		return nil, err
	}
	suggester.PopulateFromSnapshot(snap)

	s.current.Store(&state{
		snap:      snap,
		searcher:  searcher,
		suggester: suggester,
		report:    report,
	})
	s.logger.Info("index swapped in",
		"docs", snap.DocCount,
		"terms", snap.TermCount(),
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// Ready reports whether a snapshot has been built and swapped in.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Snapshot returns the currently served snapshot, or nil before the first
// rebuild.
func (s *Service) Snapshot() *index.Snapshot {
	if st := s.current.Load(); st != nil {
		return st.snap
	}
	return nil
}

// LastReport returns the build report of the currently served snapshot.
func (s *Service) LastReport() *index.BuildReport {
	if st := s.current.Load(); st != nil {
		return st.report
	}
	return nil
}

// SearchBM25 ranks documents against the query using the current snapshot.
// Before the first rebuild every query answers empty.
func (s *Service) SearchBM25(query string, k1, b float64) []search.ScoredDoc {
	st := s.current.Load()
	if st == nil {
		return nil
	}
	return st.searcher.SearchBM25(query, k1, b)
}

// SearchBooleanAnd returns documents containing every term.
func (s *Service) SearchBooleanAnd(terms []string) []string {
	st := s.current.Load()
	if st == nil {
		return nil
	}
	return st.searcher.SearchBooleanAnd(terms)
}

// Suggest returns autocomplete suggestions for the prefix.
func (s *Service) Suggest(prefix string) []string {
	st := s.current.Load()
	if st == nil {
		return nil
	}
	return st.suggester.Suggest(prefix)
}
