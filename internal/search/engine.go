// Package search answers ranked (BM25) and boolean conjunctive queries
// against a completed index snapshot. An Engine captures the snapshot at
// construction and precomputes per-term IDF weights; any change to the
// underlying index requires constructing a new Engine.
package search

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/daye10/textsearch/internal/index"
	"github.com/daye10/textsearch/internal/tokenizer"
	apperrors "github.com/daye10/textsearch/pkg/errors"
)

// Default BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// ScoredDoc is one ranked search hit.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Engine serves queries against one immutable snapshot.
type Engine struct {
	snap   *index.Snapshot
	idf    map[string]float64
	tok    tokenizer.Tokenizer
	logger *slog.Logger
}

// NewEngine validates the snapshot's corpus statistics and precomputes the
// IDF table. A snapshot with documents but a non-positive average document
// length is structurally corrupt and rejected.
func NewEngine(snap *index.Snapshot, tok tokenizer.Tokenizer) (*Engine, error) {
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrInvalidConfig, 400, "snapshot must not be nil")
	}
	if snap.DocCount < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, 400, "document count %d is negative", snap.DocCount)
	}
	if snap.DocCount > 0 && snap.AvgDocLen <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, 400,
			"average document length %.2f must be positive when %d documents are indexed",
			snap.AvgDocLen, snap.DocCount)
	}

	e := &Engine{
		snap:   snap,
		idf:    make(map[string]float64, len(snap.Postings)),
		tok:    tok,
		logger: slog.Default().With("component", "search-engine"),
	}
	for term, postings := range snap.Postings {
		e.idf[term] = computeIDF(snap.DocCount, len(postings))
	}
	return e, nil
}

// Snapshot returns the snapshot this engine was built from.
func (e *Engine) Snapshot() *index.Snapshot {
	return e.snap
}

// computeIDF uses the BM25 variant with +1 inside the log, which stays
// non-negative for every term distribution (the classical
// Robertson-Sparck-Jones form can go negative for very common terms).
func computeIDF(totalDocs, docFreq int) float64 {
	numerator := float64(totalDocs) - float64(docFreq) + 0.5
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

// SearchBM25 ranks documents against a free-text query. The query is
// tokenized into a set of unique terms: duplicated query terms do not
// double-count. Documents are returned with score > 0, sorted descending by
// score (ties broken by DocID for a stable order; callers must not depend
// on tie order). Negative k1/b fall back to the defaults; zero is a valid
// value (k1=0 gives binary term scoring, b=0 disables length
// normalization).
func (e *Engine) SearchBM25(query string, k1, b float64) []ScoredDoc {
	if k1 < 0 {
		k1 = DefaultK1
	}
	if b < 0 {
		b = DefaultB
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	terms := make(map[string]struct{})
	for _, t := range e.tok.Tokenize(query) {
		terms[t] = struct{}{}
	}
	if len(terms) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for term := range terms {
		idf := e.idf[term]
		if idf == 0 {
			continue
		}
		for _, posting := range e.snap.Postings[term] {
			docLen := e.snap.DocLengths[posting.DocID]
			if docLen <= 0 {
				continue
			}
			tf := float64(posting.Frequency)
			numerator := tf * (k1 + 1)
			denominator := tf + k1*(1-b+b*(float64(docLen)/e.snap.AvgDocLen))
			scores[posting.DocID] += idf * (numerator / denominator)
		}
	}

	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		if score > 0 {
			result = append(result, ScoredDoc{DocID: docID, Score: score})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	return result
}

// SearchBooleanAnd returns the IDs of documents containing every given
// term. Terms are lowercased, empties dropped, duplicates collapsed. If any
// term is absent from the index the conjunction is immediately empty. The
// result is sorted by document ID.
func (e *Engine) SearchBooleanAnd(terms []string) []string {
	unique := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		unique[t] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}

	lists := make([][]string, 0, len(unique))
	for term := range unique {
		postings, ok := e.snap.Postings[term]
		if !ok || len(postings) == 0 {
			return nil
		}
		ids := make([]string, len(postings))
		for i, p := range postings {
			ids[i] = p.DocID
		}
		lists = append(lists, ids)
	}

	// Intersect smallest-first to minimise comparisons.
	sort.Slice(lists, func(i, j int) bool {
		return len(lists[i]) < len(lists[j])
	})

	result := lists[0]
	for i := 1; i < len(lists); i++ {
		result = intersectWithSkips(result, lists[i])
		if len(result) == 0 {
			return nil
		}
	}
	return result
}
