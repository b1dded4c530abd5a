package search

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/daye10/textsearch/internal/index"
	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/internal/tokenizer"
	apperrors "github.com/daye10/textsearch/pkg/errors"
	"github.com/google/go-cmp/cmp"
)

type sliceSource struct {
	docs []source.Document
	pos  int
}

func (s *sliceSource) Next(ctx context.Context) (source.Document, error) {
	if s.pos >= len(s.docs) {
		return source.Document{}, io.EOF
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, nil
}

func buildEngine(t *testing.T, docs ...source.Document) *Engine {
	t.Helper()
	b := index.NewBuilder(tokenizer.NewSimple())
	snap, _, err := b.Build(context.Background(), &sliceSource{docs: docs})
	if err != nil {
		t.Fatalf("building index: %v", err)
	}
	e, err := NewEngine(snap, tokenizer.NewSimple())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func catDogEngine(t *testing.T) *Engine {
	t.Helper()
	return buildEngine(t,
		source.Document{ID: "doc1", Body: "the cat sat on the mat"},
		source.Document{ID: "doc2", Body: "the dog sat on the log"},
	)
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	tok := tokenizer.NewSimple()

	tests := []struct {
		name string
		snap *index.Snapshot
	}{
		{name: "nil snapshot", snap: nil},
		{name: "negative doc count", snap: &index.Snapshot{DocCount: -1}},
		{
			name: "docs without average length",
			snap: &index.Snapshot{DocCount: 3, AvgDocLen: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.snap, tok)
			if !errors.Is(err, apperrors.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	// An empty snapshot is valid: zero docs with zero average length.
	if _, err := NewEngine(&index.Snapshot{}, tok); err != nil {
		t.Errorf("empty snapshot rejected: %v", err)
	}
}

func TestSearchBM25SingleTerm(t *testing.T) {
	t.Parallel()

	e := catDogEngine(t)

	got := e.SearchBM25("cat", -1, -1)
	if len(got) != 1 {
		t.Fatalf("expected exactly one hit, got %v", got)
	}
	if got[0].DocID != "doc1" {
		t.Errorf("DocID = %q, want doc1", got[0].DocID)
	}
	if got[0].Score <= 0 {
		t.Errorf("Score = %f, want > 0", got[0].Score)
	}
}

func TestSearchBM25SharedTermHitsBoth(t *testing.T) {
	t.Parallel()

	e := catDogEngine(t)

	got := e.SearchBM25("sat", -1, -1)
	if len(got) != 2 {
		t.Fatalf("expected two hits, got %v", got)
	}
	// Identical tf, doc length, and idf: scores tie and DocID breaks it.
	if got[0].DocID != "doc1" || got[1].DocID != "doc2" {
		t.Errorf("order = [%s %s], want [doc1 doc2]", got[0].DocID, got[1].DocID)
	}
	if got[0].Score != got[1].Score {
		t.Errorf("scores differ for symmetric documents: %f vs %f", got[0].Score, got[1].Score)
	}
}

func TestSearchBM25UnknownAndEmptyQueries(t *testing.T) {
	t.Parallel()

	e := catDogEngine(t)

	if got := e.SearchBM25("elephant", -1, -1); len(got) != 0 {
		t.Errorf("unknown term returned %v, want empty", got)
	}
	if got := e.SearchBM25("", -1, -1); len(got) != 0 {
		t.Errorf("empty query returned %v, want empty", got)
	}
	if got := e.SearchBM25("   !!!   ", -1, -1); len(got) != 0 {
		t.Errorf("punctuation-only query returned %v, want empty", got)
	}
}

func TestSearchBM25DuplicateTermsDoNotDoubleCount(t *testing.T) {
	t.Parallel()

	e := catDogEngine(t)

	once := e.SearchBM25("cat", -1, -1)
	twice := e.SearchBM25("cat cat cat", -1, -1)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("duplicated query terms changed scoring (-once +twice):\n%s", diff)
	}
}

func TestSearchBM25HigherTermFrequencyScoresHigher(t *testing.T) {
	t.Parallel()

	// Same document length so tf is the only varying signal.
	e := buildEngine(t,
		source.Document{ID: "heavy", Body: "apple apple apple pear plum"},
		source.Document{ID: "light", Body: "apple pear plum fig date"},
	)

	got := e.SearchBM25("apple", -1, -1)
	if len(got) != 2 {
		t.Fatalf("expected two hits, got %v", got)
	}
	if got[0].DocID != "heavy" {
		t.Errorf("highest tf should rank first, got %q", got[0].DocID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("score order violated: %f <= %f", got[0].Score, got[1].Score)
	}
}

func TestSearchBM25ShorterDocumentScoresHigher(t *testing.T) {
	t.Parallel()

	// Same tf, different lengths: length normalisation favours the
	// shorter document.
	e := buildEngine(t,
		source.Document{ID: "short", Body: "apple pear"},
		source.Document{ID: "long", Body: "apple pear plum fig date kiwi mango grape"},
	)

	got := e.SearchBM25("apple", -1, -1)
	if len(got) != 2 {
		t.Fatalf("expected two hits, got %v", got)
	}
	if got[0].DocID != "short" {
		t.Errorf("shorter document should rank first, got %q", got[0].DocID)
	}
}

func TestSearchBM25ZeroBDisablesLengthNormalisation(t *testing.T) {
	t.Parallel()

	// Same tf, different lengths. With b=0 the length term drops out of
	// the denominator, so both documents score identically.
	e := buildEngine(t,
		source.Document{ID: "short", Body: "apple pear"},
		source.Document{ID: "long", Body: "apple pear plum fig date kiwi mango grape"},
	)

	got := e.SearchBM25("apple", -1, 0)
	if len(got) != 2 {
		t.Fatalf("expected two hits, got %v", got)
	}
	if got[0].Score != got[1].Score {
		t.Errorf("b=0 should ignore document length: %f != %f", got[0].Score, got[1].Score)
	}
}

func TestSearchBM25NegativeParamsUseDefaults(t *testing.T) {
	t.Parallel()

	e := buildEngine(t,
		source.Document{ID: "short", Body: "apple pear"},
		source.Document{ID: "long", Body: "apple pear plum fig date kiwi mango grape"},
	)

	want := e.SearchBM25("apple", DefaultK1, DefaultB)
	got := e.SearchBM25("apple", -1, -1)
	if len(got) != len(want) {
		t.Fatalf("result size mismatch: %d != %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("result %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSearchBM25MultiTermAccumulates(t *testing.T) {
	t.Parallel()

	e := catDogEngine(t)

	single := e.SearchBM25("cat", -1, -1)
	multi := e.SearchBM25("cat mat", -1, -1)
	if len(multi) != 1 || multi[0].DocID != "doc1" {
		t.Fatalf("expected only doc1 for cat+mat, got %v", multi)
	}
	if multi[0].Score <= single[0].Score {
		t.Errorf("adding a second matching term did not raise the score: %f <= %f",
			multi[0].Score, single[0].Score)
	}
}

func TestSearchBM25EmptyIndex(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(&index.Snapshot{
		Postings:   map[string]index.PostingList{},
		DocLengths: map[string]int{},
	}, tokenizer.NewSimple())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if got := e.SearchBM25("anything", -1, -1); len(got) != 0 {
		t.Errorf("empty index returned %v", got)
	}
}

func TestSearchBooleanAnd(t *testing.T) {
	t.Parallel()

	e := catDogEngine(t)

	tests := []struct {
		name  string
		terms []string
		want  []string
	}{
		{
			name:  "shared terms hit both",
			terms: []string{"the", "sat"},
			want:  []string{"doc1", "doc2"},
		},
		{
			name:  "disjoint terms empty",
			terms: []string{"cat", "dog"},
			want:  nil,
		},
		{
			name:  "unknown term short-circuits",
			terms: []string{"the", "unicorn"},
			want:  nil,
		},
		{
			name:  "single term",
			terms: []string{"mat"},
			want:  []string{"doc1"},
		},
		{
			name:  "case and whitespace normalised",
			terms: []string{"  The ", "SAT"},
			want:  []string{"doc1", "doc2"},
		},
		{
			name:  "duplicates collapse",
			terms: []string{"cat", "cat", "cat"},
			want:  []string{"doc1"},
		},
		{
			name:  "empty input",
			terms: nil,
			want:  nil,
		},
		{
			name:  "blank terms only",
			terms: []string{"", "   "},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.SearchBooleanAnd(tt.terms)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SearchBooleanAnd(%v) mismatch (-want +got):\n%s", tt.terms, diff)
			}
		})
	}
}

func TestSearchBooleanAndManyTerms(t *testing.T) {
	t.Parallel()

	e := buildEngine(t,
		source.Document{ID: "a", Body: "red green blue yellow"},
		source.Document{ID: "b", Body: "red green blue"},
		source.Document{ID: "c", Body: "red green"},
		source.Document{ID: "d", Body: "red"},
	)

	got := e.SearchBooleanAnd([]string{"red", "green", "blue"})
	want := []string{"a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
