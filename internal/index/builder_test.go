package index

import (
	"context"
	"errors"
	"io"
	"math"
	"sort"
	"testing"

	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/internal/tokenizer"
	"github.com/google/go-cmp/cmp"
)

// fakeSource replays a fixed script of documents and errors.
type fakeSource struct {
	items []fakeItem
	pos   int
}

type fakeItem struct {
	doc source.Document
	err error
}

func (f *fakeSource) Next(ctx context.Context) (source.Document, error) {
	if f.pos >= len(f.items) {
		return source.Document{}, io.EOF
	}
	item := f.items[f.pos]
	f.pos++
	return item.doc, item.err
}

func docsOf(bodies map[string]string) *fakeSource {
	ids := make([]string, 0, len(bodies))
	for id := range bodies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	f := &fakeSource{}
	for _, id := range ids {
		f.items = append(f.items, fakeItem{doc: source.Document{ID: id, Body: bodies[id]}})
	}
	return f
}

func TestBuildBasicCorpus(t *testing.T) {
	t.Parallel()

	b := NewBuilder(tokenizer.NewSimple())
	snap, report, err := b.Build(context.Background(), docsOf(map[string]string{
		"doc1": "the cat sat on the mat",
		"doc2": "the dog sat on the log",
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.DocCount != 2 {
		t.Errorf("DocCount = %d, want 2", snap.DocCount)
	}
	if report.DocsIndexed != 2 {
		t.Errorf("DocsIndexed = %d, want 2", report.DocsIndexed)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("unexpected skips: %v", report.Skipped)
	}

	// Both documents are 6 tokens long.
	if snap.DocLengths["doc1"] != 6 || snap.DocLengths["doc2"] != 6 {
		t.Errorf("DocLengths = %v, want 6 each", snap.DocLengths)
	}
	if math.Abs(snap.AvgDocLen-6.0) > 1e-9 {
		t.Errorf("AvgDocLen = %f, want 6.0", snap.AvgDocLen)
	}

	// "the" occurs twice per document; shared terms list both docs.
	want := PostingList{{DocID: "doc1", Frequency: 2}, {DocID: "doc2", Frequency: 2}}
	if diff := cmp.Diff(want, snap.Postings["the"]); diff != "" {
		t.Errorf("postings for \"the\" mismatch (-want +got):\n%s", diff)
	}
	if got := snap.DocFrequency("cat"); got != 1 {
		t.Errorf("DocFrequency(cat) = %d, want 1", got)
	}
	if got := snap.DocFrequency("sat"); got != 2 {
		t.Errorf("DocFrequency(sat) = %d, want 2", got)
	}
}

func TestBuildPostingInvariants(t *testing.T) {
	t.Parallel()

	b := NewBuilder(tokenizer.NewSimple())
	snap, _, err := b.Build(context.Background(), docsOf(map[string]string{
		"zebra": "apple banana apple",
		"alpha": "banana cherry",
		"mid":   "apple cherry cherry apple apple",
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for term, postings := range snap.Postings {
		if len(postings) == 0 {
			t.Errorf("term %q has an empty posting list", term)
		}
		for i, p := range postings {
			if p.Frequency < 1 {
				t.Errorf("term %q doc %q frequency %d < 1", term, p.DocID, p.Frequency)
			}
			if _, ok := snap.DocLengths[p.DocID]; !ok {
				t.Errorf("term %q posting references unknown doc %q", term, p.DocID)
			}
			if i > 0 && postings[i-1].DocID >= p.DocID {
				t.Errorf("term %q postings not strictly sorted: %q >= %q", term, postings[i-1].DocID, p.DocID)
			}
		}
	}

	if got := snap.Postings["apple"]; len(got) != 2 || got[0].DocID != "mid" || got[0].Frequency != 3 {
		t.Errorf("postings for apple = %v", got)
	}
}

func TestBuildEmptySource(t *testing.T) {
	t.Parallel()

	b := NewBuilder(tokenizer.NewSimple())
	snap, report, err := b.Build(context.Background(), &fakeSource{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.DocCount != 0 {
		t.Errorf("DocCount = %d, want 0", snap.DocCount)
	}
	if snap.AvgDocLen != 0 {
		t.Errorf("AvgDocLen = %f, want 0", snap.AvgDocLen)
	}
	if snap.TermCount() != 0 {
		t.Errorf("TermCount = %d, want 0", snap.TermCount())
	}
	if report.DocsIndexed != 0 {
		t.Errorf("DocsIndexed = %d, want 0", report.DocsIndexed)
	}
}

func TestBuildSkipsFailedDocuments(t *testing.T) {
	t.Parallel()

	src := &fakeSource{items: []fakeItem{
		{doc: source.Document{ID: "ok1", Body: "alpha beta"}},
		{err: &source.DocError{ID: "broken", Err: errors.New("read failed")}},
		{doc: source.Document{ID: "ok2", Body: "beta gamma"}},
	}}

	b := NewBuilder(tokenizer.NewSimple())
	snap, report, err := b.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.DocCount != 2 {
		t.Errorf("DocCount = %d, want 2 (skipped doc must not count)", snap.DocCount)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].ID != "broken" {
		t.Errorf("Skipped = %v, want one entry for broken", report.Skipped)
	}
	if _, ok := snap.DocLengths["broken"]; ok {
		t.Error("skipped document must not appear in DocLengths")
	}
}

func TestBuildFatalSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection lost")
	src := &fakeSource{items: []fakeItem{
		{doc: source.Document{ID: "ok", Body: "alpha"}},
		{err: boom},
	}}

	b := NewBuilder(tokenizer.NewSimple())
	_, _, err := b.Build(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fatal error to abort the build, got %v", err)
	}
}

func TestBuildEmptyDocumentIndexedWithZeroLength(t *testing.T) {
	t.Parallel()

	b := NewBuilder(tokenizer.NewSimple())
	snap, _, err := b.Build(context.Background(), docsOf(map[string]string{
		"empty": "",
		"full":  "word",
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.DocCount != 2 {
		t.Errorf("DocCount = %d, want 2", snap.DocCount)
	}
	if got := snap.DocLengths["empty"]; got != 0 {
		t.Errorf("DocLengths[empty] = %d, want 0", got)
	}
	if math.Abs(snap.AvgDocLen-0.5) > 1e-9 {
		t.Errorf("AvgDocLen = %f, want 0.5", snap.AvgDocLen)
	}
}
