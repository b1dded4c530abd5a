package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/internal/tokenizer"
	apperrors "github.com/daye10/textsearch/pkg/errors"
)

// SkippedDoc records one document the builder could not process.
type SkippedDoc struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BuildReport is the per-build outcome handed back to the caller so skipped
// documents can be inspected programmatically instead of scraped from logs.
type BuildReport struct {
	DocsIndexed int           `json:"docs_indexed"`
	Terms       int           `json:"terms"`
	Skipped     []SkippedDoc  `json:"skipped,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Builder scans a document source and produces an immutable Snapshot.
type Builder struct {
	tok    tokenizer.Tokenizer
	logger *slog.Logger
}

// NewBuilder creates a Builder using the given tokenizer.
func NewBuilder(tok tokenizer.Tokenizer) *Builder {
	return &Builder{
		tok:    tok,
		logger: slog.Default().With("component", "index-builder"),
	}
}

// Build tokenizes every document the source yields and assembles the
// inverted index, document lengths, and corpus statistics. A failure scoped
// to one document (a *source.DocError) skips that document (it does not
// count toward DocCount) and the build continues; any other error aborts
// the build. An exhausted-but-present source produces an empty snapshot,
// not an error.
func (b *Builder) Build(ctx context.Context, src source.Source) (*Snapshot, *BuildReport, error) {
	start := time.Now()

	// term -> docID -> frequency accumulator, finalized into sorted
	// posting lists below.
	accum := make(map[string]map[string]int)
	docLengths := make(map[string]int)
	report := &BuildReport{}
	totalTokens := 0

	for {
		doc, err := src.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			var docErr *source.DocError
			if errors.As(err, &docErr) {
				b.logger.Warn("skipping unreadable document",
					"doc_id", docErr.ID,
					"error", docErr.Err,
				)
				report.Skipped = append(report.Skipped, SkippedDoc{
					ID:     docErr.ID,
					Reason: fmt.Sprintf("%s: %v", apperrors.ErrDocumentRead, docErr.Err),
				})
				continue
			}
			return nil, nil, fmt.Errorf("scanning document source: %w", err)
		}

		tokens := b.tok.Tokenize(doc.Body)
		docLengths[doc.ID] = len(tokens)
		totalTokens += len(tokens)
		report.DocsIndexed++

		for _, term := range tokens {
			perDoc, ok := accum[term]
			if !ok {
				perDoc = make(map[string]int)
				accum[term] = perDoc
			}
			perDoc[doc.ID]++
		}
	}

	snap := &Snapshot{
		Postings:   make(map[string]PostingList, len(accum)),
		DocLengths: docLengths,
		DocCount:   report.DocsIndexed,
	}
	if snap.DocCount > 0 {
		snap.AvgDocLen = float64(totalTokens) / float64(snap.DocCount)
	}

	for term, perDoc := range accum {
		postings := make(PostingList, 0, len(perDoc))
		for docID, freq := range perDoc {
			postings = append(postings, Posting{DocID: docID, Frequency: freq})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		snap.Postings[term] = postings
	}

	report.Terms = snap.TermCount()
	report.Duration = time.Since(start)

	if snap.DocCount == 0 {
		b.logger.Warn("no documents indexed, snapshot is empty",
			"skipped", len(report.Skipped),
		)
	} else {
		b.logger.Info("index build complete",
			"docs", snap.DocCount,
			"terms", report.Terms,
			"avg_doc_len", snap.AvgDocLen,
			"skipped", len(report.Skipped),
			"duration", report.Duration,
		)
	}
	return snap, report, nil
}
