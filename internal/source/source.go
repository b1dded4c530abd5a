// Package source abstracts document ingestion as an ordered collection of
// (id, text) pairs. Sources yield documents one at a time so the index
// builder can skip individual failures without aborting the batch.
package source

import (
	"context"
	"fmt"
)

// Document is one unit of indexable text. ID must be stable across builds.
type Document struct {
	ID   string
	Body string
}

// Source yields documents in a stable order. Next returns io.EOF when the
// source is exhausted. A failure scoped to a single document is returned as
// a *DocError so the caller can record it and continue; any other error is
// fatal to the scan.
type Source interface {
	Next(ctx context.Context) (Document, error)
}

// DocError reports a failure reading one document. The scan remains usable
// after a DocError; subsequent Next calls move past the failed document.
type DocError struct {
	ID  string
	Err error
}

func (e *DocError) Error() string {
	return fmt.Sprintf("document %s: %v", e.ID, e.Err)
}

func (e *DocError) Unwrap() error {
	return e.Err
}
