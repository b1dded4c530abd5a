// Package ingest accepts new documents over HTTP, persists them to
// PostgreSQL, and publishes ingest events to Kafka so the search service
// knows a rebuild is due.
package ingest

import "time"

// Request is the payload for POST /api/v1/documents. ID is optional; when
// empty one is derived from the content hash.
type Request struct {
	ID   string `json:"id,omitempty"`
	Body string `json:"body"`
}

// Response confirms a stored document.
type Response struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// Event is published to the document-ingest topic after a successful write.
type Event struct {
	DocumentID string    `json:"document_id"`
	SizeBytes  int       `json:"size_bytes"`
	IngestedAt time.Time `json:"ingested_at"`
}
