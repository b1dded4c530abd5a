package ingest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/daye10/textsearch/pkg/kafka"
	"github.com/daye10/textsearch/pkg/postgres"
	"github.com/daye10/textsearch/pkg/resilience"
)

// Publisher coordinates document persistence and Kafka event production.
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewPublisher creates a Publisher with the given database and producer.
func NewPublisher(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "ingest-publisher"),
	}
}

// Ingest upserts the document and publishes an ingest event. Re-submitting
// the same ID replaces the stored body: the next rebuild picks up the new
// content, matching the full-rebuild update model. A Kafka failure after
// the write is logged, not returned: the document is durable and the
// periodic rebuild will still index it.
func (p *Publisher) Ingest(ctx context.Context, req *Request) (*Response, error) {
	docID := req.ID
	if docID == "" {
		docID = fmt.Sprintf("%x", sha256.Sum256([]byte(req.Body)))[:16]
	}

	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, body, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
			docID, req.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("storing document %s: %w", docID, err)
	}

	event := kafka.Event{
		Key: docID,
		Value: Event{
			DocumentID: docID,
			SizeBytes:  len(req.Body),
			IngestedAt: time.Now().UTC(),
		},
	}
	publishErr := resilience.Retry(ctx, "publish-ingest-event", resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
	}, func() error {
		return p.producer.Publish(ctx, event)
	})
	if publishErr != nil {
		p.logger.Error("ingest event not published, rebuild will rely on its timer",
			"doc_id", docID,
			"error", publishErr,
		)
	}

	p.logger.Info("document ingested", "doc_id", docID, "size", len(req.Body))
	return &Response{DocumentID: docID, Status: "STORED"}, nil
}
