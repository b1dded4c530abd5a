package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/daye10/textsearch/pkg/postgres"
)

// Postgres streams documents from the documents table in id order. It backs
// the rebuild-from-database path used by the search service.
type Postgres struct {
	rows *sql.Rows
}

// NewPostgres opens a cursor over all documents. Callers own the client;
// the source closes only its own rows.
func NewPostgres(ctx context.Context, client *postgres.Client) (*Postgres, error) {
	rows, err := client.DB.QueryContext(ctx,
		`SELECT id, body FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return &Postgres{rows: rows}, nil
}

// Next implements Source. Scan failures on a single row are reported as
// *DocError so the build can continue.
func (p *Postgres) Next(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		p.rows.Close()
		return Document{}, err
	}
	if !p.rows.Next() {
		if err := p.rows.Err(); err != nil {
			return Document{}, fmt.Errorf("iterating documents: %w", err)
		}
		p.rows.Close()
		return Document{}, io.EOF
	}
	var doc Document
	if err := p.rows.Scan(&doc.ID, &doc.Body); err != nil {
		return Document{}, &DocError{ID: "<unknown>", Err: err}
	}
	return doc, nil
}
