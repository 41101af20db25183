// internal/analytics/postgres.go
package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"moodbrew/internal/common/errors"

	"github.com/lib/pq"
)

const DefaultTable = "ai_analytics"

// PostgresSink appends records to a table shaped
// (id uuid, kind text, input_size int, outcome text, recorded_at timestamptz).
type PostgresSink struct {
	db    *sql.DB
	query string
}

func NewPostgresSink(db *sql.DB, table string) *PostgresSink {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSink{
		db: db,
		query: fmt.Sprintf(
			"INSERT INTO %s (id, kind, input_size, outcome, recorded_at) VALUES ($1, $2, $3, $4, $5)",
			pq.QuoteIdentifier(table),
		),
	}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Record(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, s.query, rec.ID, string(rec.Kind), rec.InputSize, string(rec.Outcome), rec.Timestamp)
	if err != nil {
		return errors.NewAnalyticsWriteFailedError(s.Name(), err)
	}
	return nil
}
