// internal/analytics/record.go
package analytics

import (
	"context"
	"time"

	"moodbrew/internal/models"

	"github.com/google/uuid"
)

// Outcome names the path an orchestration call took.
type Outcome string

const (
	OutcomeCacheHit Outcome = "cache_hit"
	OutcomeAdvisory Outcome = "advisory"
	OutcomeFallback Outcome = "fallback"
	OutcomeSentinel Outcome = "sentinel"
)

// Record is one append-only analytics row.
type Record struct {
	ID        string      `json:"id"`
	Kind      models.Kind `json:"kind"`
	InputSize int         `json:"inputSize"`
	Outcome   Outcome     `json:"outcome"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRecord(kind models.Kind, inputSize int, outcome Outcome, at time.Time) Record {
	return Record{
		ID:        uuid.New().String(),
		Kind:      kind,
		InputSize: inputSize,
		Outcome:   outcome,
		Timestamp: at.UTC(),
	}
}

// Sink persists analytics records.
type Sink interface {
	Name() string
	Record(ctx context.Context, rec Record) error
}

// Nop discards every record.
type Nop struct{}

func (Nop) Name() string                         { return "none" }
func (Nop) Record(context.Context, Record) error { return nil }
