// Package storage persists pipeline results. It contains storage-agnostic
// contracts plus backend constructors; the pipeline core never imports
// database drivers directly.
package storage

import (
	"context"
	"fmt"

	"cleanse/internal/engine"
)

// Writer persists one pipeline result: the cleaned dataset plus the lineage,
// anomaly, and drop sequences.
type Writer interface {
	WriteResult(ctx context.Context, columns []string, res *engine.Result) error
	Close() error
}

// Config selects and configures a storage backend.
type Config struct {
	// Kind selects the backend: "csv" (default), "postgres", or "sqlite".
	Kind string

	// Dir is the output directory for the csv backend.
	Dir string

	// DSN is the pgx connection string for postgres, or the database file
	// path for sqlite.
	DSN string

	// Table is the base table name for database backends. Audit tables derive
	// from it: <table>_lineage, <table>_anomalies, <table>_drops.
	Table string
}

// New constructs the configured Writer.
func New(ctx context.Context, cfg Config) (Writer, error) {
	switch cfg.Kind {
	case "", "csv":
		return NewCSVWriter(cfg.Dir)
	case "postgres":
		return NewPostgres(ctx, cfg)
	case "sqlite":
		return NewSQLite(cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported kind %q", cfg.Kind)
	}
}

// Serialization headers shared by all backends.
var (
	lineageColumns = []string{"row_id", "field", "old_value", "new_value", "rule", "timestamp"}
	anomalyColumns = []string{"row_id", "field", "rule", "description", "severity"}
	dropColumns    = []string{"row_id", "stage", "reason"}
)
