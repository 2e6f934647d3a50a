// SQLite backend via database/sql and the modernc driver: useful for local
// runs and tests where no server is available.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"cleanse/internal/engine"
	"cleanse/internal/lineage"
)

// SQLite persists results into a local database file.
type SQLite struct {
	db    *sql.DB
	table string
}

// NewSQLite opens (creating if needed) the database file in cfg.DSN.
func NewSQLite(cfg Config) (*SQLite, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite %s: %w", cfg.DSN, err)
	}
	return &SQLite{db: db, table: cfg.Table}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) WriteResult(ctx context.Context, columns []string, res *engine.Result) error {
	if err := s.ensureTables(ctx, columns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertCleaned(ctx, tx, columns, res.Cleaned); err != nil {
		return err
	}
	for _, e := range res.Lineage {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (row_id, field, old_value, new_value, rule, timestamp) VALUES (?, ?, ?, ?, ?, ?)", ident(s.table+"_lineage")),
			e.RowID, e.Field, lineage.FormatValue(e.OldValue), lineage.FormatValue(e.NewValue), e.Rule, e.At.UTC().Format("2006-01-02T15:04:05Z07:00"),
		); err != nil {
			return fmt.Errorf("storage: insert lineage: %w", err)
		}
	}
	for _, a := range res.Anomalies {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (row_id, field, rule, description, severity) VALUES (?, ?, ?, ?, ?)", ident(s.table+"_anomalies")),
			a.RowID, a.Field, a.Rule, a.Description, a.Severity.String(),
		); err != nil {
			return fmt.Errorf("storage: insert anomaly: %w", err)
		}
	}
	for _, d := range res.Drops {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (row_id, stage, reason) VALUES (?, ?, ?)", ident(s.table+"_drops")),
			d.RowID, d.Stage, d.Reason,
		); err != nil {
			return fmt.Errorf("storage: insert drop: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) insertCleaned(ctx context.Context, tx *sql.Tx, columns []string, rows []engine.Row) error {
	cols := make([]string, 0, len(columns)+1)
	cols = append(cols, "row_id")
	cols = append(cols, columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident(s.table), strings.Join(quoteAll(cols), ", "), placeholders)

	for _, r := range rows {
		args := make([]any, 0, len(cols))
		args = append(args, r.ID)
		for _, c := range columns {
			args = append(args, sqliteValue(r.Fields[c]))
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("storage: insert cleaned row %d: %w", r.ID, err)
		}
	}
	return nil
}

func (s *SQLite) ensureTables(ctx context.Context, columns []string) error {
	cols := make([]string, 0, len(columns)+1)
	cols = append(cols, `"row_id" INTEGER NOT NULL`)
	for _, c := range columns {
		cols = append(cols, fmt.Sprintf("%s TEXT", ident(c)))
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident(s.table), strings.Join(cols, ", ")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("row_id" INTEGER NOT NULL, "field" TEXT, "old_value" TEXT, "new_value" TEXT, "rule" TEXT, "timestamp" TEXT)`, ident(s.table+"_lineage")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("row_id" INTEGER NOT NULL, "field" TEXT, "rule" TEXT, "description" TEXT, "severity" TEXT)`, ident(s.table+"_anomalies")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("row_id" INTEGER NOT NULL, "stage" TEXT, "reason" TEXT)`, ident(s.table+"_drops")),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage: ensure tables: %w", err)
		}
	}
	return nil
}

// sqliteValue keeps native numeric/bool types so SQLite stores them with
// useful affinity; everything else is rendered as text.
func sqliteValue(v any) any {
	switch t := v.(type) {
	case nil, int64, float64, bool:
		return t
	default:
		return lineage.FormatValue(v)
	}
}

func ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ident(n)
	}
	return out
}
