// Postgres backend using pgx v5: tables are created if missing, then rows are
// bulk-loaded with COPY.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanse/internal/engine"
	"cleanse/internal/lineage"
)

// Postgres persists results into a target table plus derived audit tables.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres connects a pgx pool.
func NewPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: pgxpool: %w", err)
	}
	return &Postgres{pool: pool, table: cfg.Table}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) WriteResult(ctx context.Context, columns []string, res *engine.Result) error {
	if err := p.ensureTables(ctx, columns); err != nil {
		return err
	}

	cleaned := make([][]any, 0, len(res.Cleaned))
	for _, r := range res.Cleaned {
		row := make([]any, 0, len(columns)+1)
		row = append(row, r.ID)
		for _, c := range columns {
			row = append(row, lineage.FormatValue(r.Fields[c]))
		}
		cleaned = append(cleaned, row)
	}
	if err := p.copyInto(ctx, p.table, append([]string{"row_id"}, columns...), cleaned); err != nil {
		return err
	}

	lin := make([][]any, 0, len(res.Lineage))
	for _, e := range res.Lineage {
		lin = append(lin, []any{
			e.RowID, e.Field,
			lineage.FormatValue(e.OldValue), lineage.FormatValue(e.NewValue),
			e.Rule, e.At.UTC(),
		})
	}
	if err := p.copyInto(ctx, p.table+"_lineage", lineageColumns, lin); err != nil {
		return err
	}

	anoms := make([][]any, 0, len(res.Anomalies))
	for _, a := range res.Anomalies {
		anoms = append(anoms, []any{a.RowID, a.Field, a.Rule, a.Description, a.Severity.String()})
	}
	if err := p.copyInto(ctx, p.table+"_anomalies", anomalyColumns, anoms); err != nil {
		return err
	}

	drops := make([][]any, 0, len(res.Drops))
	for _, d := range res.Drops {
		drops = append(drops, []any{d.RowID, d.Stage, d.Reason})
	}
	return p.copyInto(ctx, p.table+"_drops", dropColumns, drops)
}

func (p *Postgres) copyInto(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := p.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("storage: copy into %s: %w", table, err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("storage: copy into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return nil
}

// ensureTables creates the target and audit tables if they do not exist.
// Cleaned columns are text; downstream consumers own final typing.
func (p *Postgres) ensureTables(ctx context.Context, columns []string) error {
	cols := make([]string, 0, len(columns)+1)
	cols = append(cols, `"row_id" bigint NOT NULL`)
	for _, c := range columns {
		cols = append(cols, fmt.Sprintf("%s text", pgIdent(c)))
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgIdent(p.table), strings.Join(cols, ", ")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("row_id" bigint NOT NULL, "field" text, "old_value" text, "new_value" text, "rule" text, "timestamp" timestamptz)`, pgIdent(p.table+"_lineage")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("row_id" bigint NOT NULL, "field" text, "rule" text, "description" text, "severity" text)`, pgIdent(p.table+"_anomalies")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("row_id" bigint NOT NULL, "stage" text, "reason" text)`, pgIdent(p.table+"_drops")),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("storage: ensure tables: %w", err)
		}
	}
	return nil
}

// pgIdent double-quotes an identifier, escaping embedded quotes.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
