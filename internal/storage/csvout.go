package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cleanse/internal/engine"
	"cleanse/internal/lineage"
)

// CSVWriter writes the result as four CSV files in a directory:
// cleaned.csv, lineage.csv, anomalies.csv, drops.csv.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}
	return &CSVWriter{dir: dir}, nil
}

func (w *CSVWriter) WriteResult(ctx context.Context, columns []string, res *engine.Result) error {
	if err := w.writeFile(ctx, "cleaned.csv", append([]string{"row_id"}, columns...), cleanedRows(columns, res.Cleaned)); err != nil {
		return err
	}
	if err := w.writeFile(ctx, "lineage.csv", lineageColumns, lineageRows(res.Lineage)); err != nil {
		return err
	}
	if err := w.writeFile(ctx, "anomalies.csv", anomalyColumns, anomalyRows(res.Anomalies)); err != nil {
		return err
	}
	return w.writeFile(ctx, "drops.csv", dropColumns, dropRows(res.Drops))
}

func (w *CSVWriter) Close() error { return nil }

func (w *CSVWriter) writeFile(ctx context.Context, name string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("storage: write %s header: %w", name, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("storage: write %s: %w", name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("storage: flush %s: %w", name, err)
	}
	return f.Close()
}

func cleanedRows(columns []string, rows []engine.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, strconv.FormatInt(r.ID, 10))
		for _, c := range columns {
			cells = append(cells, lineage.FormatValue(r.Fields[c]))
		}
		out = append(out, cells)
	}
	return out
}

func lineageRows(entries []lineage.Entry) [][]string {
	out := make([][]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, []string{
			strconv.FormatInt(e.RowID, 10),
			e.Field,
			lineage.FormatValue(e.OldValue),
			lineage.FormatValue(e.NewValue),
			e.Rule,
			e.At.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func anomalyRows(anoms []lineage.Anomaly) [][]string {
	out := make([][]string, 0, len(anoms))
	for _, a := range anoms {
		out = append(out, []string{
			strconv.FormatInt(a.RowID, 10),
			a.Field,
			a.Rule,
			a.Description,
			a.Severity.String(),
		})
	}
	return out
}

func dropRows(drops []lineage.Drop) [][]string {
	out := make([][]string, 0, len(drops))
	for _, d := range drops {
		out = append(out, []string{
			strconv.FormatInt(d.RowID, 10),
			d.Stage,
			d.Reason,
		})
	}
	return out
}
