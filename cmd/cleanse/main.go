// Command cleanse runs the sales-data cleaning pipeline: it extracts a raw
// CSV export, applies the configured rule chain with full lineage and anomaly
// tracking, and writes the cleaned dataset plus its audit trail to the
// configured sink.
//
// Usage:
//
//	cleanse -config configs/sales.json [-input data/sales.csv] [-workers 8]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cleanse/internal/config"
	"cleanse/internal/engine"
	"cleanse/internal/extract"
	"cleanse/internal/metrics"
	"cleanse/internal/metrics/prompush"
	"cleanse/internal/profile"
	"cleanse/internal/refdata"
	"cleanse/internal/rule"
	"cleanse/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the pipeline JSON file (required)")
		inputPath  = flag.String("input", "", "override input.path from the config")
		workers    = flag.Int("workers", 0, "override runtime.workers from the config")
	)
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: cleanse -config <pipeline.json> [-input <file.csv>] [-workers N]")
		os.Exit(2)
	}

	if err := run(context.Background(), *configPath, *inputPath, *workers); err != nil {
		log.Fatalf("cleanse: %v", err)
	}
}

func run(ctx context.Context, configPath, inputOverride string, workersOverride int) error {
	spec, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if inputOverride != "" {
		spec.Input.Path = inputOverride
	}
	if workersOverride > 0 {
		spec.Runtime.Workers = workersOverride
	}

	job := spec.Metrics.Job
	if job == "" {
		job = "cleanse"
	}
	if spec.Metrics.PushgatewayURL != "" {
		backend, err := prompush.NewBackend(job, spec.Metrics.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(backend)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics flush: %v", err)
			}
		}()
	}

	// Extract.
	started := time.Now()
	delim := rune(0)
	if spec.Input.Delimiter != "" {
		delim = rune(spec.Input.Delimiter[0])
	}
	rows, header, err := extract.CSVFile(spec.Input.Path, extract.Options{
		Comma:     delim,
		HeaderMap: spec.Input.HeaderMap,
	})
	metrics.RecordStage(job, "extract", err, time.Since(started))
	if err != nil {
		return err
	}
	log.Printf("extracted %d rows, %d columns from %s", len(rows), len(header), spec.Input.Path)

	before := profile.Dataset(rows, header)

	// Transform.
	rules, err := spec.BuildRules()
	if err != nil {
		return err
	}
	eng := engine.New(rules, rule.Env{
		Catalog:  refdata.New(spec.Reference),
		Contract: spec.Contract,
	}, engine.Options{
		Workers:   spec.Runtime.Workers,
		Dedup:     spec.Dedup != nil,
		DedupKeys: dedupKeys(spec),
		Job:       job,
	})
	res, err := eng.Run(ctx, rows)
	if err != nil {
		return err
	}

	columns := outputColumns(spec, header, res)
	after := profile.Dataset(res.Cleaned, columns)

	// Load.
	started = time.Now()
	w, err := storage.New(ctx, storage.Config{
		Kind:  spec.Output.Kind,
		Dir:   spec.Output.Dir,
		DSN:   spec.Output.DSN,
		Table: spec.Output.Table,
	})
	if err != nil {
		return err
	}
	defer w.Close()
	err = w.WriteResult(ctx, columns, res)
	metrics.RecordStage(job, "load", err, time.Since(started))
	if err != nil {
		return err
	}

	if spec.Output.Kind == "" || spec.Output.Kind == "csv" {
		if err := writeProfiles(spec.Output.Dir, before, after); err != nil {
			return err
		}
	}

	logSummary(res)
	return nil
}

// outputColumns is the header order for the cleaned dataset: contract fields
// first (declared order), then any extra extracted or derived fields the
// contract does not mention.
func outputColumns(spec config.Pipeline, header []string, res *engine.Result) []string {
	cols := spec.Contract.FieldNames()
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}
	for _, h := range header {
		if _, ok := known[h]; !ok && h != "" {
			cols = append(cols, h)
			known[h] = struct{}{}
		}
	}
	// Derived fields are uniform across rows; sort the extras so the output
	// header is deterministic.
	if len(res.Cleaned) > 0 {
		var extras []string
		for f := range res.Cleaned[0].Fields {
			if _, ok := known[f]; !ok {
				extras = append(extras, f)
			}
		}
		sort.Strings(extras)
		cols = append(cols, extras...)
	}
	return cols
}

func dedupKeys(spec config.Pipeline) []string {
	if spec.Dedup == nil {
		return nil
	}
	return spec.Dedup.Keys
}

func writeProfiles(dir string, before, after profile.Report) error {
	if dir == "" {
		dir = "."
	}
	for name, rep := range map[string]profile.Report{
		"profile_before.json": before,
		"profile_after.json":  after,
	} {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func logSummary(res *engine.Result) {
	log.Printf("run %s: rows_in=%d rows_out=%d lineage=%d anomalies=%d drops=%d",
		res.RunID,
		res.Summary.RowsIn,
		res.Summary.RowsOut,
		res.Summary.LineageEntries,
		len(res.Anomalies),
		len(res.Drops),
	)
	for stage, n := range res.Summary.DroppedByStage {
		log.Printf("  dropped at %s: %d", stage, n)
	}
	for sev, n := range res.Summary.AnomaliesBySeverity {
		log.Printf("  anomalies %s: %d", sev, n)
	}
	if res.Summary.RowsOut == 0 && res.Summary.RowsIn > 0 {
		log.Printf("warning: every row was dropped; check rules and reference data")
	}
}
