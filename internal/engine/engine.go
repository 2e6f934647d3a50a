// Package engine applies an ordered rule list to a batch of rows, producing
// the cleaned dataset plus its complete audit trail: lineage entries for
// every value change, anomalies for every rule violation, and drop reasons
// for every removed row.
//
// Rows are processed concurrently (they share no state), but the rule chain
// inside one row is strictly sequential and the returned sequences are always
// in input order, so a run is deterministic regardless of scheduling.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cleanse/internal/lineage"
	"cleanse/internal/metrics"
	"cleanse/internal/rule"
	"cleanse/pkg/records"
)

// Row is one record moving through the pipeline. ID is assigned once at
// ingestion and never reassigned.
type Row struct {
	ID     int64
	Fields records.Record
}

// Stage names used in drop reasons for the pre-rule stages.
const (
	StageIngestion = "ingestion"
	StageDedup     = "dedup"
)

// Drop reasons for the pre-rule stages.
const (
	ReasonEmptyRow     = "fully_empty_row"
	ReasonDuplicateRow = "duplicate_row"
)

// Options tunes a run. The zero value is usable.
type Options struct {
	// Workers bounds row-level parallelism. <= 0 means GOMAXPROCS.
	Workers int

	// DedupKeys enables duplicate-row dropping keyed by the listed fields
	// when Dedup is set; empty keys hash every field.
	Dedup     bool
	DedupKeys []string

	// Job labels the run in metrics. Defaults to "cleanse".
	Job string

	// Now is the clock used to stamp lineage entries. It is read once per
	// run, so two runs with the same inputs and a fixed clock produce
	// byte-identical audit trails. Defaults to time.Now.
	Now func() time.Time
}

// Engine holds the resolved rule list and the read-only reference inputs for
// a pipeline. One engine may serve many runs; each run owns its recorders.
type Engine struct {
	rules []rule.Rule
	env   rule.Env
	opts  Options
}

// New builds an engine. The rule order is authoritative and preserved exactly.
func New(rules []rule.Rule, env rule.Env, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Job == "" {
		opts.Job = "cleanse"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{rules: rules, env: env, opts: opts}
}

// rowOutcome is everything one row produced. Outcomes are collected by input
// index so merging them back preserves input order.
type rowOutcome struct {
	entries   []lineage.Entry
	anomalies []lineage.Anomaly
	drop      *lineage.Drop
}

// Run cleans the batch. It always returns a complete Result, even when every
// row is dropped; the only error conditions are caller-level (canceled
// context). One row's failure never aborts the batch.
func (e *Engine) Run(ctx context.Context, rows []Row) (*Result, error) {
	started := time.Now()
	at := e.opts.Now()

	res := &Result{RunID: uuid.NewString()}
	res.Summary.RowsIn = len(rows)
	res.Summary.DroppedByStage = map[string]int{}

	lin := &lineage.Recorder{}
	anom := &lineage.AnomalyRecorder{}
	var drops []lineage.Drop

	// Pre-rule stages run serially over the batch.
	survivors := make([]Row, 0, len(rows))
	for _, r := range rows {
		if isEmptyRow(r.Fields, e.env.Contract.FieldNames()) {
			drops = append(drops, lineage.Drop{RowID: r.ID, Stage: StageIngestion, Reason: ReasonEmptyRow})
			continue
		}
		survivors = append(survivors, r)
	}
	if e.opts.Dedup {
		var dupDrops []lineage.Drop
		survivors, dupDrops = dedupRows(survivors, e.opts.DedupKeys)
		drops = append(drops, dupDrops...)
	}

	// Row-parallel rule application. Outcomes land at their input index, so
	// no cross-row ordering is ever observable in the output.
	outcomes := make([]rowOutcome, len(survivors))
	g, gctx := errgroup.WithContext(ctx)
	idxCh := make(chan int)

	g.Go(func() error {
		defer close(idxCh)
		for i := range survivors {
			select {
			case idxCh <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < e.opts.Workers; w++ {
		g.Go(func() error {
			for i := range idxCh {
				outcomes[i] = e.processRow(survivors[i], at)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in input order.
	for i, out := range outcomes {
		if err := lin.Append(out.entries...); err != nil {
			return nil, err
		}
		anom.Append(out.anomalies...)
		if out.drop != nil {
			drops = append(drops, *out.drop)
			continue
		}
		res.Cleaned = append(res.Cleaned, survivors[i])
	}

	res.Lineage = lin.Finalize()
	res.Anomalies = anom.Finalize()
	res.Drops = drops

	res.Summary.RowsOut = len(res.Cleaned)
	res.Summary.LineageEntries = len(res.Lineage)
	res.Summary.AnomaliesBySeverity = lineage.CountBySeverity(res.Anomalies)
	for _, d := range drops {
		res.Summary.DroppedByStage[d.Stage]++
	}

	metrics.RecordStage(e.opts.Job, "transform", nil, time.Since(started))
	metrics.RecordRows(e.opts.Job, "rows_in", int64(res.Summary.RowsIn))
	metrics.RecordRows(e.opts.Job, "rows_out", int64(res.Summary.RowsOut))
	metrics.RecordRows(e.opts.Job, "rows_dropped", int64(len(drops)))

	return res, nil
}

// processRow runs the rule chain over one row. Sequence numbers restart at 1
// per row and follow rule application order exactly.
func (e *Engine) processRow(row Row, at time.Time) rowOutcome {
	var out rowOutcome
	seq := 0

	for _, r := range e.rules {
		changes, findings, err := applyGuarded(r, row.Fields, &e.env)

		for _, c := range changes {
			if lineage.Equal(c.Old, c.New) {
				continue
			}
			seq++
			out.entries = append(out.entries, lineage.Entry{
				RowID:    row.ID,
				Field:    c.Field,
				OldValue: c.Old,
				NewValue: c.New,
				Rule:     r.Name(),
				Seq:      seq,
				At:       at,
			})
		}

		fatal := false
		var fatalReason string
		for _, f := range findings {
			out.anomalies = append(out.anomalies, lineage.Anomaly{
				RowID:       row.ID,
				Field:       f.Field,
				Rule:        r.Name(),
				Description: f.Description,
				Severity:    f.Severity,
			})
			if f.Severity == lineage.Fatal {
				// Stop at the first fatal; later findings from the same rule
				// are not recorded.
				fatal = true
				fatalReason = f.Description
				break
			}
		}
		if fatal {
			out.drop = &lineage.Drop{RowID: row.ID, Stage: r.Name(), Reason: fatalReason}
			return out
		}
		if err != nil {
			out.drop = &lineage.Drop{RowID: row.ID, Stage: r.Name(), Reason: err.Error()}
			return out
		}
	}
	return out
}

// applyGuarded converts a panicking rule into an unexpected-failure error so
// a single bad row can never take down the batch.
func applyGuarded(r rule.Rule, rec records.Record, env *rule.Env) (changes []rule.Change, findings []rule.Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			changes, findings = nil, nil
			err = fmt.Errorf("unexpected failure in rule %s: %v", r.Name(), p)
		}
	}()
	return r.Apply(rec, env)
}
