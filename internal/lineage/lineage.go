// Package lineage holds the audit-trail value types produced by the cleaning
// pipeline and the per-run recorders that collect them.
//
// A run owns its recorders: they are created when the pipeline run starts and
// finalized when it ends. There is no package-level state, so two concurrent
// runs never mix their audit facts.
package lineage

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Severity classifies an anomaly.
//
//   - Warning and Error never stop row processing.
//   - Fatal causes the owning row to be dropped.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Entry records one field change made by one rule on one row. Entries exist
// only where the old and new value actually differ.
type Entry struct {
	RowID    int64     `json:"row_id"`
	Field    string    `json:"field"`
	OldValue any       `json:"old_value"`
	NewValue any       `json:"new_value"`
	Rule     string    `json:"rule"`
	Seq      int       `json:"seq"` // 1-based, monotonic per row, rule application order
	At       time.Time `json:"timestamp"`
}

// Anomaly records one rule violation on one row.
type Anomaly struct {
	RowID       int64    `json:"row_id"`
	Field       string   `json:"field"`
	Rule        string   `json:"rule"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Drop records why a row was removed from the batch. Every dropped row has
// exactly one Drop; none are silently discarded.
type Drop struct {
	RowID  int64  `json:"row_id"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Recorder is an append-only collector of lineage entries. It is safe for
// concurrent append from multiple row workers; Finalize imposes the canonical
// (row_id, seq) order once at the end of the run.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Append adds entries to the recorder. Entries with equal old and new values
// are rejected with an error rather than silently skipped: sequence numbers
// are assigned upstream, so a spurious entry is a bug in the caller.
func (r *Recorder) Append(entries ...Entry) error {
	for _, e := range entries {
		if Equal(e.OldValue, e.NewValue) {
			return fmt.Errorf("lineage: spurious entry for row %d field %q (old == new)", e.RowID, e.Field)
		}
	}
	r.mu.Lock()
	r.entries = append(r.entries, entries...)
	r.mu.Unlock()
	return nil
}

// Len reports how many entries have been recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Finalize stable-sorts the collected entries by (row_id, seq) and returns
// them. The recorder must not be appended to after Finalize.
func (r *Recorder) Finalize() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].RowID != r.entries[j].RowID {
			return r.entries[i].RowID < r.entries[j].RowID
		}
		return r.entries[i].Seq < r.entries[j].Seq
	})
	return r.entries
}

// AnomalyRecorder collects rule violations. Concurrent-append safe.
type AnomalyRecorder struct {
	mu        sync.Mutex
	anomalies []Anomaly
}

// Append adds anomalies to the recorder.
func (r *AnomalyRecorder) Append(anoms ...Anomaly) {
	r.mu.Lock()
	r.anomalies = append(r.anomalies, anoms...)
	r.mu.Unlock()
}

// Finalize stable-sorts the anomalies by row id and returns them.
func (r *AnomalyRecorder) Finalize() []Anomaly {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.SliceStable(r.anomalies, func(i, j int) bool {
		return r.anomalies[i].RowID < r.anomalies[j].RowID
	})
	return r.anomalies
}

// CountBySeverity tallies finalized anomalies per severity name.
func CountBySeverity(anoms []Anomaly) map[string]int {
	out := make(map[string]int, 3)
	for _, a := range anoms {
		out[a.Severity.String()]++
	}
	return out
}

// Equal reports whether two field values are the same for lineage purposes.
// Both-missing compares equal, as do two NaNs; numeric values compare across
// int/float representations so that a no-op coercion never produces an entry.
func Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if fa, aok := asFloat(a); aok {
		if fb, bok := asFloat(b); bok {
			if math.IsNaN(fa) && math.IsNaN(fb) {
				return true
			}
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// FormatValue renders a field value for serialization (CSV cells, DB text
// columns). nil becomes the empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
