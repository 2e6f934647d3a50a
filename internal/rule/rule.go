// Package rule contains the closed set of deterministic cleaning rules the
// engine applies to each row.
//
// A rule is a pure function of (record, reference catalog, schema contract).
// It mutates the record in place and reports what it did: one Change per
// field it altered and one Finding per violation it observed. Expected
// failure modes (unparseable values, unmapped references, schema violations,
// business-rule violations) are Findings with a severity, never Go errors;
// the error return is reserved for genuinely unexpected faults, which the
// engine converts into a row drop.
package rule

import (
	"encoding/json"
	"fmt"

	"cleanse/internal/lineage"
	"cleanse/internal/refdata"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

// Env carries the read-only inputs rules may consult. Rules never mutate it.
type Env struct {
	Catalog  *refdata.Catalog
	Contract schema.Contract
}

// Change describes one field mutation. Old and New always differ.
type Change struct {
	Field string
	Old   any
	New   any
}

// Finding describes one rule violation on the current record.
type Finding struct {
	Field       string
	Description string
	Severity    lineage.Severity
}

// Rule is a single transformation or validation step over one record.
type Rule interface {
	// Name identifies the rule in lineage entries, anomalies, and drop reasons.
	Name() string

	// Apply mutates rec in place and reports changes and findings. A non-nil
	// error means an unexpected fault; the engine drops the row and continues
	// with the batch.
	Apply(rec records.Record, env *Env) ([]Change, []Finding, error)
}

// New resolves a configured rule kind and its raw JSON options into a
// concrete rule. Unknown kinds are a configuration error; the pipeline fails
// at construction, never per row.
func New(kind string, options json.RawMessage) (Rule, error) {
	var r Rule
	switch kind {
	case "normalize_text":
		r = &NormalizeText{}
	case "clean_numeric":
		r = &CleanNumeric{}
	case "parse_date":
		r = &ParseDate{}
	case "normalize_reference":
		r = &NormalizeReference{}
	case "enforce_schema":
		r = &EnforceSchema{}
	case "derive_features":
		r = &DeriveFeatures{}
	case "filter_rows":
		r = &FilterRows{}
	default:
		return nil, fmt.Errorf("rule: unknown kind %q", kind)
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, r); err != nil {
			return nil, fmt.Errorf("rule: decode %s options: %w", kind, err)
		}
	}
	if v, ok := r.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("rule: %s: %w", kind, err)
		}
	}
	return r, nil
}

// Known reports whether kind names a rule New can build.
func Known(kind string) bool {
	_, err := New(kind, nil)
	return err == nil
}
