// Package config defines the canonical, JSON-serializable configuration model
// for the cleaning pipeline. It is intentionally small, explicit, and
// dependency-free so that pipelines can be loaded from disk and passed through
// the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure of pipeline files.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "input":    { "path": "data/sales.csv" },
//	  "rules":    [
//	    { "kind": "normalize_text", "options": { "case": { "store": "title" } } },
//	    { "kind": "enforce_schema" }
//	  ],
//	  "contract": { "name": "sales", "fields": [ ... ] },
//	  "reference": { "region": { "ca": "California" } },
//	  "output":   { "kind": "csv", "dir": "out" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"cleanse/internal/schema"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Input describes where raw rows come from.
	Input Input `json:"input"`

	// Rules lists the ordered cleaning rules. Order is authoritative and is
	// preserved exactly as declared.
	Rules []RuleSpec `json:"rules"`

	// Contract is the per-field type/requiredness schema descriptor.
	Contract schema.Contract `json:"contract"`

	// Reference holds per-field canonical-value lookup tables,
	// field -> raw value -> canonical value.
	Reference map[string]map[string]string `json:"reference,omitempty"`

	// Dedup, when present, enables duplicate-row dropping keyed by Keys
	// (all fields when empty).
	Dedup *DedupSpec `json:"dedup,omitempty"`

	// Output describes where the cleaned dataset and audit trail are written.
	Output Output `json:"output"`

	Runtime RuntimeConfig `json:"runtime"`
	Metrics Metrics       `json:"metrics"`
}

// RuleSpec selects one rule by kind. Options are decoded by the rule
// implementation itself.
type RuleSpec struct {
	Kind    string          `json:"kind"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Input identifies the raw data source.
type Input struct {
	// Path is the local filesystem path to the input CSV file.
	Path string `json:"path"`

	// Delimiter is the CSV field separator; default ",".
	Delimiter string `json:"delimiter,omitempty"`

	// HeaderMap maps original CSV header -> canonical field name.
	HeaderMap map[string]string `json:"header_map,omitempty"`
}

// DedupSpec configures the duplicate-row stage.
type DedupSpec struct {
	Keys []string `json:"keys,omitempty"`
}

// Output selects the sink used to persist the pipeline result.
type Output struct {
	// Kind selects the writer implementation: "csv", "postgres", or "sqlite".
	Kind string `json:"kind"`

	// Dir is the output directory for the "csv" kind.
	Dir string `json:"dir,omitempty"`

	// DSN is the connection string for the "postgres" kind, or the database
	// file path for "sqlite".
	DSN string `json:"dsn,omitempty"`

	// Table is the base table name for database sinks; the lineage, anomaly,
	// and drop tables derive from it.
	Table string `json:"table,omitempty"`
}

// RuntimeConfig controls row-level concurrency.
type RuntimeConfig struct {
	Workers int `json:"workers"`
}

// Metrics configures the optional Pushgateway backend.
type Metrics struct {
	PushgatewayURL string `json:"pushgateway_url,omitempty"`
	Job            string `json:"job,omitempty"`
}

// Load reads and decodes a pipeline file, then validates it.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
