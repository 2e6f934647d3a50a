// Package records defines the shared row representation passed between the
// extract, transform, and load stages.
package records

// Record is one row of field -> value data. Values are untyped until a rule
// or schema coercion gives them a concrete type.
type Record map[string]any

// Clone returns a shallow copy of the record. Field values are shared; rules
// replace values rather than mutating them in place, so a shallow copy is
// enough to isolate two records from each other.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
