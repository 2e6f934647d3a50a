// Package refdata provides the read-only reference catalog used by the
// reference normalization rule: per-field lookup tables mapping a normalized
// raw value onto its canonical form (e.g. "ca" -> "California").
package refdata

import "strings"

// Catalog maps (field, normalized raw value) to a canonical value. It is
// immutable after construction; rules only read from it.
type Catalog struct {
	tables map[string]map[string]string
}

// New builds a catalog from per-field tables. Input keys are normalized with
// Key so that lookups are insensitive to case and surrounding whitespace.
// The input maps are copied; later mutation of the argument does not affect
// the catalog.
func New(tables map[string]map[string]string) *Catalog {
	c := &Catalog{tables: make(map[string]map[string]string, len(tables))}
	for field, m := range tables {
		t := make(map[string]string, len(m))
		for raw, canonical := range m {
			t[Key(raw)] = canonical
		}
		c.tables[field] = t
	}
	return c
}

// Lookup returns the canonical value for a raw value of the given field.
func (c *Catalog) Lookup(field, raw string) (string, bool) {
	if c == nil {
		return "", false
	}
	t, ok := c.tables[field]
	if !ok {
		return "", false
	}
	v, ok := t[Key(raw)]
	return v, ok
}

// HasField reports whether the catalog carries a table for the field.
func (c *Catalog) HasField(field string) bool {
	if c == nil {
		return false
	}
	_, ok := c.tables[field]
	return ok
}

// Key normalizes a raw value into its lookup form: trimmed, lowercased, with
// internal whitespace runs collapsed to single spaces.
func Key(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
