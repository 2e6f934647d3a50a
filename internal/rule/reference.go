package rule

import (
	"cleanse/internal/lineage"
	"cleanse/pkg/records"
)

// NormalizeReference replaces a raw region/category style value with its
// canonical form from the reference catalog. Lookup keys are normalized
// (trim, lower, collapse whitespace) before matching.
//
// On a miss the configured fallback applies: with a default, the value is
// substituted and a warning recorded; without one the value is kept and the
// miss escalates to an error anomaly.
type NormalizeReference struct {
	Field   string  `json:"field"`
	Default *string `json:"default,omitempty"`
}

func (*NormalizeReference) Name() string { return "normalize_reference" }

func (n *NormalizeReference) Apply(rec records.Record, env *Env) ([]Change, []Finding, error) {
	v, ok := rec[n.Field]
	if !ok || v == nil {
		return nil, nil, nil
	}
	s, isStr := v.(string)
	if !isStr || s == "" {
		return nil, nil, nil
	}

	if env != nil && env.Catalog != nil {
		if canonical, hit := env.Catalog.Lookup(n.Field, s); hit {
			if canonical == s {
				return nil, nil, nil
			}
			rec[n.Field] = canonical
			return []Change{{Field: n.Field, Old: s, New: canonical}}, nil, nil
		}
	}

	if n.Default != nil {
		finding := Finding{Field: n.Field, Description: "unmapped_reference_value", Severity: lineage.Warning}
		if *n.Default == s {
			return nil, []Finding{finding}, nil
		}
		rec[n.Field] = *n.Default
		return []Change{{Field: n.Field, Old: s, New: *n.Default}},
			[]Finding{finding}, nil
	}

	return nil, []Finding{{Field: n.Field, Description: "unmapped_reference_value", Severity: lineage.Error}}, nil
}
