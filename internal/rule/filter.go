package rule

import (
	"fmt"

	"cleanse/internal/lineage"
	"cleanse/pkg/records"
)

// FilterRows evaluates configured business predicates over the fully
// normalized record. The first predicate that fails produces a fatal anomaly
// named after the predicate, and the engine drops the row.
type FilterRows struct {
	Predicates []Predicate `json:"predicates"`
}

// Predicate is one numeric business condition, e.g.
// {"name":"quantity_positive","field":"quantity","op":"gt","value":0}.
type Predicate struct {
	Name  string  `json:"name"`
	Field string  `json:"field"`
	Op    string  `json:"op"` // gt | ge | lt | le | eq | ne
	Value float64 `json:"value"`
}

func (*FilterRows) Name() string { return "filter_rows" }

// validate is called by New so a bad operator fails at pipeline construction,
// not per row.
func (r *FilterRows) validate() error {
	for _, p := range r.Predicates {
		switch p.Op {
		case "gt", "ge", "lt", "le", "eq", "ne":
		default:
			return fmt.Errorf("unknown op %q in predicate %q", p.Op, p.Name)
		}
		if p.Name == "" || p.Field == "" {
			return fmt.Errorf("predicate needs both name and field")
		}
	}
	return nil
}

func (r *FilterRows) Apply(rec records.Record, _ *Env) ([]Change, []Finding, error) {
	for _, p := range r.Predicates {
		ok, err := p.holds(rec)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, []Finding{{
				Field:       p.Field,
				Description: p.Name,
				Severity:    lineage.Fatal,
			}}, nil
		}
	}
	return nil, nil, nil
}

// holds evaluates the predicate. A missing or non-numeric field cannot
// satisfy a numeric condition, so it counts as a violation rather than a
// fault.
func (p Predicate) holds(rec records.Record) (bool, error) {
	v, exists := rec[p.Field]
	if !exists || v == nil {
		return false, nil
	}
	f, ok := numericValue(v)
	if !ok {
		return false, nil
	}
	switch p.Op {
	case "gt":
		return f > p.Value, nil
	case "ge":
		return f >= p.Value, nil
	case "lt":
		return f < p.Value, nil
	case "le":
		return f <= p.Value, nil
	case "eq":
		return f == p.Value, nil
	case "ne":
		return f != p.Value, nil
	default:
		return false, fmt.Errorf("filter_rows: unknown op %q in predicate %q", p.Op, p.Name)
	}
}
