// Package profile computes lightweight per-field statistics of a dataset,
// taken before and after cleaning so operators can compare the two. It is
// pure: callers decide where the report goes.
package profile

import (
	"fmt"
	"strconv"
	"strings"

	"cleanse/internal/engine"
)

// FieldStats summarizes one field across the dataset.
type FieldStats struct {
	Field    string   `json:"field"`
	NonNull  int      `json:"non_null"`
	Nulls    int      `json:"nulls"`
	Distinct int      `json:"distinct"`
	Min      *float64 `json:"min,omitempty"`  // numeric values only
	Max      *float64 `json:"max,omitempty"`  // numeric values only
	Mean     *float64 `json:"mean,omitempty"` // numeric values only
}

// Report is the profile of one dataset snapshot.
type Report struct {
	Rows   int          `json:"rows"`
	Fields []FieldStats `json:"fields"`
}

// Dataset profiles rows over the given fields, in field order.
func Dataset(rows []engine.Row, fields []string) Report {
	rep := Report{Rows: len(rows), Fields: make([]FieldStats, 0, len(fields))}
	for _, f := range fields {
		rep.Fields = append(rep.Fields, fieldStats(rows, f))
	}
	return rep
}

func fieldStats(rows []engine.Row, field string) FieldStats {
	st := FieldStats{Field: field}
	distinct := make(map[string]struct{})

	var sum float64
	var numeric int
	var min, max float64

	for _, r := range rows {
		v, ok := r.Fields[field]
		if !ok || v == nil || isBlank(v) {
			st.Nulls++
			continue
		}
		st.NonNull++
		key := render(v)
		distinct[key] = struct{}{}

		if f, ok := asFloat(v); ok {
			if numeric == 0 || f < min {
				min = f
			}
			if numeric == 0 || f > max {
				max = f
			}
			sum += f
			numeric++
		}
	}
	st.Distinct = len(distinct)
	if numeric > 0 {
		mean := sum / float64(numeric)
		st.Min, st.Max, st.Mean = &min, &max, &mean
	}
	return st
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
