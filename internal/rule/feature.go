package rule

import (
	"time"

	"cleanse/internal/lineage"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

// DeriveFeatures adds new fields computed from already-normalized fields of
// the same record: a sales total (quantity * unit_price) and calendar parts
// of the canonical sale date. Derivation never fails; a missing or off-type
// input simply skips that feature and records a warning.
type DeriveFeatures struct {
	// ComputeTotalSales derives total_sales = quantity * unit_price.
	ComputeTotalSales bool `json:"compute_total_sales,omitempty"`

	// DateField names the ISO-8601 date field the parts derive from.
	DateField string `json:"date_field,omitempty"`

	// DateParts selects which parts to derive: "sale_year", "sale_month",
	// "sale_quarter", "weekday".
	DateParts []string `json:"date_parts,omitempty"`
}

// Derived field names.
const (
	fieldTotalSales  = "total_sales"
	fieldSaleYear    = "sale_year"
	fieldSaleMonth   = "sale_month"
	fieldSaleQuarter = "sale_quarter"
	fieldWeekday     = "weekday"
)

func (*DeriveFeatures) Name() string { return "derive_features" }

func (d *DeriveFeatures) Apply(rec records.Record, _ *Env) ([]Change, []Finding, error) {
	var changes []Change
	var findings []Finding

	if d.ComputeTotalSales {
		if _, exists := rec[fieldTotalSales]; !exists {
			qty, qok := numericValue(rec["quantity"])
			price, pok := numericValue(rec["unit_price"])
			if qok && pok {
				total := qty * price
				rec[fieldTotalSales] = total
				changes = append(changes, Change{Field: fieldTotalSales, Old: nil, New: total})
			} else {
				findings = append(findings, Finding{
					Field:       fieldTotalSales,
					Description: "missing_feature_input",
					Severity:    lineage.Warning,
				})
			}
		}
	}

	if d.DateField != "" && len(d.DateParts) > 0 {
		t, ok := dateValue(rec[d.DateField])
		if !ok {
			findings = append(findings, Finding{
				Field:       d.DateField,
				Description: "missing_feature_input",
				Severity:    lineage.Warning,
			})
			return changes, findings, nil
		}
		for _, part := range d.DateParts {
			name, value := derivePart(part, t)
			if name == "" {
				continue
			}
			if old, exists := rec[name]; exists && lineage.Equal(old, value) {
				continue
			}
			old := rec[name]
			rec[name] = value
			changes = append(changes, Change{Field: name, Old: old, New: value})
		}
	}

	return changes, findings, nil
}

func derivePart(part string, t time.Time) (string, any) {
	switch part {
	case fieldSaleYear:
		return fieldSaleYear, int64(t.Year())
	case fieldSaleMonth:
		return fieldSaleMonth, int64(t.Month())
	case fieldSaleQuarter:
		return fieldSaleQuarter, int64((int(t.Month())-1)/3 + 1)
	case fieldWeekday:
		return fieldWeekday, t.Weekday().String()
	default:
		return "", nil
	}
}

func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func dateValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(schema.ISODate, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
