package rule

import (
	"testing"

	"cleanse/internal/lineage"
	"cleanse/pkg/records"
)

func TestFilterRowsApply(t *testing.T) {
	r := FilterRows{Predicates: []Predicate{
		{Name: "quantity_positive", Field: "quantity", Op: "gt", Value: 0},
		{Name: "total_sales_non_negative", Field: "total_sales", Op: "ge", Value: 0},
	}}

	tests := []struct {
		name     string
		in       records.Record
		wantDrop bool
		wantName string
	}{
		{
			name: "all_predicates_hold",
			in:   records.Record{"quantity": 2.0, "total_sales": 10.0},
		},
		{
			name:     "first_violation_reported",
			in:       records.Record{"quantity": 0.0, "total_sales": -1.0},
			wantDrop: true,
			wantName: "quantity_positive",
		},
		{
			name:     "negative_total",
			in:       records.Record{"quantity": 1.0, "total_sales": -0.5},
			wantDrop: true,
			wantName: "total_sales_non_negative",
		},
		{
			name:     "missing_field_counts_as_violation",
			in:       records.Record{"total_sales": 5.0},
			wantDrop: true,
			wantName: "quantity_positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, finds, err := r.Apply(tc.in, nil)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !tc.wantDrop {
				if len(finds) != 0 {
					t.Fatalf("findings = %v, want none", finds)
				}
				return
			}
			if len(finds) != 1 || finds[0].Severity != lineage.Fatal {
				t.Fatalf("findings = %v, want one fatal", finds)
			}
			if finds[0].Description != tc.wantName {
				t.Errorf("description = %q, want %q", finds[0].Description, tc.wantName)
			}
		})
	}
}
