package rule

import (
	"reflect"
	"testing"

	"cleanse/internal/lineage"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

func TestCleanNumericApply(t *testing.T) {
	env := &Env{Contract: schema.Contract{Fields: []schema.Field{
		{Name: "amount", Type: "real", Required: true},
		{Name: "note", Type: "text"},
	}}}

	tests := []struct {
		name     string
		in       records.Record
		want     records.Record
		wantSev  []lineage.Severity
		wantDesc string
	}{
		{
			name: "currency_and_thousands_stripped",
			in:   records.Record{"amount": "$1,200.50"},
			want: records.Record{"amount": 1200.50},
		},
		{
			name: "euro_symbol",
			in:   records.Record{"amount": "€99.95"},
			want: records.Record{"amount": 99.95},
		},
		{
			name: "surrounding_whitespace",
			in:   records.Record{"amount": "  42 "},
			want: records.Record{"amount": 42.0},
		},
		{
			name: "negative_value",
			in:   records.Record{"amount": "-3.5"},
			want: records.Record{"amount": -3.5},
		},
		{
			name:     "unparseable_escalates_to_fatal_for_required_numeric",
			in:       records.Record{"amount": "abc"},
			want:     records.Record{"amount": "abc"}, // pre-rule value kept
			wantSev:  []lineage.Severity{lineage.Fatal},
			wantDesc: "invalid_numeric_value",
		},
		{
			name: "already_float_untouched",
			in:   records.Record{"amount": 7.0},
			want: records.Record{"amount": 7.0},
		},
		{
			name: "nil_and_blank_skipped",
			in:   records.Record{"amount": "   "},
			want: records.Record{"amount": "   "},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := CleanNumeric{Fields: []string{"amount"}}
			_, finds, err := r.Apply(tc.in, env)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !reflect.DeepEqual(tc.in, tc.want) {
				t.Errorf("record = %#v, want %#v", tc.in, tc.want)
			}
			if len(finds) != len(tc.wantSev) {
				t.Fatalf("findings = %v, want %d", finds, len(tc.wantSev))
			}
			for i, f := range finds {
				if f.Severity != tc.wantSev[i] {
					t.Errorf("finding %d severity = %v, want %v", i, f.Severity, tc.wantSev[i])
				}
				if tc.wantDesc != "" && f.Description != tc.wantDesc {
					t.Errorf("finding %d description = %q, want %q", i, f.Description, tc.wantDesc)
				}
			}
		})
	}
}

// TestCleanNumericSeverityWithoutContract verifies that a parse failure on a
// field the contract does not require stays an error, not a fatal.
func TestCleanNumericSeverityWithoutContract(t *testing.T) {
	r := CleanNumeric{Fields: []string{"amount"}}
	rec := records.Record{"amount": "abc"}

	_, finds, err := r.Apply(rec, &Env{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(finds) != 1 || finds[0].Severity != lineage.Error {
		t.Fatalf("findings = %v, want one error-severity finding", finds)
	}
}
