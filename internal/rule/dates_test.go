package rule

import (
	"reflect"
	"testing"

	"cleanse/internal/lineage"
	"cleanse/pkg/records"
)

func TestParseDateApply(t *testing.T) {
	tests := []struct {
		name      string
		layouts   []string
		in        records.Record
		want      records.Record
		wantFinds int
	}{
		{
			name:    "us_layout",
			layouts: []string{"01/02/2006"},
			in:      records.Record{"sale_date": "03/04/2024"},
			want:    records.Record{"sale_date": "2024-03-04"},
		},
		{
			name: "first_matching_layout_wins",
			// 02/03/2024 parses under both; the first layout decides.
			layouts: []string{"01/02/2006", "02/01/2006"},
			in:      records.Record{"sale_date": "02/03/2024"},
			want:    records.Record{"sale_date": "2024-02-03"},
		},
		{
			name:      "no_layout_matches",
			layouts:   []string{"01/02/2006"},
			in:        records.Record{"sale_date": "not a date"},
			want:      records.Record{"sale_date": "not a date"},
			wantFinds: 1,
		},
		{
			name:    "already_iso_no_change",
			layouts: []string{"01/02/2006"},
			in:      records.Record{"sale_date": "2024-03-04"},
			want:    records.Record{"sale_date": "2024-03-04"},
		},
		{
			name:    "blank_skipped",
			layouts: []string{"01/02/2006"},
			in:      records.Record{"sale_date": ""},
			want:    records.Record{"sale_date": ""},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := ParseDate{Fields: []string{"sale_date"}, Layouts: tc.layouts}
			_, finds, err := r.Apply(tc.in, nil)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !reflect.DeepEqual(tc.in, tc.want) {
				t.Errorf("record = %#v, want %#v", tc.in, tc.want)
			}
			if len(finds) != tc.wantFinds {
				t.Fatalf("findings = %v, want %d", finds, tc.wantFinds)
			}
			if tc.wantFinds > 0 {
				if finds[0].Description != "unparseable_date" || finds[0].Severity != lineage.Error {
					t.Errorf("finding = %+v, want unparseable_date error", finds[0])
				}
			}
		})
	}
}
