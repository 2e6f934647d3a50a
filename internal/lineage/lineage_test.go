package lineage

import (
	"math"
	"testing"
	"time"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both_nil", nil, nil, true},
		{"nil_vs_value", nil, "x", false},
		{"same_string", "ca", "ca", true},
		{"different_string", "ca", "CA", false},
		{"int_vs_float_same_value", int64(3), 3.0, true},
		{"int_vs_float_different", int64(3), 3.5, false},
		{"both_nan", math.NaN(), math.NaN(), true},
		{"nan_vs_number", math.NaN(), 1.0, false},
		{"number_vs_string", 3.0, "3", false},
		{"bools", true, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestRecorderRejectsSpuriousEntries(t *testing.T) {
	r := &Recorder{}
	err := r.Append(Entry{RowID: 1, Field: "amount", OldValue: 5.0, NewValue: int64(5), Rule: "x", Seq: 1})
	if err == nil {
		t.Fatal("Append with old == new: want error")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after rejected append, want 0", r.Len())
	}
}

func TestRecorderFinalizeOrder(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	r := &Recorder{}
	// Appended deliberately out of (row_id, seq) order, as concurrent workers
	// would.
	in := []Entry{
		{RowID: 2, Field: "b", OldValue: "1", NewValue: "2", Rule: "r", Seq: 2, At: at},
		{RowID: 1, Field: "a", OldValue: "1", NewValue: "2", Rule: "r", Seq: 1, At: at},
		{RowID: 2, Field: "a", OldValue: "1", NewValue: "2", Rule: "r", Seq: 1, At: at},
	}
	if err := r.Append(in...); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got := r.Finalize()
	wantOrder := []struct {
		row int64
		seq int
	}{{1, 1}, {2, 1}, {2, 2}}
	for i, w := range wantOrder {
		if got[i].RowID != w.row || got[i].Seq != w.seq {
			t.Errorf("entries[%d] = row %d seq %d, want row %d seq %d",
				i, got[i].RowID, got[i].Seq, w.row, w.seq)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	anoms := []Anomaly{
		{Severity: Warning},
		{Severity: Warning},
		{Severity: Error},
		{Severity: Fatal},
	}
	got := CountBySeverity(anoms)
	if got["warning"] != 2 || got["error"] != 1 || got["fatal"] != 1 {
		t.Errorf("counts = %v", got)
	}
}

func TestFormatValue(t *testing.T) {
	at := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{1200.5, "1200.5"},
		{int64(42), "42"},
		{true, "true"},
		{at, "2024-03-04T05:06:07Z"},
	}
	for _, tc := range tests {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
