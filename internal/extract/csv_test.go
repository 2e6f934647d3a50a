package extract

import (
	"reflect"
	"strings"
	"testing"

	"cleanse/pkg/records"
)

func TestCSV(t *testing.T) {
	t.Run("rows_and_header", func(t *testing.T) {
		in := "store,amount,date\nMain,5,2024-03-04\nBranch,6,2024-03-05\n"
		rows, header, err := CSV(strings.NewReader(in), Options{})
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		if !reflect.DeepEqual(header, []string{"store", "amount", "date"}) {
			t.Errorf("header = %v", header)
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(rows))
		}
		if rows[0].ID != 1 || rows[1].ID != 2 {
			t.Errorf("ids = %d,%d want 1,2", rows[0].ID, rows[1].ID)
		}
		want := records.Record{"store": "Main", "amount": "5", "date": "2024-03-04"}
		if !reflect.DeepEqual(rows[0].Fields, want) {
			t.Errorf("rows[0] = %#v, want %#v", rows[0].Fields, want)
		}
	})

	t.Run("bom_stripped_from_first_header", func(t *testing.T) {
		in := "\uFEFFstore,amount\nMain,5\n"
		_, header, err := CSV(strings.NewReader(in), Options{})
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		if header[0] != "store" {
			t.Errorf("header[0] = %q, want store", header[0])
		}
	})

	t.Run("header_map_applied", func(t *testing.T) {
		in := "Store Name,Amount ($)\nMain,5\n"
		rows, header, err := CSV(strings.NewReader(in), Options{
			HeaderMap: map[string]string{"Store Name": "store", "Amount ($)": "amount"},
		})
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		if !reflect.DeepEqual(header, []string{"store", "amount"}) {
			t.Errorf("header = %v", header)
		}
		if rows[0].Fields["store"] != "Main" {
			t.Errorf("rows[0] = %#v", rows[0].Fields)
		}
	})

	t.Run("short_line_cells_are_nil", func(t *testing.T) {
		in := "store,amount,date\nMain,5\n"
		rows, _, err := CSV(strings.NewReader(in), Options{})
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		if v, present := rows[0].Fields["date"]; !present || v != nil {
			t.Errorf("date = %v (present=%v), want present nil", v, present)
		}
	})

	t.Run("custom_delimiter", func(t *testing.T) {
		in := "store;amount\nMain;5\n"
		rows, _, err := CSV(strings.NewReader(in), Options{Comma: ';'})
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		if rows[0].Fields["amount"] != "5" {
			t.Errorf("rows[0] = %#v", rows[0].Fields)
		}
	})

	t.Run("blank_header_column_skipped", func(t *testing.T) {
		in := "store,,amount\nMain,junk,5\n"
		rows, _, err := CSV(strings.NewReader(in), Options{})
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		want := records.Record{"store": "Main", "amount": "5"}
		if !reflect.DeepEqual(rows[0].Fields, want) {
			t.Errorf("rows[0] = %#v, want %#v", rows[0].Fields, want)
		}
	})

	t.Run("empty_input", func(t *testing.T) {
		if _, _, err := CSV(strings.NewReader(""), Options{}); err == nil {
			t.Error("CSV(empty): want header error")
		}
	})
}
