package rule

import (
	"encoding/json"
	"testing"
)

// TestNewResolvesKinds covers fail-fast construction: every supported kind
// resolves, unknown kinds and malformed options do not.
func TestNewResolvesKinds(t *testing.T) {
	kinds := []string{
		"normalize_text",
		"clean_numeric",
		"parse_date",
		"normalize_reference",
		"enforce_schema",
		"derive_features",
		"filter_rows",
	}
	for _, k := range kinds {
		r, err := New(k, nil)
		if err != nil {
			t.Errorf("New(%q): %v", k, err)
			continue
		}
		if r.Name() != k {
			t.Errorf("New(%q).Name() = %q", k, r.Name())
		}
	}

	if _, err := New("transmogrify", nil); err == nil {
		t.Error("New(unknown kind): want error")
	}
	if Known("transmogrify") {
		t.Error("Known(unknown kind) = true")
	}
}

func TestNewDecodesOptions(t *testing.T) {
	raw := json.RawMessage(`{"fields":["amount"],"currency_symbols":["$"]}`)
	r, err := New("clean_numeric", raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cn := r.(*CleanNumeric)
	if len(cn.Fields) != 1 || cn.Fields[0] != "amount" {
		t.Errorf("Fields = %v", cn.Fields)
	}

	if _, err := New("clean_numeric", json.RawMessage(`{"fields": 5}`)); err == nil {
		t.Error("malformed options: want error")
	}
}

// TestNewValidatesFilterOps requires a bad predicate operator to fail at
// construction, never at row time.
func TestNewValidatesFilterOps(t *testing.T) {
	raw := json.RawMessage(`{"predicates":[{"name":"p","field":"f","op":"contains","value":0}]}`)
	if _, err := New("filter_rows", raw); err == nil {
		t.Error("bad op: want construction error")
	}

	ok := json.RawMessage(`{"predicates":[{"name":"p","field":"f","op":"gt","value":0}]}`)
	if _, err := New("filter_rows", ok); err != nil {
		t.Errorf("valid predicate: %v", err)
	}
}
