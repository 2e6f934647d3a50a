package refdata

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ca", "ca"},
		{" CA ", "ca"},
		{"New   York", "new york"},
		{"\tNew York\n", "new york"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := Key(tc.in); got != tc.want {
			t.Errorf("Key(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c := New(map[string]map[string]string{
		"region": {" CA ": "California", "ny": "New York"},
	})

	tests := []struct {
		field, raw string
		want       string
		wantOK     bool
	}{
		{"region", "ca", "California", true},
		{"region", " Ca\t", "California", true},
		{"region", "NY", "New York", true},
		{"region", "zz", "", false},
		{"store", "ca", "", false},
	}
	for _, tc := range tests {
		got, ok := c.Lookup(tc.field, tc.raw)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Lookup(%q, %q) = %q, %v; want %q, %v",
				tc.field, tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}

	if !c.HasField("region") || c.HasField("store") {
		t.Error("HasField misreports table presence")
	}
}

func TestCatalogCopiesInput(t *testing.T) {
	src := map[string]map[string]string{"region": {"ca": "California"}}
	c := New(src)
	src["region"]["ca"] = "Corrupted"
	if got, _ := c.Lookup("region", "ca"); got != "California" {
		t.Errorf("Lookup after source mutation = %q, want California", got)
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if _, ok := c.Lookup("region", "ca"); ok {
		t.Error("nil catalog Lookup: want miss")
	}
	if c.HasField("region") {
		t.Error("nil catalog HasField: want false")
	}
}
