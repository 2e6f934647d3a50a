package rule

import (
	"testing"

	"cleanse/internal/lineage"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

func contractEnv() *Env {
	return &Env{Contract: schema.Contract{Fields: []schema.Field{
		{Name: "store", Type: "text", Required: true},
		{Name: "quantity", Type: "int", Required: true},
		{Name: "amount", Type: "real"},
		{Name: "region", Type: "text", Enum: []string{"California", "New York"}},
	}}}
}

func TestEnforceSchemaApply(t *testing.T) {
	r := EnforceSchema{}

	t.Run("valid_record_passes_untouched", func(t *testing.T) {
		rec := records.Record{"store": "Main", "quantity": int64(2), "amount": 9.5, "region": "California"}
		changes, finds, err := r.Apply(rec, contractEnv())
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(changes) != 0 || len(finds) != 0 {
			t.Errorf("changes=%v findings=%v, want none", changes, finds)
		}
	})

	t.Run("missing_required_is_fatal", func(t *testing.T) {
		rec := records.Record{"store": "  ", "quantity": int64(2)}
		_, finds, err := r.Apply(rec, contractEnv())
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(finds) != 1 || finds[0].Severity != lineage.Fatal || finds[0].Description != "missing_required_field" {
			t.Fatalf("findings = %v, want one fatal missing_required_field", finds)
		}
		if finds[0].Field != "store" {
			t.Errorf("field = %q, want store", finds[0].Field)
		}
	})

	t.Run("coercible_value_coerced_with_warning", func(t *testing.T) {
		rec := records.Record{"store": "Main", "quantity": "3"}
		changes, finds, err := r.Apply(rec, contractEnv())
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if rec["quantity"] != int64(3) {
			t.Errorf("quantity = %v (%T), want int64(3)", rec["quantity"], rec["quantity"])
		}
		if len(changes) != 1 || changes[0].Field != "quantity" {
			t.Errorf("changes = %v, want one for quantity", changes)
		}
		if len(finds) != 1 || finds[0].Severity != lineage.Warning || finds[0].Description != "coerced_value" {
			t.Errorf("findings = %v, want one coerced_value warning", finds)
		}
	})

	t.Run("uncoercible_value_is_fatal", func(t *testing.T) {
		rec := records.Record{"store": "Main", "quantity": "many"}
		_, finds, err := r.Apply(rec, contractEnv())
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(finds) != 1 || finds[0].Severity != lineage.Fatal || finds[0].Description != "uncoercible_value" {
			t.Fatalf("findings = %v, want one fatal uncoercible_value", finds)
		}
	})

	t.Run("enum_violation_is_error", func(t *testing.T) {
		rec := records.Record{"store": "Main", "quantity": int64(1), "region": "Mars"}
		_, finds, err := r.Apply(rec, contractEnv())
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(finds) != 1 || finds[0].Severity != lineage.Error || finds[0].Description != "value_not_in_enum" {
			t.Fatalf("findings = %v, want one value_not_in_enum error", finds)
		}
	})

	t.Run("optional_missing_field_ok", func(t *testing.T) {
		rec := records.Record{"store": "Main", "quantity": int64(1)}
		_, finds, err := r.Apply(rec, contractEnv())
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(finds) != 0 {
			t.Errorf("findings = %v, want none", finds)
		}
	})
}
