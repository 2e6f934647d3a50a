package rule

import (
	"strings"

	"cleanse/internal/lineage"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

// EnforceSchema verifies the record against the contract after all
// value-shaping rules have run.
//
//   - required field missing (absent, nil, or blank string): fatal.
//   - present but off-type and coercible: coerce, emit lineage, warn.
//   - present and non-coercible: fatal.
//   - enum-constrained field outside its enum: error (kept, audited).
type EnforceSchema struct{}

func (*EnforceSchema) Name() string { return "enforce_schema" }

func (*EnforceSchema) Apply(rec records.Record, env *Env) ([]Change, []Finding, error) {
	if env == nil || len(env.Contract.Fields) == 0 {
		return nil, nil, nil
	}

	var changes []Change
	var findings []Finding

	for _, decl := range env.Contract.Fields {
		v, exists := rec[decl.Name]
		missing := !exists || v == nil || isBlankString(v)

		if missing {
			if decl.Required {
				findings = append(findings, Finding{
					Field:       decl.Name,
					Description: "missing_required_field",
					Severity:    lineage.Fatal,
				})
				// Fatal: the engine stops this row here; later declarations
				// would never be audited anyway.
				return changes, findings, nil
			}
			continue
		}

		coerced, changed, ok := schema.Coerce(decl, v)
		if !ok {
			findings = append(findings, Finding{
				Field:       decl.Name,
				Description: "uncoercible_value",
				Severity:    lineage.Fatal,
			})
			return changes, findings, nil
		}
		if changed {
			rec[decl.Name] = coerced
			changes = append(changes, Change{Field: decl.Name, Old: v, New: coerced})
			findings = append(findings, Finding{
				Field:       decl.Name,
				Description: "coerced_value",
				Severity:    lineage.Warning,
			})
		}

		if len(decl.Enum) > 0 {
			if s, isStr := rec[decl.Name].(string); isStr && !inEnum(s, decl.Enum) {
				findings = append(findings, Finding{
					Field:       decl.Name,
					Description: "value_not_in_enum",
					Severity:    lineage.Error,
				})
			}
		}
	}
	return changes, findings, nil
}

func isBlankString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func inEnum(s string, enum []string) bool {
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}
