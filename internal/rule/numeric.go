package rule

import (
	"strconv"
	"strings"

	"cleanse/internal/lineage"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

// defaultCurrencySymbols are stripped when no symbols are configured.
var defaultCurrencySymbols = []string{"$", "€", "£", "Kč"}

// CleanNumeric strips currency symbols, thousands separators, and edge
// whitespace from the configured fields and parses the remainder as a
// float64.
//
// A parse failure leaves the field at its pre-rule value and records an
// "invalid_numeric_value" anomaly: error severity normally, fatal when the
// contract declares the field required and numeric.
type CleanNumeric struct {
	Fields          []string `json:"fields"`
	CurrencySymbols []string `json:"currency_symbols,omitempty"`
}

func (*CleanNumeric) Name() string { return "clean_numeric" }

func (c *CleanNumeric) Apply(rec records.Record, env *Env) ([]Change, []Finding, error) {
	symbols := c.CurrencySymbols
	if len(symbols) == 0 {
		symbols = defaultCurrencySymbols
	}

	var changes []Change
	var findings []Finding

	for _, f := range c.Fields {
		v, ok := rec[f]
		if !ok || v == nil {
			continue
		}
		switch v.(type) {
		case float64:
			continue
		case int, int32, int64, float32:
			// Already numeric; leave representation to schema enforcement.
			continue
		}

		s, isStr := v.(string)
		if !isStr {
			findings = append(findings, c.failure(f, env))
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}

		parsed, ok := parseNumeric(s, symbols)
		if !ok {
			findings = append(findings, c.failure(f, env))
			continue
		}
		rec[f] = parsed
		changes = append(changes, Change{Field: f, Old: s, New: parsed})
	}
	return changes, findings, nil
}

// failure builds the invalid-value finding, escalating to fatal for
// schema-required numeric fields.
func (c *CleanNumeric) failure(field string, env *Env) Finding {
	sev := lineage.Error
	if env != nil {
		if decl, ok := env.Contract.Field(field); ok && decl.Required && isNumericKind(decl.Type) {
			sev = lineage.Fatal
		}
	}
	return Finding{Field: field, Description: "invalid_numeric_value", Severity: sev}
}

func parseNumeric(s string, symbols []string) (float64, bool) {
	for _, sym := range symbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isNumericKind(t string) bool {
	switch schema.NormalizeKind(t) {
	case "int", "real":
		return true
	}
	return false
}
