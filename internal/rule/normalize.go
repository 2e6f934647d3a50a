package rule

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cleanse/internal/lineage"
	"cleanse/pkg/records"
)

// NormalizeText trims edge whitespace, collapses internal whitespace runs,
// strips control characters, NFC-normalizes, and applies an optional per-field
// casing policy. Normalization is idempotent: a second pass over an already
// normalized value is a no-op and emits no change.
type NormalizeText struct {
	// Fields limits normalization to the listed fields. Empty means every
	// string-valued field in the record.
	Fields []string `json:"fields,omitempty"`

	// Case maps field name -> "upper" | "lower" | "title".
	Case map[string]string `json:"case,omitempty"`
}

// stripControl removes Unicode control characters and NFC-normalizes the
// remainder, the same sanitization applied to raw header bytes on extract.
var stripControl = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cc)),
)

func (*NormalizeText) Name() string { return "normalize_text" }

func (n *NormalizeText) Apply(rec records.Record, _ *Env) ([]Change, []Finding, error) {
	var changes []Change
	var findings []Finding

	fields := n.Fields
	if len(fields) == 0 {
		fields = stringFields(rec)
	}

	for _, f := range fields {
		v, ok := rec[f]
		if !ok || v == nil {
			continue
		}
		s, isStr := v.(string)
		if !isStr {
			if !textCoercible(v) {
				findings = append(findings, Finding{
					Field:       f,
					Description: "non_text_value",
					Severity:    lineage.Error,
				})
			}
			continue
		}

		out := normalizeString(s)
		if policy := n.Case[f]; policy != "" && out != "" {
			out = applyCase(out, policy)
		}
		if out != s {
			rec[f] = out
			changes = append(changes, Change{Field: f, Old: s, New: out})
		}
	}
	return changes, findings, nil
}

func normalizeString(s string) string {
	cleaned, _, err := transform.String(stripControl, s)
	if err != nil {
		// Remove is total over valid UTF-8; keep the input on the off chance.
		cleaned = s
	}
	// Collapse whitespace runs and trim edges in one pass.
	return strings.Join(strings.Fields(cleaned), " ")
}

func applyCase(s, policy string) string {
	switch policy {
	case "upper":
		return cases.Upper(language.Und).String(s)
	case "lower":
		return cases.Lower(language.Und).String(s)
	case "title":
		return cases.Title(language.Und).String(s)
	default:
		return s
	}
}

// stringFields returns the record's string-valued field names in a stable
// order so repeated runs visit fields identically.
func stringFields(rec records.Record) []string {
	out := make([]string, 0, len(rec))
	for k, v := range rec {
		if _, ok := v.(string); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// textCoercible reports whether a non-string value has an obvious text form.
// Scalars do; composites do not.
func textCoercible(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}
