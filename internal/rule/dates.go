package rule

import (
	"strings"
	"time"

	"cleanse/internal/lineage"
	"cleanse/internal/schema"
	"cleanse/pkg/records"
)

// ParseDate tries the configured layouts against each date field in
// declaration order; the first layout that parses wins. Matching values are
// canonicalized to an ISO-8601 date string. A value no layout matches keeps
// its raw form and records an "unparseable_date" error anomaly.
type ParseDate struct {
	Fields  []string `json:"fields"`
	Layouts []string `json:"layouts"` // Go reference layouts, e.g. "01/02/2006"
}

func (*ParseDate) Name() string { return "parse_date" }

func (p *ParseDate) Apply(rec records.Record, _ *Env) ([]Change, []Finding, error) {
	var changes []Change
	var findings []Finding

	for _, f := range p.Fields {
		v, ok := rec[f]
		if !ok || v == nil {
			continue
		}

		if t, isTime := v.(time.Time); isTime {
			iso := t.Format(schema.ISODate)
			rec[f] = iso
			changes = append(changes, Change{Field: f, Old: t, New: iso})
			continue
		}

		s, isStr := v.(string)
		if !isStr {
			findings = append(findings, Finding{Field: f, Description: "unparseable_date", Severity: lineage.Error})
			continue
		}
		raw := strings.TrimSpace(s)
		if raw == "" {
			continue
		}

		iso, ok := p.parse(raw)
		if !ok {
			findings = append(findings, Finding{Field: f, Description: "unparseable_date", Severity: lineage.Error})
			continue
		}
		if iso != s {
			rec[f] = iso
			changes = append(changes, Change{Field: f, Old: s, New: iso})
		}
	}
	return changes, findings, nil
}

// parse tries layouts strictly in declaration order. Already-canonical values
// parse via the ISO layout appended as an implicit last resort, which also
// makes the rule idempotent.
func (p *ParseDate) parse(s string) (string, bool) {
	for _, layout := range p.Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(schema.ISODate), true
		}
	}
	if t, err := time.Parse(schema.ISODate, s); err == nil {
		return t.Format(schema.ISODate), true
	}
	return "", false
}
