package config

import (
	"fmt"

	"cleanse/internal/rule"
)

// Validate checks the pipeline for configuration errors that should fail the
// run before any row is processed: missing input, unknown rule kinds,
// malformed rule options, and unsupported output kinds.
func (p Pipeline) Validate() error {
	if p.Input.Path == "" {
		return fmt.Errorf("config: input.path is required")
	}
	if len(p.Rules) == 0 {
		return fmt.Errorf("config: at least one rule is required")
	}
	seen := make(map[string]struct{}, len(p.Rules))
	for i, rs := range p.Rules {
		if rs.Kind == "" {
			return fmt.Errorf("config: rules[%d]: kind is required", i)
		}
		if _, dup := seen[rs.Kind]; dup {
			return fmt.Errorf("config: rules[%d]: duplicate rule kind %q", i, rs.Kind)
		}
		seen[rs.Kind] = struct{}{}
		if _, err := rule.New(rs.Kind, rs.Options); err != nil {
			return fmt.Errorf("config: rules[%d]: %w", i, err)
		}
	}
	switch p.Output.Kind {
	case "", "csv":
		// "" defaults to csv in the writer.
	case "postgres", "sqlite":
		if p.Output.DSN == "" {
			return fmt.Errorf("config: output.dsn is required for %s", p.Output.Kind)
		}
		if p.Output.Table == "" {
			return fmt.Errorf("config: output.table is required for %s", p.Output.Kind)
		}
	default:
		return fmt.Errorf("config: unsupported output.kind %q", p.Output.Kind)
	}
	if p.Runtime.Workers < 0 {
		return fmt.Errorf("config: runtime.workers must not be negative")
	}
	return nil
}

// BuildRules resolves the configured rule list into concrete rules, in the
// declared order. Validate has already established that every spec resolves.
func (p Pipeline) BuildRules() ([]rule.Rule, error) {
	out := make([]rule.Rule, 0, len(p.Rules))
	for i, rs := range p.Rules {
		r, err := rule.New(rs.Kind, rs.Options)
		if err != nil {
			return nil, fmt.Errorf("config: rules[%d]: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
