// Package schema defines the per-field contract the cleaned dataset must
// satisfy, plus the coercion helpers the enforcement rule uses.
package schema

import "strings"

// Field declares the type and requiredness contract for one field.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // "int" | "real" | "text" | "bool" | "date"
	Required bool     `json:"required,omitempty"`
	Layout   string   `json:"layout,omitempty"` // date layout for coercion
	Enum     []string `json:"enum,omitempty"`
}

// Contract is the full schema descriptor for a dataset.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field returns the declaration for name, if any.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in contract order.
func (c Contract) FieldNames() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// NormalizeKind maps database-ish type names onto the small set of kinds the
// coercion and validation code switches on.
//
// Examples:
//
//	"bigint", "int8", "integer" -> "int"
//	"float", "double", "numeric" -> "real"
//	"boolean"                    -> "bool"
//	"timestamp"                  -> "date"
//	"string"                     -> "text"
func NormalizeKind(t string) string {
	switch strings.ToLower(t) {
	case "bigint", "int8", "integer", "int4", "int2", "int":
		return "int"
	case "real", "float", "float4", "float8", "double", "numeric", "decimal":
		return "real"
	case "boolean", "bool":
		return "bool"
	case "date", "timestamp", "timestamptz", "datetime":
		return "date"
	case "text", "string", "varchar":
		return "text"
	default:
		return strings.ToLower(t)
	}
}
