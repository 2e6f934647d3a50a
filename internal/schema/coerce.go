package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISODate is the canonical date form values are coerced to.
const ISODate = "2006-01-02"

// Truthy/falsy string forms accepted when coercing to bool.
var (
	truthy = map[string]struct{}{"1": {}, "t": {}, "true": {}, "yes": {}, "y": {}}
	falsy  = map[string]struct{}{"0": {}, "f": {}, "false": {}, "no": {}, "n": {}}
)

// Coerce converts v to the canonical representation of the field's kind:
// int64 for "int", float64 for "real", bool for "bool", an ISO-8601 string
// for "date", and string for "text". It returns the coerced value, whether
// the value changed, and whether the conversion was possible at all.
//
// A nil input is returned unchanged and reported as ok: presence is the
// enforcement rule's concern, not coercion's.
func Coerce(f Field, v any) (out any, changed, ok bool) {
	if v == nil {
		return nil, false, true
	}
	switch NormalizeKind(f.Type) {
	case "int":
		return coerceInt(v)
	case "real":
		return coerceReal(v)
	case "bool":
		return coerceBool(v)
	case "date":
		return coerceDate(f, v)
	case "text":
		if s, isStr := v.(string); isStr {
			return s, false, true
		}
		return asText(v), true, true
	default:
		return v, false, true
	}
}

func coerceInt(v any) (any, bool, bool) {
	switch t := v.(type) {
	case int64:
		return t, false, true
	case int:
		return int64(t), true, true
	case int32:
		return int64(t), true, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true, true
		}
		return v, false, false
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, true, true
		}
		return v, false, false
	default:
		return v, false, false
	}
}

func coerceReal(v any) (any, bool, bool) {
	switch t := v.(type) {
	case float64:
		return t, false, true
	case float32:
		return float64(t), true, true
	case int:
		return float64(t), true, true
	case int64:
		return float64(t), true, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true, true
		}
		return v, false, false
	default:
		return v, false, false
	}
}

func coerceBool(v any) (any, bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, false, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if _, yes := truthy[s]; yes {
			return true, true, true
		}
		if _, no := falsy[s]; no {
			return false, true, true
		}
		return v, false, false
	case int, int64:
		f, _, _ := coerceInt(t)
		switch f {
		case int64(0):
			return false, true, true
		case int64(1):
			return true, true, true
		}
		return v, false, false
	default:
		return v, false, false
	}
}

func coerceDate(f Field, v any) (any, bool, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(ISODate), true, true
	case string:
		s := strings.TrimSpace(t)
		if _, err := time.Parse(ISODate, s); err == nil {
			if s == t {
				return t, false, true
			}
			return s, true, true
		}
		if f.Layout != "" {
			if parsed, err := time.Parse(f.Layout, s); err == nil {
				return parsed.Format(ISODate), true, true
			}
		}
		return v, false, false
	default:
		return v, false, false
	}
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(ISODate)
	default:
		return fmt.Sprint(t)
	}
}
