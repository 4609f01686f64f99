package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Raw is one unvalidated input row keyed by field name, as produced by
// encoding/json when decoding into a generic map. Values are expected to be
// scalars: string, json.Number (with Decoder.UseNumber), float64, bool or nil.
type Raw map[string]interface{}

// Field returns the value for key. Absent keys and explicit nulls both report
// false, so callers check presence instead of relying on zero values.
func Field(r Raw, key string) (interface{}, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Blank reports whether v is a string that is empty or all whitespace.
func Blank(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// Stringify renders a scalar value as a string. Numbers are rendered without
// an exponent and without a trailing ".0" so that 42 and 42.0 read the same.
func Stringify(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("value has type %T, want a scalar", v)
	}
}

// Normalize converts a string field to its canonical form: uppercase, trimmed.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ToDecimal coerces a scalar value to a decimal. Strings are trimmed and must
// parse as a number; booleans coerce to 0 and 1.
func ToDecimal(v interface{}) (decimal.Decimal, error) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return d, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return decimal.Zero, fmt.Errorf("empty string is not a number")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number %q: %w", s, err)
		}
		return d, nil
	case int: // unlikely from encoding/json, but harmless to support
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case bool:
		if val {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("value has type %T, want a number", v)
	}
}
