package intake

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// blank reports whether a raw value counts as "not answered".
func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		return s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "null")
	}
	return false
}

// toFloat coerces JSON numbers and numeric strings. ok is false when the
// value is blank or not numeric.
func toFloat(v any) (float64, bool) {
	if blank(v) {
		return 0, false
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	case bool:
		return 0, false
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// floatUpTo returns def when v is not numeric or exceeds limit.
func floatUpTo(v any, limit, def float64) float64 {
	if f, ok := toFloat(v); ok && f <= limit {
		return f
	}
	return def
}

// intUpTo truncates toward zero. Values above limit fall back to def, which
// keeps the int conversion in range.
func intUpTo(v any, limit, def int) int {
	if f, ok := toFloat(v); ok && f <= float64(limit) && f >= math.MinInt32 {
		return int(f)
	}
	return def
}

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x == 1
	case int:
		return x == 1
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "si", "sí", "1", "1.0", "on":
			return true
		}
	}
	return false
}

// tag normalizes a free-form tag: lower case, trimmed, spaces and dashes
// folded to underscores.
func tag(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func text(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// flags turns a JSON object of loose booleans into the set of true keys.
func flags(v any) map[string]bool {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, raw := range m {
		if toBool(raw) {
			out[tag(k)] = true
		}
	}
	return out
}

// scores reads 1-5 ratings, rounding and clamping each into the scale.
func scores(v any) map[string]int {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, raw := range m {
		if f, ok := toFloat(raw); ok {
			out[tag(k)] = int(math.Round(math.Max(1, math.Min(5, f))))
		}
	}
	return out
}
