package channel

import (
	"encoding/json"
	"math"
)

// Float converts a decoded JSON or storage value to float64.
//
// Accepts float64, float32, json.Number and the Go integer kinds.
// Strings, booleans, nil, NaN and infinities are not numeric.
func Float(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Long converts a numeric value to int64, truncating any fraction.
func Long(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := Float(v)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Convert returns v in the representation of vt.
func Convert(v any, vt ValueType) (any, bool) {
	switch vt {
	case ValueLong:
		return Long(v)
	case ValueDouble:
		return Float(v)
	default:
		return nil, false
	}
}
