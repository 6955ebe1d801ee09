package agent

import (
	"fmt"
	"math"
)

// Parameter extraction for loosely typed maps (batch steps, MCP tool
// arguments). JSON numbers arrive as float64 and YAML ones as int.

// StringParam returns params[key] as a string, or defaultVal if absent.
func StringParam(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

// StringPtrParam returns params[key] as a string pointer, or nil if absent.
func StringPtrParam(params map[string]any, key string) *string {
	if _, ok := params[key]; !ok {
		return nil
	}
	s := StringParam(params, key, "")
	return &s
}

// FloatParam returns params[key] as a float64 pointer, or nil if absent or
// not a number.
func FloatParam(params map[string]any, key string) *float64 {
	var f float64
	switch n := params[key].(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return nil
	}
	return &f
}

// Int64Param returns params[key] truncated to an int64, or nil if absent.
// Out-of-range values saturate; NaN is zero.
func Int64Param(params map[string]any, key string) *int64 {
	f := FloatParam(params, key)
	if f == nil {
		return nil
	}
	var n int64
	switch {
	case math.IsNaN(*f):
	case *f >= math.MaxInt64:
		n = math.MaxInt64
	case *f <= math.MinInt64:
		n = math.MinInt64
	default:
		n = int64(*f)
	}
	return &n
}

// IntParam returns params[key] as an int, or defaultVal if absent.
func IntParam(params map[string]any, key string, defaultVal int) int {
	if n := Int64Param(params, key); n != nil {
		return int(*n)
	}
	return defaultVal
}

// BoolParam returns params[key] as a bool, or defaultVal if absent.
func BoolParam(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
