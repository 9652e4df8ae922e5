package protocol

import "strconv"

// Item values decode into `any`: JSON gives us bool for switches, float64 for
// numbers, and string for everything else. Real servers are not perfectly
// consistent (numbers as strings, switches as "On"/"Off"), so coercion is
// lenient and never fails.

// AsBool coerces a decoded item value to a boolean.
// Recognizes JSON booleans, the strings "true"/"On", and non-zero numbers.
func AsBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "On"
	case float64:
		return val != 0
	}
	return false
}

// AsFloat coerces a decoded item value to a float64.
// Unparseable values coerce to zero.
func AsFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// AsString coerces a decoded item value to a string
func AsString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "On"
		}
		return "Off"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
	return ""
}
