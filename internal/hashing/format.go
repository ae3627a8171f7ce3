package hashing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f the way a JavaScript engine's Number toString does:
// shortest round-trip digits, plain notation between 1e-6 and 1e21 and
// exponent notation outside that range.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		n, err := strconv.Atoi(exp)
		if err != nil {
			return s
		}
		return fmt.Sprintf("%se%+d", mantissa, n)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Stringify coerces a source value to its default string representation.
// nil becomes the empty string, as an array join renders it.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return FormatNumber(float64(val))
	case float64:
		return FormatNumber(val)
	default:
		return fmt.Sprint(val)
	}
}
