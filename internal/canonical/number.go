package canonical

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f the way ECMAScript Number::toString does.
//
// Decimal notation for magnitudes in [1e-6, 1e21), exponent notation
// ("1e+21", "1.5e-7") outside that range, "0" for both zeros. NaN and the
// infinities render as "NaN", "Infinity" and "-Infinity".
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
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatFixed renders f with exactly digits decimals, like toFixed.
// Negative zero prints without a sign.
func FormatFixed(f float64, digits int) string {
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', digits, 64)
}
