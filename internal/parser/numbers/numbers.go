// Package numbers parses numeric values out of localized free-text cells.
// It is intended for exports where numbers use a decimal comma, space or
// no-break-space thousands grouping, and where measurement fields carry units
// and other noise around the number itself.
package numbers

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Locale describes how numbers are written in the source file.
type Locale struct {
	// Decimal is the decimal separator, e.g. ','.
	Decimal rune
	// Thousands is the grouping separator, e.g. ' '. Zero disables grouping.
	Thousands rune
}

// Russian is the locale of the sales export: "1 234,56".
var Russian = Locale{Decimal: ',', Thousands: ' '}

// grouping characters that are always ignored next to digits
const (
	nbsp       = "\u00a0"
	narrowNBSP = "\u202f"
)

// ParseFloat parses s according to loc. It fails soft: any malformed input,
// NaN or Inf reports ok=false instead of an error.
func ParseFloat(s string, loc Locale) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, nbsp, "")
	s = strings.ReplaceAll(s, narrowNBSP, "")
	if loc.Thousands != 0 {
		s = strings.ReplaceAll(s, string(loc.Thousands), "")
	}
	if loc.Decimal != 0 && loc.Decimal != '.' {
		s = strings.ReplaceAll(s, string(loc.Decimal), ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt parses s as an integral number according to loc. Values with a
// fractional part are truncated toward zero ("3,0" and "3,7" both yield 3).
func ParseInt(s string, loc Locale) (int64, bool) {
	f, ok := ParseFloat(s, loc)
	if !ok || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

var firstNumber = regexp.MustCompile(`\d+\.?\d*`)

// FirstDecimal returns the first unsigned decimal token ("12", "1.6", "2.")
// found in s. The decimal separator must already be '.'.
func FirstDecimal(s string) (float64, bool) {
	tok := firstNumber.FindString(s)
	if tok == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(tok, "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// DigitsOnly drops every rune of s that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Round rounds f to the given number of decimal places, halves away from zero.
func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
