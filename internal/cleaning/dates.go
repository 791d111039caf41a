package cleaning

import (
	"strconv"
	"strings"
	"time"

	"autosales/internal/parser/numbers"
)

// Release years outside this range are treated as missing.
const (
	MinReleaseYear = 1900
	MaxReleaseYear = 2025
)

// months maps Russian month names to their number and their last day. The
// lengths are fixed: February always ends on the 28th.
var months = map[string]struct{ num, last int }{
	"Январь":   {1, 31},
	"Февраль":  {2, 28},
	"Март":     {3, 31},
	"Апрель":   {4, 30},
	"Май":      {5, 31},
	"Июнь":     {6, 30},
	"Июль":     {7, 31},
	"Август":   {8, 31},
	"Сентябрь": {9, 30},
	"Октябрь":  {10, 31},
	"Ноябрь":   {11, 30},
	"Декабрь":  {12, 31},
}

// SaleDate builds the sale date, the last day of the named month of year. ok
// is false for an unparseable year, a year outside 1..9999, or an unknown
// month name.
func SaleDate(year, month string) (time.Time, bool) {
	m, found := months[strings.TrimSpace(month)]
	if !found {
		return time.Time{}, false
	}
	y, ok := numbers.ParseInt(year, numbers.Russian)
	if !ok || y < 1 || y > 9999 {
		return time.Time{}, false
	}
	return time.Date(int(y), time.Month(m.num), m.last, 0, 0, 0, 0, time.UTC), true
}

var yearNoise = strings.NewReplacer("\u00a0", "", " ", "", `\`, "", "x", "")

// SanitizeYear extracts a release year from a noisy cell such as "2015\xa0"
// or "20x15". ok is false when no digits remain or the year is outside
// [MinReleaseYear, MaxReleaseYear].
func SanitizeYear(s string) (int64, bool) {
	d := numbers.DigitsOnly(yearNoise.Replace(s))
	if d == "" {
		return 0, false
	}
	y, err := strconv.ParseInt(d, 10, 64)
	if err != nil || y < MinReleaseYear || y > MaxReleaseYear {
		return 0, false
	}
	return y, true
}
