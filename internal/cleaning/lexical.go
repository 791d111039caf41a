// Package cleaning implements the column rules that repair the vehicle sales
// export: lexical normalizers, the numeric repair engine, the sale date
// synthesizer, the year-of-release sanitizer and the type finalizer.
//
// Every rule is available as a pure function over a single value (or a row
// view for multi-column rules) and as a transformer.Stage that applies it to
// a table column and records counters in Stats.
package cleaning

import (
	"fmt"
	"strings"
)

// Unknown is the sentinel code for missing or unclassifiable categorical
// values.
const Unknown = "UNK"

// CountryPolicy decides what happens to a country name with no mapping.
type CountryPolicy string

const (
	// CountryFail aborts the run with an *UnmappedValueError.
	CountryFail CountryPolicy = "fail"
	// CountryUnknown maps the value to Unknown and counts it.
	CountryUnknown CountryPolicy = "unknown"
)

// UnmappedValueError reports a value with no entry in a closed mapping.
type UnmappedValueError struct {
	Column string
	Value  string
	Line   int
}

func (e *UnmappedValueError) Error() string {
	return fmt.Sprintf("line %d: %s: no mapping for %q", e.Line, e.Column, e.Value)
}

// countryCodes maps country names as they appear in the export to ISO 3166
// alpha-3 codes.
var countryCodes = map[string]string{
	"Германия":             "DEU",
	"США":                  "USA",
	"Австрия":              "AUT",
	"Республика Казахстан": "KAZ",
	"Российская Федерация": "RUS",
	"Корея":                "KOR",
	"Япония":               "JPN",
	"Таиланд":              "THA",
	"Китай":                "CHN",
	"UK":                   "GBR",
	"Узбекистан":           "UZB",
	"Венгрия":              "HUN",
	"Турция":               "TUR",
	"Испания":              "ESP",
	"Нидерланды":           "NLD",
	"Польша":               "POL",
	"Швеция":               "SWE",
	"Белоруссия":           "BLR",
	"Бельгия":              "BEL",
}

var knownAlpha3 = func() map[string]bool {
	m := make(map[string]bool, len(countryCodes)+1)
	for _, c := range countryCodes {
		m[c] = true
	}
	m[Unknown] = true
	return m
}()

// CountryCode maps a country name to its alpha-3 code. An empty name yields
// Unknown. Codes already in canonical form are returned unchanged. ok is false
// when the name has no mapping.
func CountryCode(name string) (code string, ok bool) {
	if name == "" {
		return Unknown, true
	}
	if c, found := countryCodes[name]; found {
		return c, true
	}
	if knownAlpha3[name] {
		return name, true
	}
	return "", false
}

// fuel buckets in priority order.
var fuelBuckets = []struct {
	code  string
	words []string
}{
	{"F", []string{"бензин", "petrol", "gasoline"}},
	{"D", []string{"дизель", "diesel"}},
	{"E", []string{"электро", "электричество", "electric"}},
	{"HYB", []string{"гибрид", "hybrid"}},
}

// EncodeFuel classifies a free-text fuel type as F (gasoline), D (diesel),
// E (electric), HYB (hybrid) or Unknown. Numeric garbage such as "2", "1,6"
// and "0" falls through to Unknown.
func EncodeFuel(s string) string {
	if s == "" {
		return Unknown
	}
	for _, b := range fuelBuckets {
		if s == b.code {
			return s
		}
	}
	v := strings.ToLower(strings.TrimSpace(s))
	for _, b := range fuelBuckets {
		if containsAny(v, b.words) {
			return b.code
		}
	}
	return Unknown
}

// drive buckets in priority order: front, rear, all-wheel.
var driveBuckets = []struct {
	code  string
	words []string
}{
	{"FWD", []string{"передний", "fwd", "ff", "2wd", "2 wd"}},
	{"RWD", []string{"задний", "rwd"}},
	{"AWD", []string{"полный", "awd", "4wd", "4 wd", "4x4", "quattro", "4motion"}},
}

// driveGarbage lists values known to carry no drive information.
var driveGarbage = map[string]bool{
	"0": true, "#н/д": true, "астана": true, "пап": true, "4x2.2": true, "4x2": true,
}

// EncodeDrive classifies a free-text drive type as FWD, RWD, AWD or Unknown.
func EncodeDrive(s string) string {
	if s == "" {
		return Unknown
	}
	for _, b := range driveBuckets {
		if s == b.code {
			return s
		}
	}
	v := strings.ToLower(strings.TrimSpace(s))
	if driveGarbage[v] {
		return Unknown
	}
	for _, b := range driveBuckets {
		if containsAny(v, b.words) {
			return b.code
		}
	}
	return Unknown
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
