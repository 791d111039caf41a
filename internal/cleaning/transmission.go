package cleaning

import (
	"regexp"
	"strings"
)

// Transmission classes.
const (
	Automatic        = "Автомат"
	Manual           = "Механика"
	TransmissionUnkn = "Unknown"
)

// Patterns are tried in order against the upper-cased value and anchored at
// its start. Automatic patterns win over manual ones; changing the order
// changes the classification of values such as "6AT/MT".
var (
	automaticPatterns = compileAnchored(
		`.*АКП.*`, `.*АТ.*`, `.*A[ТT].*`, `.*CVT.*`, `.*DCT.*`,
		`.*DSG.*`, `.*TIPTRONIC.*`, `.*STEPTRONIC.*`, `.*PDK.*`,
		`.*AUTOMATIC.*`, `.*A/T.*`, `.*ВАРИАТОР.*`, `.*AMT.*`,
		`^\d+[АТA]$`, `^\d+[АТA].*`, `.*TRONIC.*`,
	)
	manualPatterns = compileAnchored(
		`.*МКП.*`, `.*МТ.*`, `.*M[ТT].*`, `.*M/T.*`, `.*МЕХ.*`,
		`.*MANUAL.*`, `^\d+[МMТT]$`, `^\d+[МMТT].*`,
	)
)

func compileAnchored(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)^(?:` + p + `)`)
	}
	return out
}

// ClassifyTransmission maps a free-text gearbox description to Automatic,
// Manual or TransmissionUnkn.
func ClassifyTransmission(s string) string {
	if s == "" {
		return TransmissionUnkn
	}
	v := strings.ToUpper(s)
	for _, re := range automaticPatterns {
		if re.MatchString(v) {
			return Automatic
		}
	}
	for _, re := range manualPatterns {
		if re.MatchString(v) {
			return Manual
		}
	}
	return TransmissionUnkn
}
