package cleaning

import (
	"sort"
	"strings"

	"autosales/internal/parser/numbers"
)

// Plausible engine volume band, in litres.
const (
	MinEngineVolume = 0.5
	MaxEngineVolume = 8.0
)

// engineGarbage marks cells that carry a gearbox, a power figure or a
// "no data" marker instead of a volume.
var engineGarbage = []string{"mt", "at", "н/д", "#h/д", "#н/д", "кип", "л.с.", "квт"}

// EngineRow is the row view needed by the engine volume corrector.
type EngineRow struct {
	Volume string
	Brand  string
	Model  string
}

// CleanEngineVolume parses and corrects a raw engine volume. ok is false when
// the value is missing, garbage, or outside the plausible band after
// correction.
//
// Values above 50 are read as a volume written in decilitres (or a power
// figure) and divided by 10. Chevrolet Niva and Jaguar rows above 10 are known
// to be off by a factor of ten as well.
func CleanEngineVolume(r EngineRow) (float64, bool) {
	if strings.TrimSpace(r.Volume) == "" {
		return 0, false
	}
	s := strings.ReplaceAll(r.Volume, ",", ".")
	s = strings.NewReplacer("L", "", "l", "", " ", "").Replace(s)
	if containsAny(strings.ToLower(s), engineGarbage) {
		return 0, false
	}
	v, ok := numbers.FirstDecimal(s)
	if !ok {
		return 0, false
	}

	if v > 50 {
		return inBand(v / 10)
	}
	if r.Brand != "" && r.Model != "" {
		brand, model := strings.ToLower(r.Brand), strings.ToLower(r.Model)
		if strings.Contains(brand, "chevrolet") && strings.Contains(model, "niva") && v > 10 {
			return numbers.Round(v/10, 1), true
		}
		if strings.Contains(brand, "jaguar") && v > 10 {
			return numbers.Round(v/10, 1), true
		}
	}
	return inBand(v)
}

// inBand checks the unrounded value and returns it rounded to one decimal.
func inBand(v float64) (float64, bool) {
	if v < MinEngineVolume || v > MaxEngineVolume {
		return 0, false
	}
	return numbers.Round(v, 1), true
}

// Median returns the median of vs (mean of the middle two for even counts).
// vs is sorted in place. ok is false for an empty slice.
func Median(vs []float64) (float64, bool) {
	n := len(vs)
	if n == 0 {
		return 0, false
	}
	sort.Float64s(vs)
	if n%2 == 1 {
		return vs[n/2], true
	}
	return (vs[n/2-1] + vs[n/2]) / 2, true
}

// BrandMedians computes the per-brand median of cleaned volumes rounded to
// one decimal. Brands with no cleaned volume are absent from the result.
func BrandMedians(volumes map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(volumes))
	for brand, vs := range volumes {
		if m, ok := Median(vs); ok {
			out[brand] = numbers.Round(m, 1)
		}
	}
	return out
}
