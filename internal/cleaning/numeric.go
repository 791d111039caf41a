package cleaning

import (
	"math"

	"github.com/shopspring/decimal"

	"autosales/internal/parser/numbers"
)

// Quantity thresholds used for anomaly counters only; values above them are
// kept as they are.
const (
	BulkQuantity      = 10
	LargeBulkQuantity = 50
)

// DiscrepancyTolerance is the largest accepted gap, in USD, between
// price×quantity and the sale amount before a row is counted as suspicious.
const DiscrepancyTolerance = 1.0

// ParseQuantity parses a quantity cell. Missing or unparseable input defaults
// to 1 (one sale) and reports filled=true. Fractions truncate toward zero and
// the sign is kept: negative quantities are returns.
func ParseQuantity(s string, loc numbers.Locale) (q int64, filled bool) {
	if v, ok := numbers.ParseInt(s, loc); ok {
		return v, false
	}
	return 1, true
}

// ParseMoney parses a price or sale cell. ok is false for missing or
// unparseable input. Negative amounts are clamped to 0 and reported.
func ParseMoney(s string, loc numbers.Locale) (v float64, ok, clamped bool) {
	v, ok = numbers.ParseFloat(s, loc)
	if !ok {
		return 0, false, false
	}
	if v < 0 {
		return 0, true, true
	}
	return v, true, false
}

// RoundMoney rounds an amount to cents, halves away from zero, using decimal
// arithmetic so that 0.125 does not become 0.12 through binary error.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Discrepant reports whether price×quantity differs from sale by more than
// DiscrepancyTolerance.
func Discrepant(price float64, qty int64, sale float64) bool {
	return math.Abs(price*float64(qty)-sale) > DiscrepancyTolerance
}
