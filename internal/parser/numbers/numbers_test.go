package numbers

import (
	"strings"
	"testing"
)

// TestParseFloat_Russian exercises the localized parser on the shapes seen in
// the sales export: decimal comma, space and no-break-space grouping, and the
// fail-soft contract for anything that is not a finite number.
func TestParseFloat_Russian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{name: "integer", in: "1000", want: 1000, wantOK: true},
		{name: "decimal comma", in: "1,6", want: 1.6, wantOK: true},
		{name: "space grouping", in: "25 400,50", want: 25400.5, wantOK: true},
		{name: "nbsp grouping", in: "25\u00a0400", want: 25400, wantOK: true},
		{name: "negative", in: "-500", want: -500, wantOK: true},
		{name: "surrounding space", in: "  42 ", want: 42, wantOK: true},
		{name: "empty", in: "", wantOK: false},
		{name: "text", in: "n/a", wantOK: false},
		{name: "nan rejected", in: "NaN", wantOK: false},
		{name: "inf rejected", in: "Inf", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseFloat(tt.in, Russian)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Fatalf("ParseFloat(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseInt_Truncates(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]int64{"3": 3, "3,7": 3, "-2": -2, "-2,9": -2, "1 200": 1200} {
		got, ok := ParseInt(in, Russian)
		if !ok || got != want {
			t.Fatalf("ParseInt(%q) = (%d, %v), want %d", in, got, ok, want)
		}
	}
	// 2^63 does not fit an int64 even though float64(MaxInt64) rounds to it.
	for _, in := range []string{strings.Repeat("9", 40), "9223372036854775808", "-9223372036854777856"} {
		if v, ok := ParseInt(in, Russian); ok {
			t.Fatalf("ParseInt(%q) = %d, want out of range", in, v)
		}
	}
}

func TestFirstDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.6", 1.6, true},
		{"2.0turbo", 2.0, true},
		{"v8-4.4", 8, true},
		{"2.", 2, true},
		{"12.5.3", 12.5, true},
		{"абв", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := FirstDecimal(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("FirstDecimal(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	t.Parallel()

	if got := DigitsOnly("20x15 г.\\"); got != "2015" {
		t.Fatalf("DigitsOnly = %q, want 2015", got)
	}
	if got := DigitsOnly("abc"); got != "" {
		t.Fatalf("DigitsOnly = %q, want empty", got)
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ in, want float64 }{
		{2.16, 2.2},
		{1.64, 1.6},
		{7.5, 7.5},
		{0.25, 0.3},
	} {
		if got := Round(tc.in, 1); got != tc.want {
			t.Fatalf("Round(%v, 1) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func BenchmarkParseFloat(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseFloat("25 400,50", Russian)
	}
}
