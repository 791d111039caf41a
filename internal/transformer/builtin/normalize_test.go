package builtin

import (
	"reflect"
	"testing"

	"autosales/internal/table"
	"autosales/pkg/records"
)

/*
TestNormalizeApply_TableDriven verifies the core normalization semantics of
Normalize.Apply:

  - Replaces U+00A0 NO-BREAK SPACE (NBSP) with ASCII space.
  - Trims leading/trailing ASCII whitespace.
  - Composes decomposed Unicode into NFC.
  - Turns blank strings into missing values.
  - Leaves non-string values unchanged.
*/
func TestNormalizeApply_TableDriven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   records.Record
		want records.Record
	}{
		{
			name: "no_strings_no_change",
			in:   records.Record{"a": int64(1), "b": 2.5, "c": nil},
			want: records.Record{"a": int64(1), "b": 2.5, "c": nil},
		},
		{
			name: "simple_trim_spaces",
			in:   records.Record{"a": " foo ", "b": "\tbar\n"},
			want: records.Record{"a": "foo", "b": "bar"},
		},
		{
			name: "nbsp_replaced_and_trimmed",
			in:   records.Record{"a": " " + nbspace + "foo" + nbspace + " "},
			want: records.Record{"a": "foo"},
		},
		{
			name: "nbsp_internal",
			in:   records.Record{"a": "2" + nbspace + "015"},
			want: records.Record{"a": "2 015"},
		},
		{
			name: "blank_becomes_missing",
			in:   records.Record{"a": "   ", "b": nbspace},
			want: records.Record{"a": nil, "b": nil},
		},
		{
			name: "nfc_composition",
			// "и" + COMBINING BREVE composes to "й".
			in:   records.Record{"a": "\u0438\u0306"},
			want: records.Record{"a": "\u0439"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tb := table.New()
			tb.Append(2, tc.in)
			if err := (Normalize{}).Apply(tb); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !reflect.DeepEqual(tb.Rows[0].V, tc.want) {
				t.Fatalf("got %#v want %#v", tb.Rows[0].V, tc.want)
			}
		})
	}
}

/*
TestHasEdgeSpace verifies that HasEdgeSpace detects leading/trailing ASCII
whitespace and ignores interior-only whitespace.
*/
func TestHasEdgeSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"foo", false},
		{" foo", true},
		{"foo ", true},
		{"f oo", false},
		{"\tfoo", true},
		{"foo\n", true},
		{"\rfoo", true},
	}
	for _, tc := range tests {
		if got := HasEdgeSpace(tc.in); got != tc.want {
			t.Errorf("HasEdgeSpace(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestNormalizeText_Idempotent checks that normalizing twice changes nothing.
func TestNormalizeText_Idempotent(t *testing.T) {
	t.Parallel()

	for _, s := range []string{" a" + nbspace + "b ", "\u0401\u043b\u043a\u0430", "x\u0438\u0306"} {
		once := NormalizeText(s)
		if twice := NormalizeText(once); twice != once {
			t.Fatalf("NormalizeText not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}
