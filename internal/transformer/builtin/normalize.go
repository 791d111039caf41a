package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"autosales/internal/table"
)

const nbspace = "\u00a0"

// Normalize cleans every string cell: NBSP becomes a plain space, edge
// whitespace is trimmed and the text is put into Unicode NFC so that
// composed and decomposed Cyrillic (й, ё) compare equal downstream. Cells
// that end up empty become missing.
type Normalize struct{}

func (Normalize) Name() string       { return "normalize" }
func (Normalize) Requires() []string { return nil }

func (Normalize) Apply(t *table.Table) error {
	for _, r := range t.Rows {
		for k, v := range r.V {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = NormalizeText(s)
			if s == "" {
				r.V[k] = nil
				continue
			}
			r.V[k] = s
		}
	}
	return nil
}

// NormalizeText applies the cell normalization to a single string.
func NormalizeText(s string) string {
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	if HasEdgeSpace(s) {
		s = strings.TrimSpace(s)
	}
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return s
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	isSpace := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}
