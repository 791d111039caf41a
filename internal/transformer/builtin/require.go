package builtin

import (
	"fmt"
	"strings"

	"autosales/internal/table"
)

// Require removes any row missing a value for one of the specified fields.
type Require struct {
	Fields []string
	Reject RejectFunc
	// Removed counts the rows dropped by the last Apply.
	Removed int
}

func (r *Require) Name() string       { return "require" }
func (r *Require) Requires() []string { return r.Fields }

// Apply keeps only rows that have all required fields present and non-empty.
func (r *Require) Apply(t *table.Table) error {
	removed := t.Filter(func(row *table.Row) bool { return len(r.missing(row)) == 0 })
	r.Removed = len(removed)
	for _, row := range removed {
		r.Reject.emit(RejectedRow{
			Line:   row.Line,
			Raw:    row.V,
			Reason: fmt.Sprintf("missing %s", strings.Join(r.missing(row), ", ")),
			Stage:  r.Name(),
		})
	}
	return nil
}

func (r *Require) missing(row *table.Row) []string {
	var out []string
	for _, f := range r.Fields {
		v, exists := row.V[f]
		if !exists || v == nil || v == "" {
			out = append(out, f)
		}
	}
	return out
}
