// Package table holds the in-memory dataset threaded through the cleaning
// pipeline. A Table is owned by exactly one stage at a time: each stage
// receives it, mutates it in place and hands it to the next stage.
package table

import (
	"sort"

	"autosales/pkg/records"
)

// Row is a single record plus the 1-based source line it was read from
// (header is line 1). Line is kept for reject logs and error messages.
type Row struct {
	Line int
	V    records.Record
}

// Category is the finite label set observed in a categorical column.
type Category struct {
	// Labels is the sorted set of distinct labels.
	Labels []string
	// Counts holds per-label occurrence counts.
	Counts map[string]int
}

// Table is an ordered set of columns and the rows carrying them.
type Table struct {
	Columns []string
	Rows    []*Row

	// Categories is populated by the type finalizer, keyed by column.
	Categories map[string]*Category
}

// New returns an empty table with the given column order.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row and returns it.
func (t *Table) Append(line int, rec records.Record) *Row {
	r := &Row{Line: line, V: rec}
	t.Rows = append(t.Rows, r)
	return r
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Missing returns the subset of cols that the table does not carry, in the
// order given.
func (t *Table) Missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if !t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// AddColumn appends col to the column order if it is not already present.
// Existing rows are not touched; a missing key reads as nil.
func (t *Table) AddColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

// DropColumns removes the given columns from the column order and from every
// row. It returns the columns that were actually present.
func (t *Table) DropColumns(cols ...string) []string {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	var dropped []string
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if _, ok := drop[c]; ok {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	t.Columns = kept
	if len(dropped) == 0 {
		return nil
	}
	for _, r := range t.Rows {
		for _, c := range dropped {
			delete(r.V, c)
		}
	}
	return dropped
}

// Rename renames columns according to m (old -> new). Columns absent from m
// keep their names. It returns the number of columns renamed.
func (t *Table) Rename(m map[string]string) int {
	n := 0
	for i, c := range t.Columns {
		to, ok := m[c]
		if !ok || to == c {
			continue
		}
		t.Columns[i] = to
		for _, r := range t.Rows {
			if v, ok := r.V[c]; ok {
				delete(r.V, c)
				r.V[to] = v
			}
		}
		n++
	}
	return n
}

// Filter keeps the rows for which keep returns true, preserving order, and
// returns the removed rows.
func (t *Table) Filter(keep func(*Row) bool) []*Row {
	var removed []*Row
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if keep(r) {
			kept = append(kept, r)
			continue
		}
		removed = append(removed, r)
	}
	// clear the tail so dropped rows can be collected
	for i := len(kept); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = kept
	return removed
}

// SetCategory records the label set for col from the given counts.
func (t *Table) SetCategory(col string, counts map[string]int) {
	if t.Categories == nil {
		t.Categories = make(map[string]*Category)
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	t.Categories[col] = &Category{Labels: labels, Counts: counts}
}
