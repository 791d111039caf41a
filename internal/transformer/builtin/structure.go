package builtin

import (
	"autosales/internal/table"
)

// DropColumns removes the listed columns when present. Absent columns are
// ignored, so the stage never needs a capability check.
type DropColumns struct {
	Label   string
	Columns []string
	// Dropped is set after Apply to the columns actually removed.
	Dropped []string
}

func (d *DropColumns) Name() string {
	if d.Label != "" {
		return d.Label
	}
	return "drop-columns"
}

func (d *DropColumns) Requires() []string { return nil }

func (d *DropColumns) Apply(t *table.Table) error {
	d.Dropped = t.DropColumns(d.Columns...)
	return nil
}

// Rename maps source headers to canonical names (old -> new).
type Rename struct {
	Map map[string]string
	// Renamed is set after Apply to the number of columns renamed.
	Renamed int
}

func (r *Rename) Name() string       { return "rename" }
func (r *Rename) Requires() []string { return nil }

func (r *Rename) Apply(t *table.Table) error {
	r.Renamed = t.Rename(r.Map)
	return nil
}

// DropEmpty removes rows whose every cell is missing or an empty string.
type DropEmpty struct {
	Reject RejectFunc
	// Removed counts the rows dropped by the last Apply.
	Removed int
}

func (d *DropEmpty) Name() string       { return "drop-empty" }
func (d *DropEmpty) Requires() []string { return nil }

func (d *DropEmpty) Apply(t *table.Table) error {
	removed := t.Filter(func(r *table.Row) bool { return !r.V.Empty() })
	d.Removed = len(removed)
	for _, r := range removed {
		d.Reject.emit(RejectedRow{Line: r.Line, Raw: r.V, Reason: "empty row", Stage: d.Name()})
	}
	return nil
}
