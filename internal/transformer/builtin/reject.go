// Package builtin contains the structural stages shared by every cleaning run:
// text normalization, column pruning and renaming, empty-row and duplicate
// removal, and the final completeness filter.
package builtin

import "autosales/pkg/records"

// RejectedRow describes a row removed by a stage.
type RejectedRow struct {
	Line   int
	Raw    records.Record
	Reason string
	Stage  string
}

// RejectFunc receives every row removed by a stage. It may be nil.
type RejectFunc func(RejectedRow)

func (f RejectFunc) emit(r RejectedRow) {
	if f != nil {
		f(r)
	}
}
