// Package storage contains sink-agnostic contracts and the batched loader
// used to write a cleaned table into a database snapshot.
package storage

import (
	"context"
	"time"

	"autosales/internal/schema"
	"autosales/internal/table"
)

// Repository is the minimal surface a snapshot sink needs.
type Repository interface {
	// Exec runs a statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// CopyFrom bulk-inserts rows aligned to columns and reports how many
	// were inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
}

// Value converts a cleaned cell into a database/sql argument. Dates are
// stored as ISO text; missing cells become NULL.
func Value(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(schema.DateLayout)
	default:
		return x
	}
}

// Feed sends the rows of t, projected onto columns, to out and closes it.
// It stops early when ctx is done.
func Feed(ctx context.Context, t *table.Table, columns []string, out chan<- []any) error {
	defer close(out)
	for _, r := range t.Rows {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = Value(r.V[c])
		}
		select {
		case out <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
