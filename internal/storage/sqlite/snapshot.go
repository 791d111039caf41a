package sqlite

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"autosales/internal/schema"
	gddl "autosales/internal/schema/ddl"
	"autosales/internal/storage"
	sqliteddl "autosales/internal/storage/sqlite/ddl"
	"autosales/internal/table"
)

// BatchSize is the number of rows inserted per transaction.
const BatchSize = 1000

// IndexedColumns are indexed in every snapshot for time and dealer queries.
var IndexedColumns = []string{schema.SaleDate, schema.DealerName}

// WriteSnapshot replaces tableName in the database at dsn with the rows of t
// in the canonical output schema and returns the number of rows written.
func WriteSnapshot(ctx context.Context, dsn, tableName string, t *table.Table) (int64, error) {
	td, err := gddl.FromFields(tableName, schema.Output)
	if err != nil {
		return 0, fmt.Errorf("snapshot: %w", err)
	}
	drop, err := sqliteddl.DropTableSQL(td.FQN)
	if err != nil {
		return 0, err
	}
	create, err := sqliteddl.CreateTableSQL(td)
	if err != nil {
		return 0, err
	}
	stmts := []string{drop, create}
	for _, col := range IndexedColumns {
		idx, err := sqliteddl.IndexSQL(td.FQN, col)
		if err != nil {
			return 0, err
		}
		stmts = append(stmts, idx)
	}

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: td.FQN})
	if err != nil {
		return 0, err
	}
	defer closeFn()

	for _, stmt := range stmts {
		if err := repo.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("snapshot: %w", err)
		}
	}

	columns := td.ColumnNames()
	rows := make(chan []any, BatchSize)
	var written int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return storage.Feed(gctx, t, columns, rows) })
	g.Go(func() error {
		n, err := storage.LoadBatches(gctx, columns, rows, BatchSize, repo.CopyFrom)
		written = n
		return err
	})
	if err := g.Wait(); err != nil {
		return written, fmt.Errorf("snapshot %s: %w", dsn, err)
	}
	log.Printf("sqlite: snapshot dsn=%s table=%s rows=%d", dsn, td.FQN, written)
	return written, nil
}
