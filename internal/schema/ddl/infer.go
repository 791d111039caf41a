// Package ddl derives database-agnostic table definitions from the canonical
// sales schema. Renderers for concrete databases live next to their storage
// backends.
package ddl

import (
	"fmt"
	"strings"

	"autosales/internal/schema"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, INTEGER, REAL)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names of t in order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// FromFields derives a TableDef for the given fields. Required fields become
// NOT NULL; everything else is nullable because missing is a legitimate
// cleaned value.
func FromFields(table string, fields []schema.Field) (TableDef, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return TableDef{}, fmt.Errorf("missing table")
	}
	if len(fields) == 0 {
		return TableDef{}, fmt.Errorf("no fields for table %s", table)
	}
	td := TableDef{FQN: table, Columns: make([]ColumnDef, 0, len(fields))}
	for _, f := range fields {
		td.Columns = append(td.Columns, ColumnDef{
			Name:     f.Name,
			SQLType:  MapType(f.Type),
			Nullable: !f.Required,
		})
	}
	return td, nil
}

// MapType maps a semantic type to a portable SQL type name. Dates are stored
// as ISO text so that every sink renders them identically.
func MapType(t schema.Type) string {
	switch t {
	case schema.Integer:
		return "INTEGER"
	case schema.Real:
		return "REAL"
	default:
		return "TEXT"
	}
}
