// Package ddl renders the SQLite statements that lay out a sales snapshot.
package ddl

import (
	"fmt"
	"strings"

	gddl "autosales/internal/schema/ddl"
)

// CreateTableSQL renders td as a CREATE TABLE IF NOT EXISTS statement, one
// column per line. Columns marked PrimaryKey are collected into a trailing
// table constraint.
func CreateTableSQL(td gddl.TableDef) (string, error) {
	name := QuoteFQN(td.FQN)
	if name == "" {
		return "", fmt.Errorf("sqlite ddl: empty table name")
	}
	if len(td.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: table %s has no columns", td.FQN)
	}

	lines := make([]string, 0, len(td.Columns)+1)
	var pk []string
	for _, c := range td.Columns {
		col, typ := strings.TrimSpace(c.Name), strings.TrimSpace(c.SQLType)
		switch {
		case col == "":
			return "", fmt.Errorf("sqlite ddl: %s: unnamed column", td.FQN)
		case typ == "":
			return "", fmt.Errorf("sqlite ddl: %s.%s: no type", td.FQN, col)
		}
		line := QuoteIdent(col) + " " + typ
		if !c.Nullable {
			line += " NOT NULL"
		}
		lines = append(lines, line)
		if c.PrimaryKey {
			pk = append(pk, QuoteIdent(col))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return "CREATE TABLE IF NOT EXISTS " + name + " (\n  " + strings.Join(lines, ",\n  ") + "\n);", nil
}

// DropTableSQL renders DROP TABLE IF EXISTS for table.
func DropTableSQL(table string) (string, error) {
	name := QuoteFQN(table)
	if name == "" {
		return "", fmt.Errorf("sqlite ddl: empty table name")
	}
	return "DROP TABLE IF EXISTS " + name + ";", nil
}

// IndexSQL renders a CREATE INDEX IF NOT EXISTS statement on one column of
// table. The index is named <table>_<column>_idx.
func IndexSQL(table, column string) (string, error) {
	name := QuoteFQN(table)
	if name == "" || strings.TrimSpace(column) == "" {
		return "", fmt.Errorf("sqlite ddl: index needs a table and a column")
	}
	parts := strings.Split(table, ".")
	base := strings.TrimSpace(parts[len(parts)-1])
	idx := QuoteIdent(base + "_" + column + "_idx")
	if len(parts) > 1 {
		idx = QuoteFQN(strings.Join(parts[:len(parts)-1], ".")) + "." + idx
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);", idx, QuoteIdent(base), QuoteIdent(column)), nil
}

// QuoteIdent wraps id in double quotes, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes every non-empty dot-separated part of fqn.
func QuoteFQN(fqn string) string {
	var out []string
	for _, p := range strings.Split(fqn, ".") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, QuoteIdent(p))
		}
	}
	return strings.Join(out, ".")
}
