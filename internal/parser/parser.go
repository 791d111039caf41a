// Package parser defines the contract shared by tabular input parsers.
package parser

import (
	"io"

	"autosales/internal/table"
)

// Parser turns an input stream into a table. The int result is the number of
// rows that were skipped as malformed.
type Parser interface {
	Parse(r io.Reader) (*table.Table, int, error)
}
