// Package csv parses delimited text into an in-memory table. Rows keep the
// physical line they started on so later stages can report them.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"

	"autosales/internal/table"
	"autosales/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0 and there is no header, fixes the row width
	// and names columns col_0..col_N-1.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys. Headers without
	// an entry keep their trimmed source name.
	HeaderMap map[string]string

	// LazyQuotes relaxes quote handling for hand-edited exports.
	LazyQuotes bool

	// LogLimit caps how many skipped rows are logged. Zero means 400.
	LogLimit int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ErrNoHeader is returned when a header is expected but the input is empty.
var ErrNoHeader = errors.New("csv: missing header row")

// Parse reads the whole input into a table and returns it along with the
// number of body rows that were skipped because of a parse error or a field
// count that does not match the header. The header is line 1.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	// Width is checked below so a bad row is skipped, not fatal.
	cr.FieldsPerRecord = -1

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return nil, 0, ErrNoHeader
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = colName(i)
		}
	}

	limit := p.opt.LogLimit
	if limit <= 0 {
		limit = 400
	}
	out := table.New(headers...)
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			if skipped < limit {
				log.Printf("csv: skip line=%d err=%v", line, err)
			}
			skipped++
			continue
		}

		line, _ := cr.FieldPos(0)
		if len(headers) == 0 {
			// Headerless and no fixed width: the first row sets it.
			headers = make([]string, len(row))
			for i := range headers {
				headers[i] = colName(i)
			}
			for _, h := range headers {
				out.AddColumn(h)
			}
		}
		if len(row) != len(headers) {
			if skipped < limit {
				log.Printf("csv: skip line=%d reason=field_count expected=%d got=%d", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out.Append(line, rec)
	}
	if skipped > limit {
		log.Printf("csv: skipped=%d (only the first %d logged)", skipped, limit)
	}
	return out, skipped, nil
}

// colName synthesizes the key of an unnamed column.
func colName(idx int) string { return fmt.Sprintf("col_%d", idx) }

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders strips a BOM from the first cell, trims each header, puts
// it into Unicode NFC and maps it through HeaderMap. Blank headers become
// col_N.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		c := norm.NFC.String(strings.TrimSpace(col))
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = colName(i)
		}
		res[i] = c
	}
	return res
}
