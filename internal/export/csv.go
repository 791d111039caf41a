// Package export writes the cleaned table to its file sinks and runs the
// sinks of one run concurrently.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"autosales/internal/schema"
	"autosales/internal/table"
	"autosales/pkg/records"
)

// WriteCSV writes t in the canonical output layout: comma-delimited, UTF-8
// with a BOM, one header row of canonical column names. Missing cells and
// columns absent from t are written as empty fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(enc)

	if err := cw.Write(schema.OutputColumns()); err != nil {
		return err
	}
	rec := make([]string, len(schema.Output))
	for _, r := range t.Rows {
		for i, f := range schema.Output {
			rec[i] = FormatCell(f, r.V)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("line %d: %w", r.Line, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return enc.Close()
}

// FormatCell renders the value of field f in r as CSV text.
func FormatCell(f schema.Field, r records.Record) string {
	v := r[f.Name]
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(schema.DateLayout)
	case float64:
		if f.Type == schema.Integer {
			return strconv.FormatInt(int64(x), 10)
		}
		prec := -1
		if f.Type == schema.Real {
			prec = f.Precision
		}
		return strconv.FormatFloat(x, 'f', prec, 64)
	}
	s, _ := records.Text(v)
	return s
}

// SaveCSV writes t to path in one shot, creating parent directories.
func SaveCSV(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
