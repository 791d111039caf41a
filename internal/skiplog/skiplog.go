// Package skiplog writes the audit log of rows dropped during cleaning: one
// CSV line per row with the stage, the reason, the source line and the row
// as it looked when it was dropped.
package skiplog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"autosales/internal/transformer/builtin"
)

// Header is the first row of every audit log.
var Header = []string{"stage", "reason", "line_number", "raw_record"}

// Log is an audit log bound to one file. It is not safe for concurrent use;
// stages run one at a time.
type Log struct {
	stages map[string]int
	f      *os.File
	enc    *transform.Writer
	w      *csv.Writer
	err    error
}

// New creates path (and its parent directories) and writes the header. The
// file is UTF-8 with a BOM so spreadsheet tools pick the right encoding.
func New(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(enc)
	l := &Log{stages: make(map[string]int), f: f, enc: enc, w: w}
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return l, nil
}

// Add records one dropped row. The first write error is kept and returned
// by Close.
func (l *Log) Add(r builtin.RejectedRow) {
	l.stages[r.Stage]++
	if l.err != nil {
		return
	}
	raw, err := json.Marshal(r.Raw)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", r.Raw))
	}
	l.err = l.w.Write([]string{r.Stage, r.Reason, strconv.Itoa(r.Line), string(raw)})
}

// Reject adapts the log to the stage callback type.
func (l *Log) Reject() builtin.RejectFunc { return l.Add }

// Counts returns the number of rows logged per stage.
func (l *Log) Counts() map[string]int {
	out := make(map[string]int, len(l.stages))
	for k, v := range l.stages {
		out[k] = v
	}
	return out
}

// Close flushes the log and closes the file.
func (l *Log) Close() error {
	l.w.Flush()
	if l.err == nil {
		l.err = l.w.Error()
	}
	// The encoder holds back a trailing partial rune until closed.
	if err := l.enc.Close(); err != nil && l.err == nil {
		l.err = err
	}
	if err := l.f.Close(); err != nil && l.err == nil {
		l.err = err
	}
	return l.err
}
