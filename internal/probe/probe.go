// Package probe samples the head of a source export and checks it against the
// fixed source layout before a full run: encoding, delimiter, header
// conformance and row widths.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"autosales/internal/datasource/file"
	"autosales/internal/schema"
)

// DefaultMaxBytes is how much of the file is sampled when Options.MaxBytes
// is zero.
const DefaultMaxBytes = 64 << 10

// candidate delimiters, in order of preference on a tie.
var delimiters = []rune{';', ',', '\t', '|'}

// Options control the sampling.
type Options struct {
	Path string
	// Encoding is passed to file.NewLocalEncoded ("auto" by default).
	Encoding string
	// Delimiter is the configured delimiter, checked against the detected one.
	Delimiter rune
	MaxBytes  int
}

// Result describes the sampled head of a source file.
type Result struct {
	Encoding string
	// Delimiter is the candidate that splits the sample most consistently.
	Delimiter rune
	// DelimiterMismatch is set when Delimiter differs from Options.Delimiter.
	DelimiterMismatch bool

	Headers []string
	// Known headers map to canonical columns; Irrelevant ones are dropped by
	// the pipeline; Unknown ones pass through untouched.
	Known      []string
	Irrelevant []string
	Unknown    []string
	// Missing lists expected source headers absent from the file.
	Missing []string

	Rows int
	// Misaligned counts sampled rows whose width differs from the header.
	Misaligned int
}

// OK reports whether the sample matches the expected layout.
func (r Result) OK() bool {
	return len(r.Missing) == 0 && !r.DelimiterMismatch
}

// Probe samples opt.Path and checks its header.
func Probe(ctx context.Context, opt Options) (Result, error) {
	enc := opt.Encoding
	if enc == "" {
		enc = file.EncodingAuto
	}
	n := opt.MaxBytes
	if n <= 0 {
		n = DefaultMaxBytes
	}

	head, err := rawHead(opt.Path, n)
	if err != nil {
		return Result{}, err
	}
	res := Result{Encoding: enc}
	if enc == file.EncodingAuto {
		res.Encoding = file.Detect(head)
	}

	src, err := file.NewLocalEncoded(opt.Path, res.Encoding)
	if err != nil {
		return Result{}, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(n)))
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", opt.Path, err)
	}
	// Cut to the last newline so a partial record does not count as misaligned.
	if i := bytes.LastIndexByte(data, '\n'); i > 0 {
		data = data[:i+1]
	}

	res.Delimiter = DetectDelimiter(data)
	if opt.Delimiter != 0 && opt.Delimiter != res.Delimiter {
		res.DelimiterMismatch = true
	}
	headers, widths := readSample(data, res.Delimiter)
	res.Headers = headers
	res.Rows = len(widths)
	for _, w := range widths {
		if w != len(headers) {
			res.Misaligned++
		}
	}
	classify(&res)
	return res, nil
}

func rawHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	b, err := bufio.NewReaderSize(f, n).Peek(n)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

// DetectDelimiter picks the candidate whose first lines split into the same
// number of fields most often, preferring wider splits.
func DetectDelimiter(sample []byte) rune {
	lines := strings.Split(string(sample), "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	best, bestScore := delimiters[0], -1
	for _, d := range delimiters {
		counts := map[int]int{}
		for _, l := range lines {
			if strings.TrimSpace(l) == "" {
				continue
			}
			counts[strings.Count(l, string(d))]++
		}
		score := 0
		for fields, c := range counts {
			if fields > 0 && c*fields > score {
				score = c * fields
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// readSample returns the header and the width of every data row that
// parses. Parse errors are skipped.
func readSample(data []byte, delim rune) ([]string, []int) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var headers []string
	var widths []int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		if headers == nil {
			headers = stripBOM(rec)
			continue
		}
		widths = append(widths, len(rec))
	}
	return headers, widths
}

func stripBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func classify(res *Result) {
	known := schema.HeaderMap()
	seen := map[string]bool{}
	for _, h := range res.Headers {
		seen[h] = true
		switch {
		case known[h] != "":
			res.Known = append(res.Known, h)
		case slices.Contains(schema.IrrelevantColumns, h):
			res.Irrelevant = append(res.Irrelevant, h)
		default:
			res.Unknown = append(res.Unknown, h)
		}
	}
	for _, h := range schema.SourceHeaders {
		if !seen[h.Source] {
			res.Missing = append(res.Missing, h.Source)
		}
	}
}

// Write prints res as "key: value" lines.
func Write(w io.Writer, res Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "encoding: %s\n", res.Encoding)
	fmt.Fprintf(&b, "delimiter: %q", res.Delimiter)
	if res.DelimiterMismatch {
		b.WriteString(" (differs from configured)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "columns: %d known, %d irrelevant, %d unknown\n", len(res.Known), len(res.Irrelevant), len(res.Unknown))
	if len(res.Unknown) > 0 {
		fmt.Fprintf(&b, "unknown: %s\n", strings.Join(res.Unknown, " | "))
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(&b, "missing: %s\n", strings.Join(res.Missing, " | "))
	}
	fmt.Fprintf(&b, "sampled rows: %d (misaligned %d)\n", res.Rows, res.Misaligned)
	_, err := io.WriteString(w, b.String())
	return err
}
