package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"autosales/internal/table"
	"autosales/pkg/records"
)

// DeDup collapses duplicate rows. A row's key is the 128-bit xxh3 hash of the
// configured key columns (all table columns when Keys is empty), so only
// full-row duplicates are removed by default.
//
// Policies:
//
//   - "keep-first": keep the earliest occurrence (default)
//   - "keep-last" : keep the latest occurrence, at its own position
//
// Survivors keep their relative input order under both policies.
type DeDup struct {
	Keys   []string
	Policy string
	Reject RejectFunc
	// Removed counts the rows dropped by the last Apply.
	Removed int
}

func (d *DeDup) Name() string       { return "dedup" }
func (d *DeDup) Requires() []string { return d.Keys }

func (d *DeDup) Apply(t *table.Table) error {
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	switch policy {
	case "", "keep-first":
		policy = "keep-first"
	case "keep-last":
	default:
		return fmt.Errorf("unknown dedup policy %q", d.Policy)
	}

	keys := d.Keys
	if len(keys) == 0 {
		keys = append([]string(nil), t.Columns...)
	}

	// winner holds the index of the surviving row per key.
	winner := make(map[xxh3.Uint128]int, t.Len())
	rowKeys := make([]xxh3.Uint128, t.Len())
	var buf []byte
	for i, r := range t.Rows {
		buf = appendKey(buf[:0], r.V, keys)
		k := xxh3.Hash128(buf)
		rowKeys[i] = k
		if _, seen := winner[k]; seen && policy == "keep-first" {
			continue
		}
		winner[k] = i
	}

	firstLine := make(map[xxh3.Uint128]int, len(winner))
	for k, i := range winner {
		firstLine[k] = t.Rows[i].Line
	}

	idx := 0
	removed := t.Filter(func(*table.Row) bool {
		i := idx
		idx++
		return winner[rowKeys[i]] == i
	})
	d.Removed = len(removed)
	if d.Reject != nil {
		for _, r := range removed {
			buf = appendKey(buf[:0], r.V, keys)
			d.Reject.emit(RejectedRow{
				Line:   r.Line,
				Raw:    r.V,
				Reason: fmt.Sprintf("duplicate of line %d", firstLine[xxh3.Hash128(buf)]),
				Stage:  d.Name(),
			})
		}
	}
	return nil
}

// appendKey serializes the key columns of rec. Each value is tagged with its
// kind so that the string "1" and the integer 1 hash differently, and values
// are separated by a unit separator.
func appendKey(b []byte, rec records.Record, keys []string) []byte {
	for i, k := range keys {
		if i > 0 {
			b = append(b, '\x1f')
		}
		switch v := rec[k].(type) {
		case nil:
			b = append(b, '\x00')
		case string:
			b = append(b, 's')
			b = append(b, v...)
		case int64:
			b = append(b, 'i')
			b = strconv.AppendInt(b, v, 10)
		case int:
			b = append(b, 'i')
			b = strconv.AppendInt(b, int64(v), 10)
		case float64:
			b = append(b, 'f')
			b = strconv.AppendFloat(b, v, 'g', -1, 64)
		default:
			b = append(b, 'v')
			b = fmt.Append(b, v)
		}
	}
	return b
}
