// Package records defines the loosely typed row representation shared by the
// parser, the cleaning stages and the exporters.
//
// A Record maps a column name to its current value. Values start life as
// strings (or nil for empty cells) and are progressively replaced by typed
// values (int64, float64, time.Time) as cleaning stages run. A nil value is the
// single "missing" representation used throughout the project.
package records

import (
	"strconv"
	"strings"
)

// Record is one row keyed by column name.
type Record map[string]any

// Missing reports whether key is absent or holds nil.
func (r Record) Missing(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// Empty reports whether every value in the record is nil or an empty string.
func (r Record) Empty() bool {
	for _, v := range r {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if t == "" {
				continue
			}
		}
		return false
	}
	return true
}

// String returns the value for key as a string. Typed numeric values are
// rendered without loss; ok is false when the value is missing.
func (r Record) String(key string) (string, bool) {
	return Text(r[key])
}

// Float returns the value for key as float64 when it already holds a number.
func (r Record) Float(key string) (float64, bool) {
	switch t := r[key].(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

// Int returns the value for key as int64 when it already holds an integer.
func (r Record) Int(key string) (int64, bool) {
	switch t := r[key].(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	}
	return 0, false
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Text renders a raw value as text. nil and empty strings report ok=false.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	}
	return "", false
}
