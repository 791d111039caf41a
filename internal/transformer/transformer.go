// Package transformer defines the stage contract of the cleaning pipeline and
// the Chain that runs stages in a fixed order over one in-memory table.
//
// A stage owns one table at a time: it receives the table, mutates it in place
// and returns. Stages declare the columns they need so the chain can check
// capabilities up front instead of failing on a missing key halfway through.
package transformer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"autosales/internal/table"
)

// ErrMissingColumns is returned (wrapped in *MissingColumnsError) when a
// stage's required columns are absent and the chain runs in strict mode.
var ErrMissingColumns = errors.New("missing required columns")

// Stage is one step of the cleaning pipeline.
type Stage interface {
	Name() string
	// Requires lists the columns that must exist before Apply runs.
	Requires() []string
	Apply(t *table.Table) error
}

// MissingColumnsError names the stage and the columns it could not find.
type MissingColumnsError struct {
	Stage   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("stage %s: %v: %s", e.Stage, ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// Capability is the outcome of checking a stage against a table.
type Capability struct {
	Stage   string
	Missing []string
}

// OK reports whether every required column is present.
func (c Capability) OK() bool { return len(c.Missing) == 0 }

// Check reports which of s's required columns t lacks.
func Check(s Stage, t *table.Table) Capability {
	return Capability{Stage: s.Name(), Missing: t.Missing(s.Requires()...)}
}

// Func adapts a plain function to the Stage interface.
type Func struct {
	StageName string
	Columns   []string
	Fn        func(t *table.Table) error
}

func (f Func) Name() string { return f.StageName }

func (f Func) Requires() []string { return f.Columns }

func (f Func) Apply(t *table.Table) error { return f.Fn(t) }

// Timing records row flow and wall time for one executed stage.
type Timing struct {
	Stage    string
	RowsIn   int
	RowsOut  int
	Duration time.Duration
}

// Result summarizes a chain run.
type Result struct {
	Timings []Timing
	// Skipped holds the stages skipped in lenient mode.
	Skipped []Capability
}

// Options control how a Chain reacts to missing columns and reports progress.
type Options struct {
	// Strict turns a missing-column capability into a run failure.
	Strict bool
	// Observe, when set, is called after every executed stage.
	Observe func(Timing)
	// OnSkip, when set, is called for every stage skipped in lenient mode.
	OnSkip func(Capability)
}

// Chain is an ordered list of stages.
type Chain []Stage

// Apply runs every stage in order over t. In lenient mode stages whose
// required columns are missing are skipped and recorded; in strict mode the
// first such stage aborts the run with a *MissingColumnsError. A stage error
// aborts the run and is returned wrapped with the stage name.
func (c Chain) Apply(t *table.Table, opts Options) (Result, error) {
	var res Result
	for _, s := range c {
		if capa := Check(s, t); !capa.OK() {
			if opts.Strict {
				return res, &MissingColumnsError{Stage: capa.Stage, Columns: capa.Missing}
			}
			res.Skipped = append(res.Skipped, capa)
			if opts.OnSkip != nil {
				opts.OnSkip(capa)
			}
			continue
		}
		in := t.Len()
		start := time.Now()
		if err := s.Apply(t); err != nil {
			return res, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		tm := Timing{Stage: s.Name(), RowsIn: in, RowsOut: t.Len(), Duration: time.Since(start)}
		res.Timings = append(res.Timings, tm)
		if opts.Observe != nil {
			opts.Observe(tm)
		}
	}
	return res, nil
}
