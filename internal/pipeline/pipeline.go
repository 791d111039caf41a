// Package pipeline wires the cleaning stages into their fixed order and runs
// them over one table, producing the cleaned table and a run summary.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"autosales/internal/cleaning"
	"autosales/internal/datasource"
	"autosales/internal/metrics"
	"autosales/internal/parser"
	"autosales/internal/parser/numbers"
	"autosales/internal/schema"
	"autosales/internal/table"
	"autosales/internal/transformer"
	"autosales/internal/transformer/builtin"
)

// Options control one cleaning run.
type Options struct {
	// Job labels logs and metrics.
	Job string
	// Strict fails the run when a stage's input columns are absent.
	Strict bool
	// CountryPolicy decides what happens to an unmapped country.
	CountryPolicy cleaning.CountryPolicy
	// DedupPolicy is passed to the duplicate filter.
	DedupPolicy string
	// Locale describes how numbers are written in the source.
	Locale numbers.Locale
	// Reject receives every dropped row. May be nil.
	Reject builtin.RejectFunc
	// Verbose logs every stage.
	Verbose bool
}

// Summary reports what a run did. Read - Empty - Duplicates - Incomplete
// always equals Written.
type Summary struct {
	RunID   uuid.UUID `json:"run_id"`
	Job     string    `json:"job"`
	Started time.Time `json:"started"`

	// SkippedMalformed counts rows dropped by the parser; they are not part
	// of Read.
	SkippedMalformed int `json:"skipped_malformed"`
	Read             int `json:"read"`
	Empty            int `json:"empty"`
	Duplicates       int `json:"duplicates"`
	Incomplete       int `json:"incomplete"`
	Written          int `json:"written"`

	DroppedColumns []string                 `json:"dropped_columns,omitempty"`
	Skipped        []transformer.Capability `json:"skipped_stages,omitempty"`
	Timings        []transformer.Timing     `json:"timings"`
	Stats          cleaning.Stats           `json:"stats"`
}

// Balanced reports whether the row accounting identity holds.
func (s Summary) Balanced() bool {
	return s.Read-s.Empty-s.Duplicates-s.Incomplete == s.Written
}

// Pipeline is a configured, single-use cleaning run.
type Pipeline struct {
	opts  Options
	stats cleaning.Stats

	dropIrrelevant *builtin.DropColumns
	empty          *builtin.DropEmpty
	dedup          *builtin.DeDup
	require        *builtin.Require
	chain          transformer.Chain
}

// New builds the stage chain for opts.
func New(opts Options) *Pipeline {
	if opts.Job == "" {
		opts.Job = "autoclean"
	}
	if opts.Locale == (numbers.Locale{}) {
		opts.Locale = numbers.Russian
	}
	if opts.CountryPolicy == "" {
		opts.CountryPolicy = cleaning.CountryFail
	}
	p := &Pipeline{opts: opts}
	st := &p.stats

	p.dropIrrelevant = &builtin.DropColumns{Label: "drop-irrelevant", Columns: schema.IrrelevantColumns}
	p.empty = &builtin.DropEmpty{Reject: opts.Reject}
	p.dedup = &builtin.DeDup{Policy: opts.DedupPolicy, Reject: opts.Reject}
	p.require = &builtin.Require{Fields: schema.RequiredColumns, Reject: opts.Reject}

	// Duplicates are exact matches on the raw cells; text is normalized after.
	chain := transformer.Chain{
		p.dropIrrelevant,
		&builtin.Rename{Map: schema.HeaderMap()},
		p.empty,
		p.dedup,
		builtin.Normalize{},
		cleaning.Country(opts.CountryPolicy, st),
		cleaning.Fuel(),
		cleaning.Drive(),
		cleaning.Quantity(opts.Locale, st),
		cleaning.Money(schema.PriceUSD, opts.Locale, st),
		cleaning.Money(schema.SaleUSD, opts.Locale, st),
		cleaning.Audit(st),
		cleaning.SaleDates(st),
		&builtin.DropColumns{Label: "drop-year-month", Columns: []string{schema.Year, schema.Month}},
		cleaning.Dealer(st),
		cleaning.Engine(st),
		cleaning.AreaRegion(),
		cleaning.Transmission(st),
	}
	for _, col := range schema.CategoricalColumns {
		chain = append(chain, cleaning.Categorical(col))
	}
	chain = append(chain,
		cleaning.ReleaseYear(st),
		cleaning.RoundMoneyColumns(),
		p.require,
	)
	p.chain = chain
	return p
}

// Stages returns the stage chain in execution order.
func (p *Pipeline) Stages() transformer.Chain { return p.chain }

// Clean runs every stage over t in place. On error the table is left in
// whatever state the failing stage reached and the partial summary is
// returned alongside the error.
func (p *Pipeline) Clean(t *table.Table) (Summary, error) {
	sum := Summary{
		RunID:   uuid.New(),
		Job:     p.opts.Job,
		Started: time.Now(),
		Read:    t.Len(),
	}
	log.Printf("pipeline: start job=%s run=%s rows=%d columns=%d strict=%t",
		sum.Job, sum.RunID, sum.Read, len(t.Columns), p.opts.Strict)

	res, err := p.chain.Apply(t, transformer.Options{
		Strict: p.opts.Strict,
		Observe: func(tm transformer.Timing) {
			metrics.RecordStep(p.opts.Job, tm.Stage, nil, tm.Duration)
			if p.opts.Verbose {
				log.Printf("pipeline: stage=%s in=%d out=%d took=%s",
					tm.Stage, tm.RowsIn, tm.RowsOut, tm.Duration.Truncate(time.Microsecond))
			}
		},
		OnSkip: func(c transformer.Capability) {
			log.Printf("pipeline: skip stage=%s missing=%v", c.Stage, c.Missing)
		},
	})
	sum.Timings = res.Timings
	sum.Skipped = res.Skipped
	sum.Empty = p.empty.Removed
	sum.Duplicates = p.dedup.Removed
	sum.Incomplete = p.require.Removed
	sum.DroppedColumns = p.dropIrrelevant.Dropped
	sum.Stats = p.stats
	if err != nil {
		metrics.RecordStep(p.opts.Job, "clean", err, time.Since(sum.Started))
		return sum, err
	}
	sum.Written = t.Len()

	p.record(sum)
	log.Printf("pipeline: done job=%s read=%d empty=%d duplicates=%d incomplete=%d written=%d skipped_stages=%d took=%s",
		sum.Job, sum.Read, sum.Empty, sum.Duplicates, sum.Incomplete, sum.Written, len(sum.Skipped),
		time.Since(sum.Started).Truncate(time.Millisecond))
	return sum, nil
}

func (p *Pipeline) record(sum Summary) {
	job := p.opts.Job
	metrics.RecordRow(job, "read", int64(sum.Read))
	metrics.RecordRow(job, "empty", int64(sum.Empty))
	metrics.RecordRow(job, "duplicate", int64(sum.Duplicates))
	metrics.RecordRow(job, "incomplete", int64(sum.Incomplete))
	metrics.RecordRow(job, "written", int64(sum.Written))
	for _, c := range sum.Stats.Counters() {
		metrics.RecordAnomaly(job, c.Kind, int64(c.N))
	}
}

// Run opens src, parses it with prs and cleans the result.
func Run(ctx context.Context, src datasource.Source, prs parser.Parser, opts Options) (*table.Table, Summary, error) {
	p := New(opts)
	job := p.opts.Job
	start := time.Now()
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, Summary{}, err
	}
	t, skipped, err := prs.Parse(rc)
	rc.Close()
	metrics.RecordStep(job, "parse", err, time.Since(start))
	if err != nil {
		return nil, Summary{}, fmt.Errorf("parse: %w", err)
	}
	metrics.RecordRow(job, "skipped_malformed", int64(skipped))
	if skipped > 0 {
		log.Printf("pipeline: parser skipped=%d malformed rows", skipped)
	}

	sum, err := p.Clean(t)
	sum.SkippedMalformed = skipped
	if err != nil {
		return nil, sum, err
	}
	return t, sum, nil
}
