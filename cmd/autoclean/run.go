package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"autosales/internal/cleaning"
	"autosales/internal/config"
	"autosales/internal/datasource/file"
	"autosales/internal/export"
	"autosales/internal/parser/numbers"
	"autosales/internal/pipeline"
	"autosales/internal/report"
	"autosales/internal/skiplog"
	"autosales/internal/storage/sqlite"
	"autosales/internal/table"

	pcsv "autosales/internal/parser/csv"
)

// run executes one cleaning pass: read and clean the source, then write every
// configured sink concurrently. The audit log is closed before returning so
// its error is reported with the run.
func run(ctx context.Context, p config.Pipeline, verbose bool) (err error) {
	src, err := file.NewLocalEncoded(p.Source.Path, p.Source.Encoding)
	if err != nil {
		return err
	}
	prs := pcsv.NewParser(pcsv.Options{
		HasHeader: true,
		Comma:     config.Rune(p.Source.Delimiter),
	})

	opts := pipeline.Options{
		Job:           p.Job,
		Strict:        p.Cleaning.Strict,
		CountryPolicy: cleaning.CountryPolicy(p.Cleaning.CountryPolicy),
		DedupPolicy:   p.Cleaning.DedupPolicy,
		Locale: numbers.Locale{
			Decimal:   config.Rune(p.Source.Decimal),
			Thousands: config.Rune(p.Source.Thousands),
		},
		Verbose: verbose,
	}
	if p.Output.RejectLog != "" {
		rl, err := skiplog.New(p.Output.RejectLog)
		if err != nil {
			return fmt.Errorf("reject log: %w", err)
		}
		defer func() {
			if cerr := rl.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("reject log: %w", cerr)
			}
			if verbose {
				log.Printf("skiplog: path=%s stages=%v", p.Output.RejectLog, rl.Counts())
			}
		}()
		opts.Reject = rl.Reject()
	}

	t, sum, err := pipeline.Run(ctx, src, prs, opts)
	if err != nil {
		return err
	}
	if !sum.Balanced() {
		return fmt.Errorf("row accounting does not balance: %+v", sum)
	}
	if verbose {
		b, _ := json.MarshalIndent(sum.Stats, "", "  ")
		log.Printf("pipeline: anomalies %s", b)
	}
	if err := export.Run(ctx, p.Job, sinks(p, t, sum)...); err != nil {
		return err
	}
	if p.Output.Summary != "" {
		return writeSummary(p.Output.Summary, sum)
	}
	return nil
}

// sinks lists the outputs configured in p. They only read t.
func sinks(p config.Pipeline, t *table.Table, sum pipeline.Summary) []export.Sink {
	var out []export.Sink
	if p.Output.CSV != "" {
		out = append(out, export.Sink{Name: "csv", Write: func(context.Context) error {
			return export.SaveCSV(p.Output.CSV, t)
		}})
	}
	if p.Output.SQLite != "" {
		out = append(out, export.Sink{Name: "sqlite", Write: func(ctx context.Context) error {
			_, err := sqlite.WriteSnapshot(ctx, p.Output.SQLite, p.Output.SQLiteTable, t)
			return err
		}})
	}
	if p.Report.Text != "" || p.Report.XLSX != "" {
		rep := report.Build(t, report.Options{
			RunID:       sum.RunID,
			TopN:        p.Report.TopN,
			FocusDealer: p.Report.FocusDealer,
		})
		if p.Report.Text != "" {
			out = append(out, export.Sink{Name: "report-text", Write: func(context.Context) error {
				return report.SaveText(p.Report.Text, rep)
			}})
		}
		if p.Report.XLSX != "" {
			out = append(out, export.Sink{Name: "report-xlsx", Write: func(context.Context) error {
				return report.WriteXLSX(p.Report.XLSX, rep)
			}})
		}
	}
	if len(out) == 0 {
		log.Printf("export: no sinks configured; rows=%d", t.Len())
	}
	return out
}

// writeSummary stores the run summary as JSON.
func writeSummary(path string, sum pipeline.Summary) error {
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return nil
}
