package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"autosales/internal/config"
	"autosales/internal/metrics"
	"autosales/internal/metrics/promfile"
	"autosales/internal/probe"
)

// main loads the pipeline config, applies flag overrides, validates it and
// runs one cleaning pass over the source export.
func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	fs := flag.NewFlagSet("autoclean", flag.ContinueOnError)
	var (
		cfgPath  = fs.String("config", "configs/pipelines/autokz2019.json", "pipeline config JSON path")
		in       = fs.String("in", "", "input export (overrides source.path)")
		out      = fs.String("out", "", "cleaned CSV path (overrides output.csv)")
		rejects  = fs.String("rejects", "", "audit log of dropped rows (overrides output.reject_log)")
		textRep  = fs.String("report", "", "text report path (overrides report.text)")
		xlsxRep  = fs.String("xlsx", "", "XLSX report path (overrides report.xlsx)")
		sqlite   = fs.String("sqlite", "", "SQLite snapshot path (overrides output.sqlite)")
		promText = fs.String("metrics-textfile", "", "Prometheus textfile path (overrides metrics.textfile)")
		strict   = fs.Bool("strict", false, "fail when a stage's input columns are missing")
		validate = fs.Bool("validate", false, "validate the configuration and exit")
		doProbe  = fs.Bool("probe", false, "check the source encoding, delimiter and header, then exit")
		verbose  = fs.Bool("v", false, "enable verbose logs")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	override(&p.Source.Path, *in)
	override(&p.Output.CSV, *out)
	override(&p.Output.RejectLog, *rejects)
	override(&p.Report.Text, *textRep)
	override(&p.Report.XLSX, *xlsxRep)
	override(&p.Output.SQLite, *sqlite)
	override(&p.Metrics.Textfile, *promText)
	if *strict {
		p.Cleaning.Strict = true
	}
	config.ApplyDefaults(&p)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", *cfgPath)
		return 1
	}
	if *validate {
		log.Printf("Configuration is valid: %v", *cfgPath)
		return 0
	}
	if *doProbe {
		res, err := probe.Probe(context.Background(), probe.Options{
			Path:      p.Source.Path,
			Encoding:  p.Source.Encoding,
			Delimiter: config.Rune(p.Source.Delimiter),
		})
		if err != nil {
			log.Printf("probe: %v", err)
			return 1
		}
		if err := probe.Write(os.Stdout, res); err != nil || !res.OK() {
			return 1
		}
		return 0
	}

	if p.Metrics.Textfile != "" {
		b, err := promfile.NewBackend(p.Job, p.Metrics.Textfile)
		if err != nil {
			log.Printf("metrics: failed to init textfile backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
			if *verbose {
				log.Printf("metrics: textfile=%s job=%s", p.Metrics.Textfile, p.Job)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := run(ctx, p, *verbose); err != nil {
		log.Printf("autoclean: %v", err)
		return 1
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
