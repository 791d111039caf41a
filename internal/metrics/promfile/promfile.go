// Package promfile implements a Prometheus textfile backend for the metrics
// package.
//
// Metrics are collected in a private client_golang registry and written, on
// Flush, to a file in the Prometheus text exposition format. The file is meant
// to be picked up by node_exporter's textfile collector, which suits a batch
// job that exits long before any scrape.
//
// This package contains all Prometheus-specific dependencies so that the rest
// of the project stays decoupled from Prometheus.
package promfile

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"autosales/internal/metrics"
)

// Backend is a Prometheus textfile metrics backend.
type Backend struct {
	path    string // output file, e.g. /var/lib/node_exporter/autoclean.prom
	jobName string // value of the constant "job" label
	reg     *prometheus.Registry

	stageCounter  *prometheus.CounterVec // autoclean_stage_total
	stageDuration *prometheus.SummaryVec // autoclean_stage_duration_seconds

	recordCounter  *prometheus.CounterVec // autoclean_records_total
	anomalyCounter *prometheus.CounterVec // autoclean_anomalies_total
}

// NewBackend constructs a textfile backend writing to path.
func NewBackend(jobName, path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("promfile: output path is required")
	}
	if jobName == "" {
		jobName = "autoclean"
	}

	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"job": jobName}

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        metrics.StageTotal,
			Help:        "Total number of pipeline stage executions, partitioned by stage and status.",
			ConstLabels: constLabels,
		},
		[]string{"step", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:        metrics.StageDurationSeconds,
			Help:        "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives:  map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			ConstLabels: constLabels,
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        metrics.RecordsTotal,
			Help:        "Row counts per kind (read, empty, duplicate, incomplete, written, ...).",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)
	anomalyCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        metrics.AnomaliesTotal,
			Help:        "Data anomalies found while cleaning, per kind.",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)

	for _, c := range []struct {
		what string
		c    prometheus.Collector
	}{
		{"stage counter", stageCounter},
		{"stage summary", stageDuration},
		{"record counter", recordCounter},
		{"anomaly counter", anomalyCounter},
	} {
		if err := reg.Register(c.c); err != nil {
			return nil, fmt.Errorf("promfile: register %s: %w", c.what, err)
		}
	}

	return &Backend{
		path:           path,
		jobName:        jobName,
		reg:            reg,
		stageCounter:   stageCounter,
		stageDuration:  stageDuration,
		recordCounter:  recordCounter,
		anomalyCounter: anomalyCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter == nil {
			return
		}
		b.stageCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RecordsTotal:
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.AnomaliesTotal:
		if b.anomalyCounter == nil {
			return
		}
		b.anomalyCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDurationSeconds || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush writes the registry to the output file. The write goes through a
// temporary file and a rename, so readers never see a partial file.
func (b *Backend) Flush() error {
	if b.reg == nil {
		return fmt.Errorf("promfile: backend not initialized")
	}
	if err := prometheus.WriteToTextfile(b.path, b.reg); err != nil {
		return fmt.Errorf("promfile: write %s: %w", b.path, err)
	}
	return nil
}
