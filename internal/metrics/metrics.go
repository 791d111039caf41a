// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the cleaning pipeline.
//
// The package exposes a narrow interface (Backend) focused on counters and
// timing data. The global backend defaults to a no-op implementation, so
// metrics are always safe to call even when no real backend is configured.
// Concrete metric systems live in subpackages.
package metrics

import "time"

// Metric names understood by backends.
const (
	StageTotal           = "autoclean_stage_total"
	StageDurationSeconds = "autoclean_stage_duration_seconds"
	RecordsTotal         = "autoclean_records_total"
	AnomaliesTotal       = "autoclean_anomalies_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush writes out collected metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep records latency and success/failure of one pipeline stage or
// exporter.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given job and kind.
//
// Kinds mirror the run summary: "read", "skipped_malformed", "empty",
// "duplicate", "incomplete", "written".
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordAnomaly increments an anomaly counter (returns, clamped prices, lost
// engine volumes, ...) for the given job.
func RecordAnomaly(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(AnomaliesTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
