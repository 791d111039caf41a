package metrics

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type sample struct {
	name   string
	value  float64
	labels Labels
}

// recorder keeps every call in order.
type recorder struct {
	mu       sync.Mutex
	counters []sample
	observed []sample
	flushes  int
	flushErr error
}

func (r *recorder) IncCounter(name string, delta float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, sample{name, delta, labels})
}

func (r *recorder) ObserveHistogram(name string, value float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, sample{name, value, labels})
}

func (r *recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return r.flushErr
}

// install swaps the global backend for the duration of the test. Tests using
// it must not run in parallel.
func install(t *testing.T) *recorder {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	r := &recorder{}
	backend = r
	return r
}

/*
TestRecordStep checks that a stage timing produces one counter and one
duration sample with job, step and status labels.
*/
func TestRecordStep(t *testing.T) {
	r := install(t)

	RecordStep("autokz2019", "engine_volume", nil, 250*time.Millisecond)
	RecordStep("autokz2019", "export:sqlite", errors.New("disk full"), 2*time.Second)

	wantCounters := []sample{
		{StageTotal, 1, Labels{"job": "autokz2019", "step": "engine_volume", "status": "success"}},
		{StageTotal, 1, Labels{"job": "autokz2019", "step": "export:sqlite", "status": "failure"}},
	}
	if !reflect.DeepEqual(r.counters, wantCounters) {
		t.Fatalf("counters = %+v\nwant %+v", r.counters, wantCounters)
	}
	wantObserved := []sample{
		{StageDurationSeconds, 0.25, wantCounters[0].labels},
		{StageDurationSeconds, 2, wantCounters[1].labels},
	}
	if !reflect.DeepEqual(r.observed, wantObserved) {
		t.Fatalf("observed = %+v\nwant %+v", r.observed, wantObserved)
	}
}

func TestRecordRowAndAnomaly(t *testing.T) {
	r := install(t)

	RecordRow("autokz2019", "read", 39966)
	RecordRow("autokz2019", "duplicate", 0)
	RecordRow("autokz2019", "incomplete", -1)
	RecordAnomaly("autokz2019", "returns", 12)
	RecordAnomaly("autokz2019", "sale_clamped", 0)

	want := []sample{
		{RecordsTotal, 39966, Labels{"job": "autokz2019", "kind": "read"}},
		{AnomaliesTotal, 12, Labels{"job": "autokz2019", "kind": "returns"}},
	}
	if !reflect.DeepEqual(r.counters, want) {
		t.Fatalf("counters = %+v\nwant %+v", r.counters, want)
	}
	if len(r.observed) != 0 {
		t.Fatalf("unexpected observations: %+v", r.observed)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	t.Cleanup(func() { backend = orig })

	r := &recorder{flushErr: errors.New("read-only file system")}
	SetBackend(r)
	SetBackend(nil)
	if backend != Backend(r) {
		t.Fatal("SetBackend(nil) replaced the installed backend")
	}
	if err := Flush(); !errors.Is(err, r.flushErr) {
		t.Fatalf("Flush = %v, want %v", err, r.flushErr)
	}
	if r.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", r.flushes)
	}
}

func TestNopBackend(t *testing.T) {
	t.Parallel()

	var b Backend = nopBackend{}
	b.IncCounter(RecordsTotal, 1, nil)
	b.ObserveHistogram(StageDurationSeconds, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
}
