package transformer

import (
	"errors"
	"reflect"
	"testing"

	"autosales/internal/table"
	"autosales/pkg/records"
)

/*
setStage sets key -> val on every row. Used to verify mutation flows through
Chain in order.
*/
func setStage(name, key string, val any, requires ...string) Stage {
	return Func{StageName: name, Columns: requires, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			r.V[key] = val
		}
		return nil
	}}
}

func newTable() *table.Table {
	t := table.New("a", "b")
	t.Append(2, records.Record{"a": "1", "b": "x"})
	t.Append(3, records.Record{"a": "2", "b": nil})
	return t
}

/*
TestChainApply_OrderAndTimings verifies that stages run in order (later
stages see and overwrite earlier writes) and that one Timing is recorded per
executed stage with row counts before and after.
*/
func TestChainApply_OrderAndTimings(t *testing.T) {
	t.Parallel()

	tb := newTable()
	var observed []string
	drop := Func{StageName: "drop-b-nil", Columns: []string{"b"}, Fn: func(t *table.Table) error {
		t.Filter(func(r *table.Row) bool { return !r.V.Missing("b") })
		return nil
	}}
	c := Chain{setStage("first", "c", 1), setStage("second", "c", 2), drop}

	res, err := c.Apply(tb, Options{Observe: func(tm Timing) { observed = append(observed, tm.Stage) }})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := tb.Rows[0].V["c"]; got != 2 {
		t.Fatalf("c = %v, want 2 (second stage wins)", got)
	}
	if !reflect.DeepEqual(observed, []string{"first", "second", "drop-b-nil"}) {
		t.Fatalf("observed = %v", observed)
	}
	last := res.Timings[2]
	if last.RowsIn != 2 || last.RowsOut != 1 {
		t.Fatalf("drop timing = %+v", last)
	}
}

/*
TestChainApply_LenientSkips verifies that a stage with missing columns is
skipped, recorded in Result.Skipped and reported through OnSkip, while the
remaining stages still run.
*/
func TestChainApply_LenientSkips(t *testing.T) {
	t.Parallel()

	tb := newTable()
	var skipped []Capability
	c := Chain{setStage("needs-z", "z", 1, "z"), setStage("ok", "c", 1, "a")}

	res, err := c.Apply(tb, Options{OnSkip: func(c Capability) { skipped = append(skipped, c) }})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Stage != "needs-z" || !reflect.DeepEqual(res.Skipped[0].Missing, []string{"z"}) {
		t.Fatalf("Skipped = %+v", res.Skipped)
	}
	if len(skipped) != 1 {
		t.Fatalf("OnSkip called %d times", len(skipped))
	}
	if _, ok := tb.Rows[0].V["z"]; ok {
		t.Fatal("skipped stage must not run")
	}
	if tb.Rows[0].V["c"] != 1 {
		t.Fatal("stage after skip did not run")
	}
}

/*
TestChainApply_StrictFails verifies that strict mode aborts with a
*MissingColumnsError that unwraps to ErrMissingColumns.
*/
func TestChainApply_StrictFails(t *testing.T) {
	t.Parallel()

	tb := newTable()
	c := Chain{setStage("needs-z", "z", 1, "z", "a")}
	_, err := c.Apply(tb, Options{Strict: true})
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
	var mc *MissingColumnsError
	if !errors.As(err, &mc) || mc.Stage != "needs-z" || !reflect.DeepEqual(mc.Columns, []string{"z"}) {
		t.Fatalf("err = %#v", err)
	}
}

func TestChainApply_StageError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := Chain{Func{StageName: "bad", Fn: func(*table.Table) error { return boom }}}
	if _, err := c.Apply(newTable(), Options{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
