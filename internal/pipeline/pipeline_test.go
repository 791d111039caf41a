package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"autosales/internal/cleaning"
	pcsv "autosales/internal/parser/csv"
	"autosales/internal/schema"
	"autosales/internal/table"
	"autosales/internal/transformer"
	"autosales/internal/transformer/builtin"
)

type stringSource string

func (s stringSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(string(s))), nil
}

func header(extra ...string) string {
	h := make([]string, 0, len(schema.SourceHeaders)+len(extra))
	for _, sh := range schema.SourceHeaders {
		h = append(h, sh.Source)
	}
	return strings.Join(append(h, extra...), ";")
}

func csvParser() *pcsv.Parser {
	return pcsv.NewParser(pcsv.Options{HasHeader: true, Comma: ';'})
}

// Lines 2..7 of the sample export: a return, an empty row, a duplicate of
// line 2 that differs only in a dropped column, a row without an area, a row
// that needs every repair, and a row with the wrong width.
var sample = header("Тип клиента") + "\n" +
	"2019;Февраль;Mercur Auto;Kia;Rio;2018;Бензин;1,6;АКП;Передний;Легковые;Алматы;г.Алматы;-2;1000;-500;B;Корея;Физ\n" +
	";;;;;;;;;;;;;;;;;;\n" +
	"2019;Февраль;Mercur Auto;Kia;Rio;2018;Бензин;1,6;АКП;Передний;Легковые;Алматы;г.Алматы;-2;1000;-500;B;Корея;Юр\n" +
	"2019;Март;Astana Motors;Toyota;Camry;2019;Бензин;2,5;AT;4WD;Легковые;Алматы;;1;30000;30000;D;Япония;Физ\n" +
	"2019;Апрель;меркур авто;Kia;Sportage;20x17;дизель;#Н/Д;МКП;полный;Внедорожники;Нур-Султан;г.Нур-Султан;12;20 000;240 000;J;Российская Федерация;Юр\n" +
	"2019;Май\n"

/*
TestRun_EndToEnd cleans the sample export and checks the row accounting, the
return row (quantity sign kept, negative sale clamped to zero), the row that
needed every repair, and the rejected-row callback.
*/
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	var rejected []builtin.RejectedRow
	tb, sum, err := Run(context.Background(), stringSource(sample), csvParser(), Options{
		Job:    "test",
		Reject: func(r builtin.RejectedRow) { rejected = append(rejected, r) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.SkippedMalformed != 1 || sum.Read != 5 || sum.Empty != 1 || sum.Duplicates != 1 || sum.Incomplete != 1 || sum.Written != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if !sum.Balanced() {
		t.Fatal("row accounting does not balance")
	}
	if len(sum.Skipped) != 0 {
		t.Fatalf("unexpected skipped stages: %+v", sum.Skipped)
	}
	if !reflect.DeepEqual(sum.DroppedColumns, []string{"Тип клиента"}) {
		t.Fatalf("dropped columns = %v", sum.DroppedColumns)
	}

	var stages, reasons []string
	for _, r := range rejected {
		stages = append(stages, r.Stage)
		reasons = append(reasons, r.Reason)
	}
	if !reflect.DeepEqual(stages, []string{"drop-empty", "dedup", "require"}) {
		t.Fatalf("rejected stages = %v (%v)", stages, reasons)
	}
	if rejected[1].Line != 4 || rejected[1].Reason != "duplicate of line 2" {
		t.Fatalf("dedup reject = %+v", rejected[1])
	}
	if rejected[2].Line != 5 {
		t.Fatalf("require reject line = %d, want 5", rejected[2].Line)
	}

	for _, c := range []string{schema.Year, schema.Month, "Тип клиента"} {
		if tb.Has(c) {
			t.Fatalf("column %q should have been dropped", c)
		}
	}

	ret := tb.Rows[0].V
	want := map[string]any{
		schema.Quantity:        int64(-2),
		schema.PriceUSD:        1000.0,
		schema.SaleUSD:         0.0,
		schema.CountryOfOrigin: "KOR",
		schema.FuelType:        "F",
		schema.DriveType:       "FWD",
		schema.TransmissionBox: cleaning.Automatic,
		schema.DealerName:      "Mercur Auto",
		schema.Area:            "Алматинская Область",
		schema.Region:          "Алматы",
		schema.EngineVolume:    1.6,
		schema.YearOfRelease:   int64(2018),
	}
	for k, v := range want {
		if ret[k] != v {
			t.Errorf("return row %s = %#v, want %#v", k, ret[k], v)
		}
	}
	if d, ok := ret[schema.SaleDate].(time.Time); !ok || d.Format(schema.DateLayout) != "2019-02-28" {
		t.Errorf("return row sale_date = %v", ret[schema.SaleDate])
	}

	rep := tb.Rows[1].V
	want = map[string]any{
		schema.DealerName:      "Mercur Auto",
		schema.YearOfRelease:   int64(2017),
		schema.FuelType:        "D",
		schema.DriveType:       "AWD",
		schema.TransmissionBox: cleaning.Manual,
		schema.EngineVolume:    1.6,
		schema.Area:            "Акмолинская Область",
		schema.Quantity:        int64(12),
		schema.PriceUSD:        20000.0,
		schema.SaleUSD:         240000.0,
		schema.CountryOfOrigin: "RUS",
	}
	for k, v := range want {
		if rep[k] != v {
			t.Errorf("repaired row %s = %#v, want %#v", k, rep[k], v)
		}
	}

	st := sum.Stats
	if st.Returns != 1 || st.Bulk != 1 || st.SaleClamped != 1 || st.Discrepancies != 1 || st.EngineFilled != 1 || st.DealersChanged != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if c := tb.Categories[schema.FuelType]; c == nil || c.Counts["D"] != 1 {
		t.Fatalf("fuel category = %+v", c)
	}
}

func TestRun_UnmappedCountryFails(t *testing.T) {
	t.Parallel()

	in := header() + "\n" +
		"2019;Май;X;Kia;Rio;2018;Бензин;1,6;АКП;Передний;Легковые;Алматы;г.Алматы;1;1;1;B;Марс\n"

	_, _, err := Run(context.Background(), stringSource(in), csvParser(), Options{})
	var uv *cleaning.UnmappedValueError
	if !errors.As(err, &uv) || uv.Value != "Марс" || uv.Line != 2 {
		t.Fatalf("err = %v, want unmapped country on line 2", err)
	}

	tb, sum, err := Run(context.Background(), stringSource(in), csvParser(), Options{CountryPolicy: cleaning.CountryUnknown})
	if err != nil {
		t.Fatalf("unknown policy: %v", err)
	}
	if tb.Rows[0].V[schema.CountryOfOrigin] != cleaning.Unknown || sum.Stats.CountryUnmapped != 1 {
		t.Fatalf("country = %v, stats = %+v", tb.Rows[0].V[schema.CountryOfOrigin], sum.Stats)
	}
}

/*
TestClean_MissingColumns drops the engine volume column from the input. The
lenient run skips the stages that need it and says so in the summary; the
strict run fails naming the first such stage.
*/
func TestClean_MissingColumns(t *testing.T) {
	t.Parallel()

	parse := func() *table.Table {
		in := header() + "\n" +
			"2019;Май;X;Kia;Rio;2018;Бензин;1,6;АКП;Передний;Легковые;Алматы;г.Алматы;1;1;1;B;Корея\n"
		tb, _, err := csvParser().Parse(strings.NewReader(in))
		if err != nil {
			t.Fatal(err)
		}
		tb.DropColumns("Объём двиг, л,")
		return tb
	}

	sum, err := New(Options{}).Clean(parse())
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	var skipped []string
	for _, c := range sum.Skipped {
		skipped = append(skipped, c.Stage)
	}
	if !reflect.DeepEqual(skipped, []string{"engine-volume", "require"}) {
		t.Fatalf("skipped = %v", skipped)
	}
	if sum.Written != 1 || !sum.Balanced() {
		t.Fatalf("summary = %+v", sum)
	}

	_, err = New(Options{Strict: true}).Clean(parse())
	var me *transformer.MissingColumnsError
	if !errors.As(err, &me) || me.Stage != "engine-volume" || !errors.Is(err, transformer.ErrMissingColumns) {
		t.Fatalf("strict err = %v", err)
	}
	if !reflect.DeepEqual(me.Columns, []string{schema.EngineVolume}) {
		t.Fatalf("missing columns = %v", me.Columns)
	}
}

/*
TestClean_PartialSchema cleans an export without model and region columns.
The engine volume and location stages still own their columns: volumes are
parsed, corrected and median-filled by brand, and areas are corrected, so no
raw text reaches the output.
*/
func TestClean_PartialSchema(t *testing.T) {
	t.Parallel()

	var cols []string
	for _, sh := range schema.SourceHeaders {
		switch sh.Canonical {
		case schema.Year, schema.Month, schema.Brand, schema.YearOfRelease, schema.EngineVolume, schema.Area:
			cols = append(cols, sh.Source)
		}
	}
	in := strings.Join(cols, ";") + "\n" +
		"2019;Май;Kia;2018;1598;г.Алматы\n" +
		"2019;Май;Kia;2017;AT 2.0;г.Алматы\n" +
		"2019;Июнь;Kia;2018;1,6;Алматинская область\n" +
		"2019;Июнь;Lada;2018;75;Костанайская область\n"
	tb, _, err := csvParser().Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}

	sum, err := New(Options{}).Clean(tb)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range sum.Skipped {
		if c.Stage == "engine-volume" || c.Stage == "location" {
			t.Fatalf("stage %s skipped: %+v", c.Stage, c)
		}
	}
	if sum.Written != 4 || sum.Incomplete != 0 || sum.Stats.EngineFilled != 2 {
		t.Fatalf("summary = %+v", sum)
	}

	want := []float64{1.6, 1.6, 1.6, 7.5}
	for i, r := range tb.Rows {
		v, ok := r.V[schema.EngineVolume].(float64)
		if !ok || v != want[i] {
			t.Errorf("line %d: engine_volume = %#v, want %v", r.Line, r.V[schema.EngineVolume], want[i])
		}
		if _, ok := r.V[schema.Region]; ok {
			t.Errorf("line %d: region was added to a table without it", r.Line)
		}
	}
	if got := tb.Rows[0].V[schema.Area]; got != "Алматинская Область" {
		t.Fatalf("area = %v", got)
	}
}

/*
TestRun_DuplicatesAreExact keeps rows that differ only in edge whitespace or
Unicode composition: duplicates are matched on raw cells, before the text is
normalized.
*/
func TestRun_DuplicatesAreExact(t *testing.T) {
	t.Parallel()

	row := "2019;Май;%s;Kia;Rio;2018;Бензин;1,6;АКП;Передний;Легковые;Алматы;г.Алматы;1;1;1;B;Корея\n"
	in := header() + "\n" +
		fmt.Sprintf(row, "Astana Motors") +
		fmt.Sprintf(row, " Astana Motors ") +
		fmt.Sprintf(row, "Astana Motors")
	tb, sum, err := Run(context.Background(), stringSource(in), csvParser(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Read != 3 || sum.Duplicates != 1 || sum.Written != 2 || !sum.Balanced() {
		t.Fatalf("summary = %+v", sum)
	}
	if tb.Rows[0].Line != 2 || tb.Rows[1].Line != 3 {
		t.Fatalf("kept lines %d, %d; want 2, 3", tb.Rows[0].Line, tb.Rows[1].Line)
	}
	if tb.Rows[0].V[schema.DealerName] != tb.Rows[1].V[schema.DealerName] {
		t.Fatalf("dealer names not normalized: %q vs %q", tb.Rows[0].V[schema.DealerName], tb.Rows[1].V[schema.DealerName])
	}
}

func TestStagesOrder(t *testing.T) {
	t.Parallel()

	var names []string
	for _, s := range New(Options{}).Stages() {
		names = append(names, s.Name())
	}
	want := []string{
		"drop-irrelevant", "rename", "drop-empty", "dedup", "normalize",
		"country", "fuel", "drive", "quantity", "money:price_USD", "money:sale_USD", "audit",
		"sale-date", "drop-year-month", "dealer", "engine-volume", "location", "transmission",
		"categorical:fuel_type", "categorical:transmission_box", "categorical:drive_type",
		"categorical:segment_2013", "categorical:class_2013",
		"year-of-release", "round-money", "require",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("stages =\n%v\nwant\n%v", names, want)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Run(ctx, stringSource(sample), csvParser(), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
