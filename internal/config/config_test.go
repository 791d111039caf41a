package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// These tests check that pipeline files (configs/pipelines/*.json) decode
// into the intended struct graph and that defaults fill only what is unset.

func TestDecode(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "autokz2019",
	  "source": { "path": "data/autokz2019.csv", "encoding": "windows-1251", "delimiter": ";" },
	  "cleaning": { "strict": true, "country_policy": "unknown", "dedup_policy": "keep-last" },
	  "output": { "csv": "out/clean.csv", "reject_log": "out/rejected.csv", "sqlite": "out/sales.db" },
	  "report": { "text": "out/report.txt", "xlsx": "out/report.xlsx", "top_n": 5 },
	  "metrics": { "textfile": "out/autoclean.prom" }
	}`

	p, err := Decode(strings.NewReader(js))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Job != "autokz2019" || p.Source.Encoding != "windows-1251" || !p.Cleaning.Strict {
		t.Fatalf("decoded = %+v", p)
	}
	if p.Cleaning.CountryPolicy != "unknown" || p.Cleaning.DedupPolicy != "keep-last" {
		t.Fatalf("cleaning = %+v", p.Cleaning)
	}
	if p.Output.SQLite != "out/sales.db" || p.Report.TopN != 5 || p.Metrics.Textfile != "out/autoclean.prom" {
		t.Fatalf("outputs = %+v %+v %+v", p.Output, p.Report, p.Metrics)
	}

	ApplyDefaults(&p)
	if p.Source.Encoding != "windows-1251" || p.Report.TopN != 5 {
		t.Fatal("ApplyDefaults overwrote explicit values")
	}
	if p.Source.Decimal != DefaultDecimal || p.Output.SQLiteTable != DefaultSQLiteTable || p.Report.FocusDealer != DefaultFocusDealer {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestDecode_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"job":"x","sorce":{}}`))
	if err == nil || !strings.Contains(err.Error(), "sorce") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	if err := os.WriteFile(path, []byte(`{"job":"j","source":{"path":"in.csv"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil || p.Source.Path != "in.csv" {
		t.Fatalf("Load = %+v, %v", p, err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRune(t *testing.T) {
	t.Parallel()

	if Rune(";") != ';' || Rune("") != 0 || Rune("\u00a0") != '\u00a0' {
		t.Fatal("Rune returned the wrong rune")
	}
}

func TestShippedPipelines(t *testing.T) {
	t.Parallel()

	paths, err := filepath.Glob(filepath.Join("..", "..", "configs", "pipelines", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no pipeline files")
	}
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		ApplyDefaults(&p)
		if issues := ValidatePipeline(p); len(issues) != 0 {
			t.Fatalf("%s: %v", path, issues)
		}
	}
}
