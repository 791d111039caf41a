// Package config defines the JSON-serializable configuration of a cleaning
// run. Pipeline files live under configs/pipelines/*.json and are decoded
// with the standard library; CLI flags may override individual fields.
//
// Example (trimmed):
//
//	{
//	  "job":      "autokz2019",
//	  "source":   { "path": "data/autokz2019.csv", "encoding": "auto" },
//	  "cleaning": { "country_policy": "fail" },
//	  "output":   { "csv": "out/clean.csv", "reject_log": "out/rejected.csv" },
//	  "report":   { "text": "out/report.txt", "focus_dealer": "Mercur Auto" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultJob           = "autoclean"
	DefaultEncoding      = "auto"
	DefaultDelimiter     = ";"
	DefaultDecimal       = ","
	DefaultThousands     = " "
	DefaultCountryPolicy = "fail"
	DefaultDedupPolicy   = "keep-first"
	DefaultSQLiteTable   = "sales"
	DefaultFocusDealer   = "Mercur Auto"
	DefaultTopN          = 10
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" validate:"required"`

	Source   Source   `json:"source"`
	Cleaning Cleaning `json:"cleaning"`
	Output   Output   `json:"output"`
	Report   Report   `json:"report"`
	Metrics  Metrics  `json:"metrics"`
}

// Source describes the input export and how its text is written.
type Source struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" validate:"required"`

	// Encoding is "utf-8", "windows-1251" or "auto".
	Encoding string `json:"encoding" validate:"omitempty,oneof=utf-8 windows-1251 auto"`

	// Delimiter, Decimal and Thousands are single characters.
	Delimiter string `json:"delimiter" validate:"omitempty,len=1"`
	Decimal   string `json:"decimal" validate:"omitempty,len=1"`
	Thousands string `json:"thousands" validate:"omitempty,len=1"`
}

// Cleaning holds the policy choices of the cleaning stages.
type Cleaning struct {
	// Strict fails the run when a stage's input columns are absent instead
	// of skipping the stage.
	Strict bool `json:"strict"`

	// CountryPolicy decides what an unmapped country does: "fail" aborts
	// the run, "unknown" maps it to UNK.
	CountryPolicy string `json:"country_policy" validate:"omitempty,oneof=fail unknown"`

	// DedupPolicy is "keep-first" or "keep-last".
	DedupPolicy string `json:"dedup_policy" validate:"omitempty,oneof=keep-first keep-last"`
}

// Output lists the files written after cleaning. Empty paths are skipped.
type Output struct {
	CSV         string `json:"csv"`
	RejectLog   string `json:"reject_log"`
	SQLite      string `json:"sqlite"`
	SQLiteTable string `json:"sqlite_table"`
	// Summary receives the JSON run summary.
	Summary string `json:"summary"`
}

// Report configures the descriptive report.
type Report struct {
	Text        string `json:"text"`
	XLSX        string `json:"xlsx"`
	FocusDealer string `json:"focus_dealer"`
	TopN        int    `json:"top_n" validate:"gte=0,lte=100"`
}

// Metrics configures the Prometheus textfile written at the end of a run.
type Metrics struct {
	Textfile string `json:"textfile"`
}

// Decode reads a Pipeline from r. Unknown fields are rejected so that typos
// in pipeline files surface early.
func Decode(r io.Reader) (Pipeline, error) {
	var p Pipeline
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline: %w", err)
	}
	return p, nil
}

// Load reads and decodes the pipeline file at path.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
	}
	p, err := Decode(bytes.NewReader(b))
	if err != nil {
		return Pipeline{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(p *Pipeline) {
	setDefault(&p.Job, DefaultJob)
	setDefault(&p.Source.Encoding, DefaultEncoding)
	setDefault(&p.Source.Delimiter, DefaultDelimiter)
	setDefault(&p.Source.Decimal, DefaultDecimal)
	setDefault(&p.Source.Thousands, DefaultThousands)
	setDefault(&p.Cleaning.CountryPolicy, DefaultCountryPolicy)
	setDefault(&p.Cleaning.DedupPolicy, DefaultDedupPolicy)
	setDefault(&p.Output.SQLiteTable, DefaultSQLiteTable)
	setDefault(&p.Report.FocusDealer, DefaultFocusDealer)
	if p.Report.TopN == 0 {
		p.Report.TopN = DefaultTopN
	}
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// Rune returns the first rune of s, or 0 for an empty string.
func Rune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
