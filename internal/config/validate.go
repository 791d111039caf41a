package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config using JSON names (e.g.
// "source.encoding"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so paths match the pipeline file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidatePipeline performs static validation of a Pipeline: struct tag rules
// first, then checks that span several fields.
//
// It does not mutate the pipeline. Callers decide whether warnings are fatal;
// HasErrors reports whether anything must block the run.
func ValidatePipeline(p Pipeline) []Issue {
	issues := structIssues(p)
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateOutputs(p)...)
	return issues
}

func structIssues(p Pipeline) []Issue {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
	}
	out := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Issue{
			Severity: SeverityError,
			Path:     fieldPath(fe),
			Message:  formatFieldError(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, rest, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Namespace()
	}
	return rest
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %q)", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "len":
		return fmt.Sprintf("%s must be exactly %s character(s)", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// validateSource checks that the separators can be told apart.
func validateSource(s Source) []Issue {
	var issues []Issue
	if s.Decimal != "" && s.Decimal == s.Thousands {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.thousands",
			Message:  fmt.Sprintf("thousands separator %q equals the decimal separator", s.Thousands),
		})
	}
	if s.Delimiter != "" && s.Delimiter == s.Decimal {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.delimiter",
			Message:  fmt.Sprintf("field delimiter %q equals the decimal separator; numbers would be split", s.Delimiter),
		})
	}
	return issues
}

// validateOutputs warns about runs that produce nothing and about paths
// used twice.
func validateOutputs(p Pipeline) []Issue {
	var issues []Issue
	paths := []struct{ path, name string }{
		{p.Output.CSV, "output.csv"},
		{p.Output.RejectLog, "output.reject_log"},
		{p.Output.SQLite, "output.sqlite"},
		{p.Output.Summary, "output.summary"},
		{p.Report.Text, "report.text"},
		{p.Report.XLSX, "report.xlsx"},
		{p.Metrics.Textfile, "metrics.textfile"},
	}
	seen := map[string]string{}
	configured := false
	for _, e := range paths {
		if strings.TrimSpace(e.path) == "" {
			continue
		}
		configured = true
		if prev, dup := seen[e.path]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     e.name,
				Message:  fmt.Sprintf("path %q is also used by %s", e.path, prev),
			})
			continue
		}
		seen[e.path] = e.name
	}
	if p.Source.Path != "" {
		if prev, dup := seen[p.Source.Path]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     prev,
				Message:  "output would overwrite the source file",
			})
		}
	}
	if !configured {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output",
			Message:  "no outputs configured; the run only reports counts",
		})
	}
	return issues
}
