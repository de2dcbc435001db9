package errors

import (
	"fmt"
)

// Category classifies a diagnostic.
type Category string

const (
	CategoryPattern  Category = "pattern"
	CategoryTable    Category = "table"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategoryInternal Category = "internal"
)

// Severity ranks a diagnostic. Warnings do not fail a route manifest
// check; errors do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a structured error with a code, an optional offending
// pattern, and fix guidance.
type Diagnostic struct {
	// Code is a unique identifier (e.g., "R001").
	Code string

	// Category is the diagnostic type (pattern, table, config, cli).
	Category Category

	// Severity defaults to SeverityError.
	Severity Severity

	// Message is a short description of the problem.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Pattern is the offending route pattern, if any.
	Pattern string

	// Column points into Pattern (1-based); 0 means no caret.
	Column int

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Example is a pattern or snippet showing the correct form.
	Example string

	// DocURL links to documentation about this diagnostic.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Code != "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return d.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (d *Diagnostic) Unwrap() error {
	return d.Wrapped
}

// WithPattern attaches the offending pattern. Column is 1-based into
// the pattern; pass 0 for no caret.
func (d *Diagnostic) WithPattern(pattern string, column int) *Diagnostic {
	d.Pattern = pattern
	d.Column = column
	return d
}

// WithSuggestion adds a fix suggestion.
func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestion = s
	return d
}

// WithExample adds an example showing the correct form.
func (d *Diagnostic) WithExample(ex string) *Diagnostic {
	d.Example = ex
	return d
}

// WithDetail overrides the registered detail text.
func (d *Diagnostic) WithDetail(detail string) *Diagnostic {
	d.Detail = detail
	return d
}

// AsWarning downgrades the diagnostic so manifest checks report it
// without failing.
func (d *Diagnostic) AsWarning() *Diagnostic {
	d.Severity = SeverityWarning
	return d
}

// Wrap records the underlying error.
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.Wrapped = err
	return d
}

// New creates a Diagnostic from a registered code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:     code,
			Category: CategoryInternal,
			Severity: SeverityError,
			Message:  "Unknown diagnostic",
		}
	}
	return &Diagnostic{
		Code:     code,
		Category: template.Category,
		Severity: template.Severity,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded Diagnostic with a formatted message.
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under a registered code.
func FromError(err error, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	return New(code).Wrap(err)
}
