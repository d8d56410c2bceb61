package output

import (
	"context"
	"io"
)

// Formatter renders analysis reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, html).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including remediation advice.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// NoColor disables terminal styling in the text formatter.
	NoColor bool
}
