package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter renders the full report as indented JSON, suitable for
// piping into jq or archiving alongside the analyzed logs.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// quietReport is the trimmed shape emitted in quiet mode: aggregate
// counts plus run metadata, no per-chunk findings.
type quietReport struct {
	Summary  Summary  `json:"summary"`
	Metadata Metadata `json:"metadata"`
}

// Format writes the report to w. Quiet mode drops the per-chunk results
// and keeps only the summary counts and metadata.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if f.opts.Quiet {
		return enc.Encode(quietReport{Summary: report.Summary, Metadata: report.Metadata})
	}

	return enc.Encode(report)
}
