package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/espirado/log-insights/pkg/analyzer"
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("196")).Bold(true)
	styleHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleMedium   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleLow      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

// TextFormatter formats reports as human-readable, severity-colored text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "loginsight: %d chunks analyzed, %d issues, %d critical\n",
		report.Summary.ChunksAnalyzed,
		report.Summary.TotalIssues,
		report.Summary.CriticalIssues)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, f.style(styleHeader, "=== Log Insight Analysis Report ==="))
	fmt.Fprintln(w)

	f.formatCounts(w, "Severities", report.Results.Severities, true)
	f.formatCounts(w, "Contexts", report.Results.Issues, false)

	if len(report.Results.Timeline) > 0 {
		fmt.Fprintln(w, f.style(styleHeader, "Timeline"))
		for i := range report.Results.Timeline {
			f.formatEvent(w, &report.Results.Timeline[i])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d chunks (%d entries) analyzed, %d issues, %d critical\n",
		report.Summary.ChunksAnalyzed,
		report.Summary.EntriesAnalyzed,
		report.Summary.TotalIssues,
		report.Summary.CriticalIssues)

	if report.Summary.Failures > 0 {
		fmt.Fprintf(w, "Failed chunks: %d\n", report.Summary.Failures)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Model: %s\n", report.Metadata.Model)
		fmt.Fprintf(w, "Duration: %s (analysis: %s)\n",
			report.Metadata.Duration.Round(1e6),
			report.Metadata.ProcessingTime.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatCounts(w io.Writer, title string, counts map[string]int, severity bool) {
	if len(counts) == 0 {
		return
	}

	fmt.Fprintln(w, f.style(styleHeader, title))

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		label := k
		if severity {
			label = f.style(severityStyle(k), k)
		}
		fmt.Fprintf(w, "  %-30s %d\n", label, counts[k])
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatEvent(w io.Writer, ev *analyzer.TimelineEvent) {
	tag := f.style(severityStyle(ev.Severity), "["+ev.Severity+"]")
	fmt.Fprintf(w, "  %s %s/%s: %s\n", tag, ev.Context, ev.Category, ev.RootCause)

	if f.opts.Verbose {
		if ev.Component != "" {
			fmt.Fprintf(w, "    %s\n", f.style(styleDim, "Component: "+ev.Component))
		}
		if ev.Remediation != "" {
			fmt.Fprintf(w, "    %s\n", f.style(styleDim, "Remediation: "+ev.Remediation))
		}
		fmt.Fprintf(w, "    %s\n", f.style(styleDim,
			fmt.Sprintf("Chunk: %d  Timestamp: %s", ev.ChunkIndex, ev.Timestamp)))
	}
}

func (f *TextFormatter) style(s lipgloss.Style, text string) string {
	if f.opts.NoColor {
		return text
	}
	return s.Render(text)
}

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "Critical":
		return styleCritical
	case "High":
		return styleHigh
	case "Medium":
		return styleMedium
	default:
		return styleLow
	}
}
