// Package output provides formatting and report generation for analysis results.
package output

import (
	"time"

	"github.com/espirado/log-insights/pkg/analyzer"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results holds the accumulated per-chunk findings.
	Results *analyzer.Results `json:"results"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// ChunksAnalyzed is the number of chunks sent for analysis.
	ChunksAnalyzed int `json:"chunks_analyzed"`

	// EntriesAnalyzed is the total number of log entries analyzed.
	EntriesAnalyzed int `json:"entries_analyzed"`

	// TotalIssues is the number of analyses on the timeline.
	TotalIssues int `json:"total_issues"`

	// CriticalIssues is the number of Critical-severity analyses.
	CriticalIssues int `json:"critical_issues"`

	// Failures is the number of chunks whose analysis call failed.
	Failures int `json:"failures"`

	// TopContext is the most common system context.
	TopContext string `json:"top_context,omitempty"`

	// TopSeverity is the most common severity.
	TopSeverity string `json:"top_severity,omitempty"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the log files that were analyzed.
	Sources []string `json:"sources,omitempty"`

	// Model is the model identifier used for analysis.
	Model string `json:"model,omitempty"`

	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`

	// ProcessingTime is the time spent inside analysis calls.
	ProcessingTime time.Duration `json:"processing_time"`
}

// NewReport creates a Report from an analysis run.
func NewReport(run *analyzer.RunResult, configFile string) *Report {
	return &Report{
		Results: run.Results,
		Summary: Summary{
			ChunksAnalyzed:  run.Stats.ChunksAnalyzed,
			EntriesAnalyzed: run.Stats.EntriesAnalyzed,
			TotalIssues:     len(run.Results.Timeline),
			CriticalIssues:  run.Results.CriticalCount(),
			Failures:        run.Stats.Failures,
			TopContext:      run.Results.TopContext(),
			TopSeverity:     run.Results.TopSeverity(),
		},
		Metadata: Metadata{
			ConfigFile:     configFile,
			Sources:        run.Metadata.Sources,
			Model:          run.Metadata.Model,
			AnalyzedAt:     run.Metadata.EndTime,
			Duration:       run.Metadata.EndTime.Sub(run.Metadata.StartTime),
			ProcessingTime: run.Stats.ProcessingTime,
		},
	}
}

// HasCritical returns true if any Critical-severity issue was found.
func (r *Report) HasCritical() bool {
	return r.Summary.CriticalIssues > 0
}
