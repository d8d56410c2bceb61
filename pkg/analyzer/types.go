// Package analyzer sends log chunks to a hosted model for analysis and
// accumulates the results.
package analyzer

import (
	"time"
)

// Analysis is the structured result of analyzing one chunk.
type Analysis struct {
	// Context is the primary system context the logs came from
	// (e.g. kubernetes, database, infrastructure, application).
	Context string `json:"context"`

	// Category is the specific issue category (CPU/Memory/Network/Storage/Security).
	Category string `json:"category"`

	// Severity is the model's severity judgement (Critical/High/Medium/Low).
	Severity string `json:"severity"`

	// Component is the specific component affected.
	Component string `json:"component"`

	// RootCause is the technical explanation of the issue.
	RootCause string `json:"root_cause"`

	// Remediation is the suggested action to resolve the issue.
	Remediation string `json:"remediation"`

	// Timestamp is the timestamp of the most relevant log, as reported
	// by the model (free-form text, not re-parsed).
	Timestamp string `json:"timestamp"`

	// ChunkIndex is the sequence index of the analyzed chunk.
	ChunkIndex int `json:"chunk_index"`
}

// SeverityCritical is the severity value that marks an analysis as urgent.
const SeverityCritical = "Critical"

// TimelineEvent is one analysis placed on the run's timeline.
type TimelineEvent struct {
	Timestamp   string `json:"timestamp"`
	Context     string `json:"context"`
	Category    string `json:"category"`
	Component   string `json:"component"`
	Severity    string `json:"severity"`
	RootCause   string `json:"root_cause"`
	Remediation string `json:"remediation"`
	ChunkIndex  int    `json:"chunk_index"`
}

// Results accumulates analysis findings across all chunks of a run.
type Results struct {
	// Issues counts analyses per detected context.
	Issues map[string]int `json:"issues"`

	// Severities counts analyses per severity.
	Severities map[string]int `json:"severities"`

	// Timeline holds every analysis in chunk order.
	Timeline []TimelineEvent `json:"timeline"`
}

// NewResults creates an empty accumulator.
func NewResults() *Results {
	return &Results{
		Issues:     make(map[string]int),
		Severities: make(map[string]int),
	}
}

// Add records one analysis.
func (r *Results) Add(a *Analysis) {
	r.Issues[a.Context]++
	r.Severities[a.Severity]++
	r.Timeline = append(r.Timeline, TimelineEvent{
		Timestamp:   a.Timestamp,
		Context:     a.Context,
		Category:    a.Category,
		Component:   a.Component,
		Severity:    a.Severity,
		RootCause:   a.RootCause,
		Remediation: a.Remediation,
		ChunkIndex:  a.ChunkIndex,
	})
}

// CriticalCount returns the number of Critical-severity analyses.
func (r *Results) CriticalCount() int {
	return r.Severities[SeverityCritical]
}

// TopContext returns the context with the most analyses, or "" when empty.
func (r *Results) TopContext() string {
	return maxKey(r.Issues)
}

// TopSeverity returns the most common severity, or "" when empty.
func (r *Results) TopSeverity() string {
	return maxKey(r.Severities)
}

func maxKey(m map[string]int) string {
	best := ""
	bestN := -1
	for k, n := range m {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// Stats contains execution statistics for a run.
type Stats struct {
	// ChunksAnalyzed is the number of chunks sent for analysis.
	ChunksAnalyzed int `json:"chunks_analyzed"`

	// EntriesAnalyzed is the total number of log entries across all chunks.
	EntriesAnalyzed int `json:"entries_analyzed"`

	// Failures is the number of chunks whose analysis call failed.
	Failures int `json:"failures"`

	// ProcessingTime is the total wall time spent in analysis calls.
	ProcessingTime time.Duration `json:"processing_time"`
}

// Metadata provides context about a run.
type Metadata struct {
	// Sources lists the log files that were analyzed.
	Sources []string `json:"sources"`

	// Model is the model identifier used.
	Model string `json:"model"`

	// StartTime is when the run began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run completed.
	EndTime time.Time `json:"end_time"`
}

// RunResult is the complete output of an analysis run.
type RunResult struct {
	Results  *Results `json:"results"`
	Stats    Stats    `json:"stats"`
	Metadata Metadata `json:"metadata"`
}
