// Package parser provides the log ingestion pipeline: streaming raw lines,
// extracting timestamps and severity levels, coalescing multi-line entries,
// and batching entries into fixed-size chunks for analysis.
package parser

import (
	"strings"
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelError    Level = "ERROR"
	LevelWarning  Level = "WARNING"
	LevelInfo     Level = "INFO"
	LevelDebug    Level = "DEBUG"
	LevelCritical Level = "CRITICAL"
	LevelUnknown  Level = "UNKNOWN"
)

// LogLine is a single raw line as read from a source, before any parsing.
type LogLine struct {
	// Raw is the original line content, without the trailing newline.
	Raw string

	// Source is the file path (or stream name) this line came from.
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int

	// Offset is the byte offset of the start of this line in the source.
	Offset int64
}

// LogEntry is one semantic log record, possibly spanning multiple raw lines.
// Entries are created by the Coalescer and are not modified afterwards.
type LogEntry struct {
	// Timestamp is the parsed timestamp of the entry's first line.
	// Only meaningful when HasTimestamp is true.
	Timestamp time.Time

	// HasTimestamp reports whether a configured pattern matched the
	// entry's first line and parsed successfully.
	HasTimestamp bool

	// Level is the severity extracted from the first line, or LevelUnknown.
	Level Level

	// Lines holds the constituent raw lines in source order. The first
	// line owns the timestamp; the rest are continuations.
	Lines []LogLine

	// message is the first line with the timestamp and level token
	// stripped, set at creation time by the Coalescer.
	message string
}

// Raw returns the entry's original text: all constituent lines joined by
// newlines, exactly as they appeared in the source.
func (e *LogEntry) Raw() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = l.Raw
	}
	return strings.Join(parts, "\n")
}

// Body returns the entry's message body: the first line with the timestamp
// and level token removed, followed by any continuation lines verbatim.
func (e *LogEntry) Body() string {
	if len(e.Lines) <= 1 {
		return e.message
	}
	parts := make([]string, 0, len(e.Lines))
	parts = append(parts, e.message)
	for _, l := range e.Lines[1:] {
		parts = append(parts, l.Raw)
	}
	return strings.Join(parts, "\n")
}

// Source returns the source of the entry's first line.
func (e *LogEntry) Source() string {
	if len(e.Lines) == 0 {
		return ""
	}
	return e.Lines[0].Source
}

// LineNum returns the line number of the entry's first line.
func (e *LogEntry) LineNum() int {
	if len(e.Lines) == 0 {
		return 0
	}
	return e.Lines[0].LineNum
}

// Chunk is an ordered batch of log entries handed to the analyzer as one
// unit. Every chunk except possibly the last holds exactly the configured
// maximum number of entries.
type Chunk struct {
	// Index is the 0-based sequence number of this chunk.
	Index int

	// Entries holds the entries in source order.
	Entries []*LogEntry
}

// Len returns the number of entries in the chunk.
func (c *Chunk) Len() int {
	return len(c.Entries)
}
