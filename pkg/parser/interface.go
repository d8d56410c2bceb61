package parser

import "context"

// LineSource provides an iterator over raw log lines.
// Implementations must be safe for sequential access (not concurrent).
// Sources are not restartable: once exhausted, re-open the underlying input.
type LineSource interface {
	// Next returns the next raw line in source order.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*LogLine, error)

	// Close releases any resources held by the source. Close must be
	// called on every exit path, including early abandonment.
	Close() error
}

// EntrySource provides an iterator over coalesced log entries.
type EntrySource interface {
	// Next returns the next log entry in source order.
	// Returns io.EOF when no more entries are available.
	Next(ctx context.Context) (*LogEntry, error)

	// Close releases any resources held by the source.
	Close() error
}
