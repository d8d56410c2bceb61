package parser

import (
	"context"
	"io"
)

// Coalescer merges continuation lines into their owning log entry. A line
// with a parsed timestamp starts a new entry; a line without one is appended
// to the currently open entry. The very first line of a source always opens
// an entry, timestamped or not, so no input is silently dropped.
//
// The state machine has two states: no open entry, and entry open. End of
// input flushes the open entry.
type Coalescer struct {
	lines     LineSource
	extractor *Extractor

	open *LogEntry // nil means no open entry
	done bool
}

// NewCoalescer creates an EntrySource that groups lines from the given
// source into semantic entries using the extractor's timestamp patterns.
func NewCoalescer(lines LineSource, extractor *Extractor) *Coalescer {
	return &Coalescer{
		lines:     lines,
		extractor: extractor,
	}
}

// Next returns the next complete log entry in source order.
// Returns io.EOF once the underlying source is exhausted and the final
// entry has been flushed.
func (c *Coalescer) Next(ctx context.Context) (*LogEntry, error) {
	if c.done {
		return nil, io.EOF
	}

	for {
		line, err := c.lines.Next(ctx)
		if err == io.EOF {
			c.done = true
			if c.open != nil {
				entry := c.open
				c.open = nil
				return entry, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		ex := c.extractor.Extract(*line)

		if c.open == nil {
			c.open = newEntry(ex)
			continue
		}

		if ex.HasTimestamp {
			entry := c.open
			c.open = newEntry(ex)
			return entry, nil
		}

		// Continuation line: append to the open entry.
		c.open.Lines = append(c.open.Lines, *line)
	}
}

// Close closes the underlying line source.
func (c *Coalescer) Close() error {
	return c.lines.Close()
}

func newEntry(ex Extracted) *LogEntry {
	return &LogEntry{
		Timestamp:    ex.Timestamp,
		HasTimestamp: ex.HasTimestamp,
		Level:        ex.Level,
		Lines:        []LogLine{ex.Line},
		message:      ex.Remainder,
	}
}
