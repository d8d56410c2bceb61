package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the number of entries per chunk when unconfigured.
const DefaultChunkSize = 10

// ErrInvalidChunkSize is returned when a chunker is created with a
// non-positive size.
var ErrInvalidChunkSize = errors.New("chunk size must be a positive integer")

// Chunker groups consecutive log entries into bounded chunks. It drives the
// whole pipeline: each Next pulls entries one at a time from the upstream
// source, so memory use is bounded by the chunk size, not the input size.
// Chunk indices start at 0 and increment per chunk.
type Chunker struct {
	entries EntrySource
	size    int
	index   int
	done    bool
}

// NewChunker creates a Chunker producing chunks of at most size entries.
func NewChunker(entries EntrySource, size int) (*Chunker, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidChunkSize, size)
	}
	return &Chunker{
		entries: entries,
		size:    size,
	}, nil
}

// Next returns the next chunk. Every chunk except possibly the last holds
// exactly the configured size; the last holds between 1 and size entries.
// Returns io.EOF when the input is exhausted; an empty input yields zero
// chunks, not an error.
func (c *Chunker) Next(ctx context.Context) (*Chunk, error) {
	if c.done {
		return nil, io.EOF
	}

	chunk := &Chunk{
		Index:   c.index,
		Entries: make([]*LogEntry, 0, c.size),
	}

	for len(chunk.Entries) < c.size {
		entry, err := c.entries.Next(ctx)
		if err == io.EOF {
			c.done = true
			break
		}
		if err != nil {
			return nil, err
		}
		chunk.Entries = append(chunk.Entries, entry)
	}

	if len(chunk.Entries) == 0 {
		return nil, io.EOF
	}

	c.index++
	return chunk, nil
}

// Close closes the upstream entry source.
func (c *Chunker) Close() error {
	return c.entries.Close()
}
