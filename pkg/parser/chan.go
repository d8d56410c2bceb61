package parser

import (
	"context"
	"io"
)

// ChanSource adapts a channel of raw lines into a LineSource, so the
// coalescer and chunker can run over a live stream (e.g. a tailed file).
// Next blocks until a line arrives, the channel closes, or the context is
// cancelled. Closing the channel ends the stream with io.EOF.
type ChanSource struct {
	ch <-chan LogLine
}

// NewChanSource creates a LineSource backed by the given channel.
func NewChanSource(ch <-chan LogLine) *ChanSource {
	return &ChanSource{ch: ch}
}

// Next returns the next line from the channel.
func (s *ChanSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line, ok := <-s.ch:
		if !ok {
			return nil, io.EOF
		}
		return &line, nil
	}
}

// Close is a no-op; the producer owns the channel.
func (s *ChanSource) Close() error {
	return nil
}
