package analyzer

import (
	"context"

	"github.com/espirado/log-insights/pkg/parser"
)

// ChunkAnalyzer analyzes one chunk of log entries at a time. The core makes
// no assumption about latency or failure modes beyond passing one chunk per
// call; implementations may block on network I/O.
type ChunkAnalyzer interface {
	// AnalyzeChunk analyzes a single chunk and returns the structured result.
	AnalyzeChunk(ctx context.Context, chunk *parser.Chunk) (*Analysis, error)
}
