package analyzer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/espirado/log-insights/pkg/parser"
)

// Runner drives an analysis run: it pulls chunks from the pipeline one at a
// time and hands each to the chunk analyzer, accumulating results. Chunks
// carry no shared state, so a failed analysis never poisons later chunks.
type Runner struct {
	analyzer ChunkAnalyzer

	maxChunks int
	progress  func(chunk *parser.Chunk, analysis *Analysis)
}

// RunnerOption configures runner behavior.
type RunnerOption func(*Runner)

// WithMaxChunks stops the run after n chunks. Zero means no limit.
func WithMaxChunks(n int) RunnerOption {
	return func(r *Runner) {
		r.maxChunks = n
	}
}

// WithProgress registers a callback invoked after each chunk's analysis.
func WithProgress(fn func(chunk *parser.Chunk, analysis *Analysis)) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a runner over the given chunk analyzer.
func NewRunner(a ChunkAnalyzer, opts ...RunnerOption) *Runner {
	r := &Runner{analyzer: a}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run pulls chunks until the pipeline is exhausted (or the chunk limit is
// reached) and returns the accumulated results. A per-chunk analysis error
// is recorded as a failure with a fallback result; only pipeline errors and
// context cancellation abort the run.
func (r *Runner) Run(ctx context.Context, chunks *parser.Chunker, sources []string, model string) (*RunResult, error) {
	result := &RunResult{
		Results: NewResults(),
		Metadata: Metadata{
			Sources:   sources,
			Model:     model,
			StartTime: time.Now(),
		},
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if r.maxChunks > 0 && result.Stats.ChunksAnalyzed >= r.maxChunks {
			break
		}

		chunk, err := chunks.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading chunk: %w", err)
		}

		start := time.Now()
		analysis, err := r.analyzer.AnalyzeChunk(ctx, chunk)
		result.Stats.ProcessingTime += time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("chunk %d analysis failed: %v", chunk.Index, err)
			result.Stats.Failures++
			analysis = fallbackAnalysis(DetectContext(chunk))
			analysis.ChunkIndex = chunk.Index
		}

		result.Results.Add(analysis)
		result.Stats.ChunksAnalyzed++
		result.Stats.EntriesAnalyzed += chunk.Len()

		if r.progress != nil {
			r.progress(chunk, analysis)
		}
	}

	result.Metadata.EndTime = time.Now()
	return result, nil
}
