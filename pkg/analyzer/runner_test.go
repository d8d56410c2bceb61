package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/espirado/log-insights/pkg/parser"
)

// stubAnalyzer returns canned analyses, failing on chunk indices in failOn.
type stubAnalyzer struct {
	failOn map[int]bool
	calls  int
}

func (s *stubAnalyzer) AnalyzeChunk(_ context.Context, chunk *parser.Chunk) (*Analysis, error) {
	s.calls++
	if s.failOn[chunk.Index] {
		return nil, errors.New("model unavailable")
	}
	severity := "Low"
	if chunk.Index == 0 {
		severity = SeverityCritical
	}
	return &Analysis{
		Context:    "application",
		Category:   "Network",
		Severity:   severity,
		ChunkIndex: chunk.Index,
	}, nil
}

func testChunker(t *testing.T, entryCount, chunkSize int) *parser.Chunker {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < entryCount; i++ {
		fmt.Fprintf(&sb, "2024-01-01 10:%02d:%02d INFO entry %d\n", i/60, i%60, i)
	}
	pattern, err := parser.NewTimestampPattern("datetime",
		`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`, "2006-01-02 15:04:05")
	if err != nil {
		t.Fatal(err)
	}
	chunker, err := parser.NewStreamPipeline(strings.NewReader(sb.String()), "test",
		parser.NewExtractor([]parser.TimestampPattern{pattern}, nil), chunkSize)
	if err != nil {
		t.Fatal(err)
	}
	return chunker
}

func TestRunner_Run(t *testing.T) {
	chunker := testChunker(t, 25, 10)
	defer chunker.Close()

	stub := &stubAnalyzer{}
	runner := NewRunner(stub)

	result, err := runner.Run(context.Background(), chunker, []string{"test.log"}, "test-model")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.ChunksAnalyzed != 3 {
		t.Errorf("ChunksAnalyzed = %d, want 3", result.Stats.ChunksAnalyzed)
	}
	if result.Stats.EntriesAnalyzed != 25 {
		t.Errorf("EntriesAnalyzed = %d, want 25", result.Stats.EntriesAnalyzed)
	}
	if len(result.Results.Timeline) != 3 {
		t.Errorf("Timeline has %d events, want 3", len(result.Results.Timeline))
	}
	if result.Results.CriticalCount() != 1 {
		t.Errorf("CriticalCount = %d, want 1", result.Results.CriticalCount())
	}
	if result.Metadata.Model != "test-model" {
		t.Errorf("Model = %q", result.Metadata.Model)
	}
	if result.Metadata.EndTime.Before(result.Metadata.StartTime) {
		t.Error("EndTime before StartTime")
	}
}

func TestRunner_FailedChunkRecordsFallback(t *testing.T) {
	chunker := testChunker(t, 20, 10)
	defer chunker.Close()

	stub := &stubAnalyzer{failOn: map[int]bool{1: true}}
	runner := NewRunner(stub)

	result, err := runner.Run(context.Background(), chunker, nil, "test-model")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.Failures != 1 {
		t.Errorf("Failures = %d, want 1", result.Stats.Failures)
	}
	// The failed chunk still lands on the timeline as a fallback record.
	if len(result.Results.Timeline) != 2 {
		t.Fatalf("Timeline has %d events, want 2", len(result.Results.Timeline))
	}
	if result.Results.Timeline[1].RootCause != "Analysis failed" {
		t.Errorf("fallback RootCause = %q", result.Results.Timeline[1].RootCause)
	}
}

func TestRunner_MaxChunks(t *testing.T) {
	chunker := testChunker(t, 50, 10)
	defer chunker.Close()

	stub := &stubAnalyzer{}
	runner := NewRunner(stub, WithMaxChunks(2))

	result, err := runner.Run(context.Background(), chunker, nil, "test-model")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.ChunksAnalyzed != 2 {
		t.Errorf("ChunksAnalyzed = %d, want 2", result.Stats.ChunksAnalyzed)
	}
	if stub.calls != 2 {
		t.Errorf("analyzer called %d times, want 2", stub.calls)
	}
}

func TestRunner_Progress(t *testing.T) {
	chunker := testChunker(t, 15, 10)
	defer chunker.Close()

	var seen []int
	runner := NewRunner(&stubAnalyzer{}, WithProgress(func(chunk *parser.Chunk, _ *Analysis) {
		seen = append(seen, chunk.Index)
	}))

	if _, err := runner.Run(context.Background(), chunker, nil, "m"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Errorf("progress chunk indices = %v, want [0 1]", seen)
	}
}

func TestRunner_EmptyInput(t *testing.T) {
	chunker := testChunker(t, 0, 10)
	defer chunker.Close()

	result, err := NewRunner(&stubAnalyzer{}).Run(context.Background(), chunker, nil, "m")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.ChunksAnalyzed != 0 {
		t.Errorf("ChunksAnalyzed = %d, want 0", result.Stats.ChunksAnalyzed)
	}
}

func TestResults_Accumulation(t *testing.T) {
	r := NewResults()
	r.Add(&Analysis{Context: "database", Severity: "Critical"})
	r.Add(&Analysis{Context: "database", Severity: "High"})
	r.Add(&Analysis{Context: "kubernetes", Severity: "High"})

	if r.Issues["database"] != 2 {
		t.Errorf("Issues[database] = %d, want 2", r.Issues["database"])
	}
	if r.TopContext() != "database" {
		t.Errorf("TopContext = %q", r.TopContext())
	}
	if r.TopSeverity() != "High" {
		t.Errorf("TopSeverity = %q", r.TopSeverity())
	}
	if r.CriticalCount() != 1 {
		t.Errorf("CriticalCount = %d", r.CriticalCount())
	}
}
