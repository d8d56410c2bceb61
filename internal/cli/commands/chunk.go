package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/parser"
)

// ChunkOptions holds command-line options for the chunk command.
type ChunkOptions struct {
	Output    string
	ChunkSize int
	Raw       bool
}

// NewChunkCommand creates the chunk command.
func NewChunkCommand() *cobra.Command {
	opts := &ChunkOptions{}

	cmd := &cobra.Command{
		Use:   "chunk <config-file> [log-file...]",
		Short: "Show how logs would be chunked, without analyzing",
		Long: `Run the ingestion pipeline and print the resulting chunks without sending
anything for analysis. Useful for tuning chunk_size and verifying that
multi-line entries (stack traces, continuations) coalesce as expected.

Log files given as extra arguments override the config's log_sources.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunk(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "Override configured chunk size")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print full raw entry text instead of a summary")

	return cmd
}

func runChunk(cmd *cobra.Command, args []string, opts *ChunkOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.ChunkSize > 0 {
		cfg.ChunkSize = opts.ChunkSize
	}

	patterns := cfg.LogSources
	if len(args) > 1 {
		patterns = args[1:]
	}
	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no log files matched patterns: %v", patterns)
	}

	extractor, err := cfg.Extractor()
	if err != nil {
		return fmt.Errorf("building extractor: %w", err)
	}

	chunks, err := parser.NewFilePipeline(files, extractor, cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	defer chunks.Close()

	switch opts.Output {
	case "json":
		return printChunksJSON(ctx, chunks)
	case "text":
		return printChunksText(ctx, chunks, opts.Raw)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func printChunksText(ctx context.Context, chunks *parser.Chunker, raw bool) error {
	total := 0
	for {
		chunk, err := chunks.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		fmt.Printf("=== Chunk %d (%d entries) ===\n", chunk.Index, chunk.Len())
		for _, entry := range chunk.Entries {
			ts := "-"
			if entry.HasTimestamp {
				ts = entry.Timestamp.Format(time.RFC3339)
			}
			if raw {
				fmt.Printf("[%s] %s\n%s\n", entry.Level, ts, entry.Raw())
				continue
			}
			first := entry.Body()
			if i := strings.IndexByte(first, '\n'); i >= 0 {
				first = first[:i] + fmt.Sprintf(" (+%d lines)", len(entry.Lines)-1)
			}
			fmt.Printf("  %-8s %-25s %s\n", entry.Level, ts, first)
		}
		fmt.Println()
		total += chunk.Len()
	}
	fmt.Printf("Total entries: %d\n", total)
	return nil
}

type chunkJSON struct {
	Index   int         `json:"index"`
	Entries []entryJSON `json:"entries"`
}

type entryJSON struct {
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level"`
	Source    string `json:"source"`
	LineNum   int    `json:"line"`
	Body      string `json:"body"`
}

func printChunksJSON(ctx context.Context, chunks *parser.Chunker) error {
	var out []chunkJSON
	for {
		chunk, err := chunks.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		cj := chunkJSON{Index: chunk.Index}
		for _, entry := range chunk.Entries {
			ej := entryJSON{
				Level:   string(entry.Level),
				Source:  entry.Source(),
				LineNum: entry.LineNum(),
				Body:    entry.Body(),
			}
			if entry.HasTimestamp {
				ej.Timestamp = entry.Timestamp.Format(time.RFC3339)
			}
			cj.Entries = append(cj.Entries, ej)
		}
		out = append(out, cj)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
