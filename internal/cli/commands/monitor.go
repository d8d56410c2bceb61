package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/espirado/log-insights/pkg/analyzer"
	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/dashboard"
	"github.com/espirado/log-insights/pkg/parser"
	"github.com/espirado/log-insights/pkg/tailer"
)

// MonitorOptions holds command-line options for the monitor command.
type MonitorOptions struct {
	Serve     string
	FromStart bool
	ChunkSize int
	NoAnalyze bool
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand() *cobra.Command {
	opts := &MonitorOptions{}

	cmd := &cobra.Command{
		Use:   "monitor <config-file>",
		Short: "Follow log files live and analyze as entries arrive",
		Long: `Tail the configured log files and run the analysis pipeline continuously.
New lines are coalesced into entries; every completed chunk is sent for
analysis and the findings are printed as they arrive.

With --serve, a web dashboard streams entries and analyses over WebSocket.

Runs until interrupted (Ctrl-C).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Serve, "serve", "", "Serve the live dashboard on this address (e.g. :8080)")
	cmd.Flags().BoolVar(&opts.FromStart, "from-start", false, "Read existing file content before tailing")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "Override configured chunk size")
	cmd.Flags().BoolVar(&opts.NoAnalyze, "no-analyze", false, "Stream entries without sending chunks for analysis")

	return cmd
}

func runMonitor(cmd *cobra.Command, args []string, opts *MonitorOptions) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.ChunkSize > 0 {
		cfg.ChunkSize = opts.ChunkSize
	}

	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no log files matched patterns: %v", cfg.LogSources)
	}

	extractor, err := cfg.Extractor()
	if err != nil {
		return fmt.Errorf("building extractor: %w", err)
	}

	var llm analyzer.ChunkAnalyzer
	if !opts.NoAnalyze {
		llm, err = analyzer.NewLLMAnalyzer(&cfg.LLM)
		if err != nil {
			return err
		}
	}

	var tailerOpts []tailer.Option
	if opts.FromStart {
		tailerOpts = append(tailerOpts, tailer.FromStart())
	}
	tl, err := tailer.New(files, tailerOpts...)
	if err != nil {
		return err
	}

	hub := dashboard.NewHub()
	defer hub.Close()

	if opts.Serve != "" {
		srv := dashboard.NewServer(hub, opts.Serve)
		go func() {
			if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "dashboard server: %v\n", err)
			}
		}()
		fmt.Fprintf(os.Stderr, "Dashboard listening on http://localhost%s\n", opts.Serve)
	}

	fmt.Fprintf(os.Stderr, "Monitoring %d file(s), chunk size %d. Ctrl-C to stop.\n",
		len(files), cfg.ChunkSize)

	go tl.Start(ctx)

	err = streamEntries(ctx, cfg.ChunkSize, extractor, llm, tl, hub)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, "Monitoring stopped.")
		printMonitorSummary(os.Stderr, hub.Stats())
		return nil
	}
	return err
}

// printMonitorSummary prints the run totals accumulated by the hub.
func printMonitorSummary(w io.Writer, stats dashboard.Stats) {
	fmt.Fprintf(w, "\nMonitoring Summary\n")
	fmt.Fprintf(w, "  Duration:  %s\n", stats.Uptime)
	fmt.Fprintf(w, "  Entries:   %d\n", stats.Entries)
	fmt.Fprintf(w, "  Analyses:  %d\n", stats.Analyses)
	if len(stats.Levels) == 0 {
		return
	}
	fmt.Fprintf(w, "  Levels:\n")
	known := []string{"CRITICAL", "ERROR", "WARNING", "INFO", "DEBUG", "UNKNOWN"}
	seen := make(map[string]bool, len(known))
	for _, level := range known {
		seen[level] = true
		if n, ok := stats.Levels[level]; ok {
			fmt.Fprintf(w, "    %-9s %d\n", level, n)
		}
	}
	// Custom severity tokens from config land here.
	var rest []string
	for level := range stats.Levels {
		if !seen[level] {
			rest = append(rest, level)
		}
	}
	sort.Strings(rest)
	for _, level := range rest {
		fmt.Fprintf(w, "    %-9s %d\n", level, stats.Levels[level])
	}
}

// streamEntries runs the live pipeline: coalesce tailed lines into entries,
// publish each entry, and analyze every completed chunk in the background.
func streamEntries(ctx context.Context, chunkSize int, extractor *parser.Extractor, llm analyzer.ChunkAnalyzer, tl *tailer.Tailer, hub *dashboard.Hub) error {
	coalescer := parser.NewCoalescer(parser.NewChanSource(tl.Lines()), extractor)

	var (
		wg     sync.WaitGroup
		buf    []*parser.LogEntry
		chunkN int
	)
	defer wg.Wait()

	for {
		entry, err := coalescer.Next(ctx)
		if err != nil {
			return err
		}

		hub.Publish(dashboard.EntryEvent(entry))
		printEntry(entry)

		if llm == nil {
			continue
		}

		buf = append(buf, entry)
		if len(buf) < chunkSize {
			continue
		}

		chunk := &parser.Chunk{Index: chunkN, Entries: buf}
		chunkN++
		buf = nil

		wg.Add(1)
		go func() {
			defer wg.Done()
			analysis, err := llm.AnalyzeChunk(ctx, chunk)
			if err != nil {
				fmt.Fprintf(os.Stderr, "chunk %d analysis failed: %v\n", chunk.Index, err)
				return
			}
			hub.Publish(dashboard.AnalysisEvent(analysis))
			fmt.Fprintf(os.Stderr, "chunk %d [%s/%s]: %s\n",
				chunk.Index, analysis.Severity, analysis.Context, analysis.RootCause)
		}()
	}
}

func printEntry(entry *parser.LogEntry) {
	ts := "-"
	if entry.HasTimestamp {
		ts = entry.Timestamp.Format(time.RFC3339)
	}
	fmt.Printf("%-25s %-8s %s\n", ts, entry.Level, entry.Body())
}
