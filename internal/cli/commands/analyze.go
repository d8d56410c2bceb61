package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/espirado/log-insights/pkg/analyzer"
	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/output"
	"github.com/espirado/log-insights/pkg/parser"
	"github.com/espirado/log-insights/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output     string
	OutputFile string
	ChunkSize  int
	MaxChunks  int
	Verbose    bool
	Quiet      bool
	NoColor    bool
	DryRun     bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <config-file>",
		Short: "Analyze log files with a hosted model",
		Long: `Analyze log files according to the configuration file.

Log entries are grouped into multi-line records, batched into chunks, and
each chunk is sent to the configured model for root-cause analysis. A chunk
whose analysis call fails is reported as failed; the run continues.

Exit codes:
  0 - Analysis completed, no critical issues
  1 - Critical issues detected
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|html)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output-file", "f", "", "Write report to file instead of stdout")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "Override configured chunk size")
	cmd.Flags().IntVar(&opts.MaxChunks, "max-chunks", 0, "Analyze at most N chunks (0 = all)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show remediation and component details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Chunk only, do not call the model")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_critical", "When to fire webhook (on_critical|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
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

	chunks, err := parser.NewFilePipeline(files, extractor, cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	defer chunks.Close()

	if opts.DryRun {
		if opts.Output == "json" {
			return printChunksJSON(ctx, chunks)
		}
		return printChunksText(ctx, chunks, false)
	}

	llm, err := analyzer.NewLLMAnalyzer(&cfg.LLM)
	if err != nil {
		return err
	}

	var runnerOpts []analyzer.RunnerOption
	if opts.MaxChunks > 0 {
		runnerOpts = append(runnerOpts, analyzer.WithMaxChunks(opts.MaxChunks))
	}
	if !opts.Quiet && opts.Output == "text" && opts.OutputFile == "" {
		runnerOpts = append(runnerOpts, analyzer.WithProgress(func(chunk *parser.Chunk, _ *analyzer.Analysis) {
			fmt.Fprintf(os.Stderr, "analyzed chunk %d (%d entries)\n", chunk.Index+1, chunk.Len())
		}))
	}

	result, err := analyzer.NewRunner(llm, runnerOpts...).Run(ctx, chunks, files, cfg.LLM.Model)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, configPath)

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := formatter.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	if opts.OutputFile != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", opts.OutputFile)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, cfg, opts, report)

	if report.HasCritical() {
		ExitCode = 1
	}

	return nil
}

func createFormatter(opts *AnalyzeOptions) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		NoColor: opts.NoColor || opts.OutputFile != "",
	}

	switch opts.Output {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	case "html":
		return output.NewHTMLFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, json or html)", opts.Output)
	}
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to stderr but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !webhook.ShouldFire(wh.Trigger, report) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(os.Stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(os.Stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnCritical
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: webhook.DefaultTimeout,
		})
	}

	return webhooks
}
