package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a Log Insights configuration file without running analysis.

Checks:
  - YAML syntax
  - Required fields
  - Timestamp pattern validity (regex compiles, has a capture group)
  - Chunk size bounds
  - Webhook trigger values
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Log sources:       %d pattern(s)\n", len(cfg.LogSources))
	fmt.Printf("  Chunk size:        %d\n", cfg.ChunkSize)
	fmt.Printf("  Timestamp formats: %d\n", len(cfg.TimestampFormats))
	fmt.Printf("  Model:             %s\n", cfg.LLM.Model)
	if len(cfg.Webhooks) > 0 {
		fmt.Printf("  Webhooks:          %d\n", len(cfg.Webhooks))
	}

	fmt.Printf("\nTimestamp formats (tried in order, first match wins):\n")
	for i, f := range cfg.TimestampFormats {
		fmt.Printf("  %d. %s\n", i+1, f.Name)
	}

	if cfg.LLM.APIKey() == "" {
		fmt.Printf("\nWarning: %s is not set; 'analyze' will fail without an API key\n", cfg.LLM.APIKeyEnv)
	}

	// Check if log sources exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		fmt.Printf("\nWarning: Error expanding log source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Printf("\nWarning: No files match log source patterns\n")
	} else {
		fmt.Printf("\nLog files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Printf("  - %s\n", f)
		}
	}

	return nil
}
