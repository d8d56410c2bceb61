// Package cli provides the command-line interface for Log Insights.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/espirado/log-insights/internal/cli/commands"
	"github.com/espirado/log-insights/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		// Skip flags (start with -)
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					return plugins.Execute(pluginPath, os.Args[2:])
				}
				// Plugin not found - fall through to Cobra which will show error
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		// Check if this was an unknown command that could be a plugin
		if len(os.Args) > 1 {
			potentialCommand := os.Args[1]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
					return 2
				}
			}
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loginsight",
		Short: "Analyze log files with LLM-backed insights",
		Long: `Log Insights reads log files, groups multi-line entries, batches them into
chunks, and sends each chunk to a hosted model for root-cause analysis.

Typical workflow:
  1. loginsight detect app.log          Identify the timestamp format
  2. loginsight validate config.yaml    Check the configuration
  3. loginsight analyze config.yaml     Run the analysis
  4. loginsight monitor config.yaml     Follow live logs with a web dashboard

PLUGINS:
  Log Insights supports plugins for extended functionality. Plugins are
  standalone binaries named loginsight-<command> that are automatically
  discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the loginsight binary
    2. ~/.loginsight/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewChunkCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewMonitorCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
