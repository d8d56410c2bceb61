// Log Insights - LLM-backed log analysis.
//
// Log Insights reads log files, coalesces multi-line entries, batches them
// into chunks, and sends each chunk to a hosted model for root-cause
// analysis, with text, JSON and HTML dashboard reports.
package main

import (
	"os"

	"github.com/espirado/log-insights/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
