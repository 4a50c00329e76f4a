// Package cli implements the graphscape command-line interface.
//
// The commands lay out graph documents, render them, keep them up to date
// while they are edited, browse them interactively and serve the engine over
// HTTP. The CLI is built using cobra and logs with charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Compute positions and sizes, write <input>.layout.json
//   - render: Draw the laid-out graph as SVG, PNG, PDF or DOT
//   - watch: Recompute whenever the graph or config file changes
//   - explore: Collapse and expand nodes in a terminal UI
//   - serve: Expose the engine as an HTTP API with Prometheus metrics
//   - cache: Manage the local layout cache
//
// layout, render and explore also accept an http(s) URL in place of a file;
// outputs then go to the working directory.
//
// # Configuration
//
// Every pipeline command accepts --config with a TOML, YAML or JSON file.
// Flags given on the command line override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Skipped
// input records are logged at warn level.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
