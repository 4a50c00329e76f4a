package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCLI_LogLevel(t *testing.T) {
	tests := []struct {
		name  string
		start log.Level
		set   log.Level
		debug bool
		warn  bool
	}{
		{name: "info hides debug", start: LogInfo, set: LogInfo, warn: true},
		{name: "verbose shows debug", start: LogInfo, set: LogDebug, debug: true, warn: true},
		{name: "explore raises to warn", start: LogDebug, set: LogWarn, warn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, tt.start)
			c.SetLogLevel(tt.set)

			c.Logger.Debug("resumed session")
			c.Logger.Warn("skipped edge", "source", "a")

			out := buf.String()
			if got := strings.Contains(out, "resumed session"); got != tt.debug {
				t.Errorf("debug logged = %v, want %v (output %q)", got, tt.debug, out)
			}
			if got := strings.Contains(out, "source=a"); got != tt.warn {
				t.Errorf("warn logged = %v, want %v (output %q)", got, tt.warn, out)
			}
		})
	}
}
