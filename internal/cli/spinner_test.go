package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinner_QuickStopDrawsNothing(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Computing...")
	s.Start()
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing for a stop before the delay", buf.String())
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop, want false")
	}
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Computing...")
	s.Start()
	time.Sleep(spinnerDelay + 2*spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Computing...") {
		t.Errorf("output = %q, want the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output = %q, want a cleared line at the end", out)
	}
}

func TestSpinner_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := newSpinnerTo(ctx, &buf, "Computing...")
	s.Start()

	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after parent cancellation, want true")
	}
	s.Stop()
	s.Stop()
}
