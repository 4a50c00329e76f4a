package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// spinnerDelay hides the spinner for runs that finish quickly, such as
	// cached layouts.
	spinnerDelay = 150 * time.Millisecond

	spinnerInterval = 80 * time.Millisecond
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a progress indicator for one blocking operation. It stops on
// its own when the parent context is cancelled.
type Spinner struct {
	message string
	out     io.Writer

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu        sync.Mutex
	drawn     bool
	cancelled bool
	once      sync.Once
}

// newSpinnerWithContext creates a spinner writing to stderr.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     w,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation after a short delay.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)

		select {
		case <-s.ctx.Done():
			s.finish()
			return
		case <-time.After(spinnerDelay):
		}

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
			s.drawn = true
			s.mu.Unlock()

			select {
			case <-s.ctx.Done():
				s.finish()
				return
			case <-ticker.C:
			}
		}
	}()
}

// finish records whether the parent context ended the spinner and clears
// the line if anything was drawn.
func (s *Spinner) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = s.parent.Err() != nil
	if s.drawn {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	}
}

// Stop stops the spinner and clears the line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context ended the spinner.
func (s *Spinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
