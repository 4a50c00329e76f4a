package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscape/pkg/session"
)

// snapshots persists per-input session state between CLI invocations.
// A nil store disables persistence.
type snapshots struct {
	store  *session.FileStore
	logger *log.Logger
}

// openSnapshots opens the default snapshot store. Failures are logged and
// leave persistence disabled.
func openSnapshots(logger *log.Logger) *snapshots {
	store, err := session.NewFileStore("")
	if err != nil {
		logger.Warn("session snapshots disabled", "error", err)
		return &snapshots{logger: logger}
	}
	return &snapshots{store: store, logger: logger}
}

// resume creates the session for the graph file at input and restores its
// drags. It returns the collapsed set of the last saved state.
func (s *snapshots) resume(ctx context.Context, input string) (*session.Session, []string) {
	sess := session.New(session.InputID(input), s.logger)
	if s.store == nil {
		return sess, nil
	}
	snap, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		s.logger.Warn("ignoring unreadable snapshot", "input", input, "error", err)
		return sess, nil
	}
	collapsed := session.Restore(sess, snap)
	if snap != nil {
		s.logger.Debug("resumed session", "input", input, "collapsed", len(collapsed), "drags", len(snap.Drags))
	}
	return sess, collapsed
}

// save persists the session's current state.
func (s *snapshots) save(ctx context.Context, sess *session.Session) {
	if s.store == nil || !sess.HasInput() {
		return
	}
	if err := s.store.Set(ctx, sess.Snapshot()); err != nil {
		s.logger.Warn("failed to save session", "error", err)
	}
}
