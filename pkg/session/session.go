// Package session keeps interactive engine sessions.
//
// A [Session] owns one [pipeline.Engine] together with the last graph and
// options it ran, so hosts can re-run after a drag or an expand without the
// caller resending the graph. Sessions live in a [Registry] and expire after
// a period of inactivity.
//
// # Architecture
//
//   - Registry: in-memory sessions keyed by UUID, with idle expiry
//   - Session: an engine plus its last input, serialized by a mutex
//   - Store: persistence for [Snapshot] values (drags and collapsed set)
//   - FileStore: JSON files, used by the CLI to resume explore and watch
//
// # Usage
//
//	reg := session.NewRegistry(session.DefaultTTL, logger)
//	sess := reg.Create()
//	res, err := sess.Run(ctx, doc, opts)
//
//	// later, by ID
//	sess, err = reg.Get(id)
//	sess.Engine().Drags().Set("api", graph.Position{X: 10})
//	res, err = sess.Rerun(ctx)
package session

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/pipeline"
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultSnapshotTTL is how long a persisted snapshot is kept.
	DefaultSnapshotTTL = 30 * 24 * time.Hour
)

// =============================================================================
// Session
// =============================================================================

// Session is one interactive engine and its last input.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	engine *pipeline.Engine

	mu       sync.Mutex
	doc      graph.Document
	opts     pipeline.Options
	hasInput bool

	// expiresAt is guarded by the owning registry.
	expiresAt time.Time
}

func newSession(logger *log.Logger, now time.Time) *Session {
	id := uuid.NewString()
	return &Session{
		ID:        id,
		CreatedAt: now,
		engine:    pipeline.NewEngine(logger.With("session", id)),
	}
}

// New starts a standalone session with the given ID, outside any registry.
// The CLI uses it with [InputID] so persisted state follows the input file.
// A nil logger discards output.
func New(id string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Session{ID: id, CreatedAt: time.Now(), engine: pipeline.NewEngine(logger)}
}

// Engine returns the session's engine.
func (s *Session) Engine() *pipeline.Engine { return s.engine }

// Run executes the engine on doc and remembers the input for [Session.Rerun].
// The input is kept only when the run succeeds.
func (s *Session) Run(ctx context.Context, doc graph.Document, opts pipeline.Options) (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.engine.Run(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	s.doc, s.opts, s.hasInput = doc, opts, true
	return res, nil
}

// Rerun repeats the last successful run, picking up drag changes.
func (s *Session) Rerun(ctx context.Context) (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasInput {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session %s has no graph yet", s.ID)
	}
	return s.engine.Run(ctx, s.doc, s.opts)
}

// Expand removes from the collapsed set every node that hides id, then
// re-runs. It returns the expanded node IDs, nearest first. Expanding a
// visible node re-runs unchanged.
func (s *Session) Expand(ctx context.Context, id string) (*pipeline.Result, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasInput {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "session %s has no graph yet", s.ID)
	}

	path := s.engine.ExpandPath(id)
	opts := s.opts
	opts.Collapsed = slices.DeleteFunc(slices.Clone(s.opts.Collapsed), func(c string) bool {
		return slices.Contains(path, c)
	})
	res, err := s.engine.Run(ctx, s.doc, opts)
	if err != nil {
		return nil, nil, err
	}
	s.opts = opts
	return res, path, nil
}

// HasInput reports whether the session has run successfully at least once.
func (s *Session) HasInput() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasInput
}

// Collapsed returns the collapsed set of the last run.
func (s *Session) Collapsed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.opts.Collapsed)
}

// Snapshot captures the session's drags and collapsed set.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		ID:        s.ID,
		Collapsed: s.Collapsed(),
		Drags:     s.engine.Drags().Snapshot(),
		UpdatedAt: time.Now(),
	}
}

// =============================================================================
// Registry
// =============================================================================

// Registry holds live sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// NewRegistry creates a registry expiring sessions idle for longer than ttl.
// A non-positive ttl uses [DefaultTTL].
func NewRegistry(ttl time.Duration, logger *log.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	s := newSession(r.logger, now)
	s.expiresAt = now.Add(r.ttl)
	r.sessions[s.ID] = s
	r.logger.Debug("session created", "session", s.ID)
	return s
}

// Get returns the session with the given ID and extends its lifetime.
// Unknown and expired sessions yield a SESSION_NOT_FOUND error.
func (r *Registry) Get(id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	now := r.now()
	if now.After(s.expiresAt) {
		delete(r.sessions, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s expired", id)
	}
	s.expiresAt = now.Add(r.ttl)
	return s, nil
}

// Delete removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	delete(r.sessions, id)
	r.logger.Debug("session deleted", "session", id)
	return nil
}

// Len returns the number of live sessions, expired ones included until the
// next cleanup.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup removes expired sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if now.After(s.expiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	if n > 0 {
		r.logger.Debug("expired sessions removed", "count", n)
	}
	return n
}

// StartCleanup runs [Registry.Cleanup] every interval until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Cleanup()
			}
		}
	}()
}
