package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
)

// Snapshot is the persistent part of a session: what the user changed by
// hand.
type Snapshot struct {
	ID        string                    `json:"id"`
	Collapsed []string                  `json:"collapsed,omitempty"`
	Drags     map[string]graph.Position `json:"drags,omitempty"`
	UpdatedAt time.Time                 `json:"updated_at"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

// IsExpired returns true if the snapshot has expired.
func (s *Snapshot) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// InputID returns the snapshot ID for a graph file. The same path always
// maps to the same ID.
func InputID(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}

// Store persists snapshots.
type Store interface {
	// Get retrieves a snapshot by ID.
	// Returns nil, nil if it doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Set stores a snapshot.
	Set(ctx context.Context, snap *Snapshot) error

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired snapshots.
	Cleanup(ctx context.Context) error
}

// FileStore is a file-based snapshot store for CLI applications.
// Snapshots are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	ttl     time.Duration
}

// NewFileStore creates a new file-based snapshot store.
// If baseDir is empty, defaults to ~/.config/graphscape/sessions/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "graphscape", "sessions")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create session dir")
	}
	return &FileStore{baseDir: baseDir, ttl: DefaultSnapshotTTL}, nil
}

func (s *FileStore) snapshotPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.snapshotPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read session file")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse session")
	}
	if snap.IsExpired() {
		os.Remove(path)
		return nil, nil
	}
	return &snap, nil
}

// Set stores snap, refreshing its expiry.
func (s *FileStore) Set(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateSessionID(snap.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	snap.UpdatedAt = now
	snap.ExpiresAt = now.Add(s.ttl)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal session")
	}
	if err := os.WriteFile(s.snapshotPath(snap.ID), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write session file")
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateSessionID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove session file")
	}
	return nil
}

func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read session dir")
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		if snap.IsExpired() {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

// Restore applies a snapshot's drags to sess and returns its collapsed set.
// A nil snapshot restores nothing.
func Restore(sess *Session, snap *Snapshot) []string {
	if snap == nil {
		return nil
	}
	for id, p := range snap.Drags {
		sess.Engine().Drags().Set(id, p)
	}
	return snap.Collapsed
}
