package config

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Loader reads a configuration file and watches it for changes.
type Loader struct {
	path   string
	logger *log.Logger

	mu       sync.RWMutex
	current  Config
	onChange []func(Config)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string, logger *log.Logger) (*Loader, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Loader{path: path, logger: logger, current: cfg}, nil
}

// Path returns the watched file.
func (l *Loader) Path() string { return l.path }

// Config returns the latest valid configuration.
func (l *Loader) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked after every successful reload.
func (l *Loader) OnChange(fn func(Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch reloads the configuration whenever the file changes. A file that
// fails to load is logged and the previous configuration is kept.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	return WatchFiles([]string{l.path}, l.logger, func(string) {
		if _, err := l.Reload(); err != nil {
			l.logger.Warn("config reload failed, keeping previous", "path", l.path, "err", err)
		}
	})
}

// Reload forces an immediate re-read of the file.
func (l *Loader) Reload() (Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return Config{}, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()

	l.logger.Info("config reloaded", "path", l.path)
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}
