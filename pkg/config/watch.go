package config

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/graphscape/pkg/errors"
)

// debounce coalesces the bursts of events editors produce for one save.
const debounce = 100 * time.Millisecond

// WatchFiles calls onChange with the path of a watched file after it is
// written or replaced. The parent directories are watched rather than the
// files themselves, so editors that save by renaming a temporary file are
// handled too. Call the returned stop function to clean up.
func WatchFiles(paths []string, logger *log.Logger, onChange func(path string)) (stop func(), err error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", dir)
		}
	}

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	fire := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(debounce)
			return
		}
		timers[path] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			onChange(path)
		})
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				path, _ := filepath.Abs(ev.Name)
				if !watched[path] {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					logger.Debug("file changed", "path", path, "op", ev.Op.String())
					fire(path)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
		})
	}, nil
}
