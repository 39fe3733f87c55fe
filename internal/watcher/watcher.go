// Package watcher monitors the store directory and triggers a conflict
// rescan when files change, so newly synced conflict variants surface
// without polling.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syncmend/syncmend/internal/store"
)

// debounceInterval batches rapid filesystem events (a sync daemon
// writes temp files and renames) into a single rescan.
const debounceInterval = 500 * time.Millisecond

// Watcher watches the store directory recursively and invokes a rescan
// callback after changes settle.
type Watcher struct {
	st      *store.Store
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	// onChange is invoked after the debounce window when at least one
	// relevant event arrived.
	onChange func(ctx context.Context)
}

// New creates a watcher over the given store. onChange is called from
// the watch loop; it must not block for long.
func New(st *store.Store, logger *slog.Logger, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		st:       st,
		logger:   logger,
		onChange: onChange,
	}
}

// Watch blocks until the context is cancelled, watching the store
// directory tree for changes.
func (w *Watcher) Watch(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	w.watcher = fsWatcher
	defer fsWatcher.Close()

	if err := w.addRecursive(w.st.Dir()); err != nil {
		return fmt.Errorf("watching store dir: %w", err)
	}

	ticker := time.NewTicker(debounceInterval)
	defer ticker.Stop()

	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}

			if w.ignore(event.Name) {
				continue
			}

			// New directories need to be added to the watch set.
			if event.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := w.addRecursive(event.Name); addErr != nil {
						w.logger.Warn("watching new directory",
							slog.String("path", event.Name),
							slog.String("error", addErr.Error()),
						)
					}
				}
			}

			pending = true

		case watchErr, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("watcher error", slog.String("error", watchErr.Error()))

		case <-ticker.C:
			if !pending {
				continue
			}

			pending = false

			w.logger.Debug("store changed, rescanning")
			w.onChange(ctx)
		}
	}
}

// ignore filters events for hidden entries and daemon temp files; they
// never affect conflict grouping.
func (w *Watcher) ignore(absPath string) bool {
	base := filepath.Base(absPath)

	if strings.HasPrefix(base, ".") {
		return true
	}

	return strings.HasPrefix(base, "~syncthing~")
}

// addRecursive adds a directory and all its subdirectories to the
// watch set, skipping hidden directories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		return w.watcher.Add(path)
	})
}
