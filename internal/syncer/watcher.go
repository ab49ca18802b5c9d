package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/docstore"
	"github.com/fsnotify/fsnotify"
)

// watcherTick is how often the watcher checks whether the tree has been
// quiet long enough to report a change.
const watcherTick = 100 * time.Millisecond

// Watcher reports filesystem changes under a set of directories. Bursts
// of events are collapsed: one signal is sent once no event has arrived
// for the debounce period.
type Watcher struct {
	logger   *slog.Logger
	debounce time.Duration
	changes  chan struct{}
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a Watcher with the given quiet period.
func NewWatcher(logger *slog.Logger, debounce time.Duration) *Watcher {
	return &Watcher{
		logger:   logger,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}
}

// Changes delivers one value per settled burst of changes. Signals that
// arrive while a previous one is unread are merged.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Watch watches dirs recursively until ctx is cancelled. Directories
// that do not exist yet are skipped.
func (w *Watcher) Watch(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	w.watcher = watcher
	defer watcher.Close()

	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.logger.Debug("not watching missing directory", slog.String("dir", dir))
				continue
			}

			return fmt.Errorf("watching %s: %w", dir, err)
		}

		w.logger.Info("file watcher started", slog.String("dir", dir))
	}

	var last time.Time

	ticker := time.NewTicker(watcherTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed unexpectedly")
			}

			if shouldIgnore(event.Name) {
				continue
			}

			last = time.Now()

			if event.Has(fsnotify.Create) {
				info, err := os.Lstat(event.Name)
				if err == nil && info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
					_ = w.addRecursive(event.Name)
				}
			}

			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				_ = watcher.Remove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed unexpectedly")
			}

			w.logger.Warn("watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			if last.IsZero() || time.Since(last) < w.debounce {
				continue
			}

			last = time.Time{}

			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		return w.watcher.Add(path)
	})
}

// shouldIgnore skips our own in-flight copies and editor scratch files.
// Trash entries are hidden files but are real changes.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	if docstore.IsTemp(base) {
		return true
	}

	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
