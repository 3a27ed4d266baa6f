// Package watch re-runs a callback when files under a root directory change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period required before a change fires.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Root     string
	Debounce time.Duration
	// Skip reports slash-separated root-relative paths whose changes are
	// ignored, typically the files the callback itself writes.
	Skip func(rel string) bool
}

// Watcher watches every directory under a root. Directories created while
// running are added as they appear.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	skip     func(string) bool
	logger   *zap.Logger
}

// New registers root and all its subdirectories except .git.
func New(opts Options, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if info, err := os.Stat(opts.Root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", opts.Root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fsw,
		root:     opts.Root,
		debounce: opts.Debounce,
		skip:     opts.Skip,
		logger:   logger,
	}
	if err := w.addTree(opts.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange once per settled burst
// of changes. Callback errors are logged and watching continues. The
// underlying watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	defer w.fs.Close()

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	var lastEvent time.Time
	pending := false

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher stopped")
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(event) {
				continue
			}
			lastEvent = time.Now()
			pending = true

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-debounceTicker.C:
			if !pending || time.Since(lastEvent) < w.debounce {
				continue
			}
			pending = false
			w.logger.Info("Change detected, regenerating")
			if err := onChange(ctx); err != nil {
				w.logger.Error("Regeneration failed", zap.Error(err))
			}
		}
	}
}

// handleEvent reports whether event should trigger a run, adding new
// directories to the watch as a side effect.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, ok := w.relevant(event.Name)
	if !ok {
		return false
	}
	w.logger.Debug("File event", zap.String("op", event.Op.String()), zap.String("path", rel))

	if event.Op&fsnotify.Create != 0 {
		if err := w.addTree(event.Name); err != nil {
			w.logger.Warn("Failed to watch new directory", zap.String("path", rel), zap.Error(err))
		}
	}
	return true
}

// relevant maps an absolute event path to its root-relative form and filters
// out .git contents and skipped paths.
func (w *Watcher) relevant(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".git" {
			return "", false
		}
	}
	if w.skip != nil && w.skip(rel) {
		return "", false
	}
	return rel, true
}

// addTree watches dir and every directory below it. Non-directories are
// ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return err
		}
		w.logger.Debug("Watching directory", zap.String("path", p))
		return nil
	})
}

// WatchList returns the directories currently registered.
func (w *Watcher) WatchList() []string {
	return w.fs.WatchList()
}
