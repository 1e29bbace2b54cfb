// Package watch re-runs a callback when source files below a directory change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more events before
// firing.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Dir is watched recursively
	Dir string
	// Extensions of files that trigger a change, for example ".go"
	Extensions []string
	// Files are additional individual files to watch
	Files []string
	// Debounce delay; zero means DefaultDebounce
	Debounce time.Duration
	// Logger for watcher errors; nil discards
	Logger *slog.Logger
}

// Watcher calls a function after files change, at most once per debounce
// window and never concurrently.
type Watcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a watcher.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{opts: opts, logger: logger}
}

// Run blocks until ctx is done, calling onChange with the sorted list of
// changed files after each burst of events.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if w.opts.Dir != "" {
		if err := watchDirRecursive(watcher, w.opts.Dir); err != nil {
			return err
		}
	}
	for _, f := range w.opts.Files {
		if err := watcher.Add(filepath.Dir(f)); err != nil {
			return err
		}
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]bool)
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 && w.isNewDir(event.Name) {
				if err := watchDirRecursive(watcher, event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
				}
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.opts.Debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Debug("files changed", "files", changed)
			onChange(ctx, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	for _, f := range w.opts.Files {
		if filepath.Clean(f) == filepath.Clean(name) {
			return true
		}
	}
	ext := filepath.Ext(name)
	for _, e := range w.opts.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) isNewDir(name string) bool {
	if w.opts.Dir == "" {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

// skipDir reports whether a directory is never watched.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules")
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
