// Package watch implements the filesystem watcher SPEC_FULL.md §2.7
// describes: a debounced, recursive fsnotify watcher that hands batches of
// changed paths to a caller-supplied callback. Grounded
// on the teacher's cmd/gts/watch.go (watchWithFSNotify/addWatchRecursive/
// shouldSkipWatchDir/shouldIgnoreWatchPath), generalized into a standalone
// package so both cmd/semls and pkg/lspserver's didSave-independent live
// reload can use it.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"semls/pkg/ignore"
)

// OnChange receives the deduplicated, sorted set of paths a debounce
// window observed as created, written, removed, renamed, or chmod'd.
type OnChange func(changed []string)

// Watcher recursively watches a root directory and reports batches of
// changed paths after a debounce window closes.
type Watcher struct {
	root     string
	debounce time.Duration
	matcher  *ignore.Matcher
	logger   *slog.Logger
	onChange OnChange
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore sets the matcher used to exclude paths from both the
// recursive add and the per-event filter.
func WithIgnore(m *ignore.Matcher) Option {
	return func(w *Watcher) { w.matcher = m }
}

// WithLogger sets the logger used for non-fatal watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// New constructs a Watcher rooted at root, calling onChange after each
// debounce window with the batch of paths that changed. debounce <= 0
// defaults to 250ms, matching internal/config.DefaultConfig's WatchConfig.
func New(root string, debounce time.Duration, onChange OnChange, opts ...Option) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	w := &Watcher{root: root, debounce: debounce, onChange: onChange, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled or an unrecoverable watcher error
// occurs.
func (w *Watcher) Run(ctx context.Context) error {
	absRoot, err := filepath.Abs(w.root)
	if err != nil {
		return err
	}
	absRoot = filepath.Clean(absRoot)

	info, err := os.Stat(absRoot)
	if err != nil {
		return err
	}
	watchRoot := absRoot
	if !info.IsDir() {
		watchRoot = filepath.Dir(absRoot)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, watchRoot, absRoot); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	pending := false
	pendingPaths := map[string]bool{}

	reset := func(path string) {
		if path != "" {
			pendingPaths[path] = true
		}
		if pending {
			stopTimer(timer)
		}
		timer.Reset(w.debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath := filepath.Clean(event.Name)
			if w.shouldIgnoreEvent(eventPath, absRoot) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					if err := w.addRecursive(watcher, eventPath, absRoot); err != nil {
						w.logger.Warn("failed to watch new directory", slog.String("path", eventPath), slog.String("error", err.Error()))
					}
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Chmod) == 0 {
				continue
			}
			reset(eventPath)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			changed := make([]string, 0, len(pendingPaths))
			for path := range pendingPaths {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pendingPaths = map[string]bool{}
			w.onChange(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root, projectRoot string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if w.shouldSkipDir(projectRoot, path, entry.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (w *Watcher) shouldSkipDir(root, path, name string) bool {
	if path == root {
		return false
	}
	if name == ".git" || name == ".hg" || name == ".svn" || name == "node_modules" || name == "vendor" {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	if w.matcher != nil {
		if relPath, err := filepath.Rel(root, path); err == nil {
			if w.matcher.Match(filepath.ToSlash(relPath), true) {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) shouldIgnoreEvent(path, root string) bool {
	base := filepath.Base(path)
	if base == ".DS_Store" || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") || strings.HasPrefix(base, ".#") {
		return true
	}
	if w.matcher != nil {
		if relPath, err := filepath.Rel(root, path); err == nil {
			if w.matcher.Match(filepath.ToSlash(relPath), false) {
				return true
			}
		}
	}
	return false
}
