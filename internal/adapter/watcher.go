package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 300 * time.Millisecond

// ComponentPattern selects component files for watching.
const ComponentPattern = "**/*.vue"

var (
	// ErrWatcherStarted is returned when Run is called twice.
	ErrWatcherStarted = errors.New("watcher already started")

	errEventsClosed = errors.New("fsnotify event channel closed")
	errErrorsClosed = errors.New("fsnotify error channel closed")
)

// defaultIgnores are never watched.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// WatchConfig holds the parameters for a Watcher.
type WatchConfig struct {
	// BaseDir is the root directory to watch; empty means the working directory.
	BaseDir string
	// Patterns select the files that trigger callbacks. Empty watches components.
	Patterns []string
	// Ignore extends the built-in ignore list.
	Ignore []string
	// Debounce falls back to DefaultDebounce when not positive.
	Debounce time.Duration
	// OnChange receives the changed paths, relative to BaseDir, once the
	// debounce window closes.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher reports debounced component changes under a directory tree.
type Watcher struct {
	cfg      WatchConfig
	fsw      *fsnotify.Watcher
	patterns []string
	ignores  []string
	baseDir  string
	debounce time.Duration
	started  atomic.Bool
}

// NewWatcher validates cfg and registers every non-ignored directory.
func NewWatcher(cfg WatchConfig) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{ComponentPattern}
	}

	for _, pattern := range slices.Concat(patterns, cfg.Ignore) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: patterns,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		baseDir:  absBase,
		debounce: debounce,
	}

	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			slog.Warn("Failed to close watcher", "error", closeErr)
		}

		return nil, err
	}

	return w, nil
}

// BaseDir returns the absolute watch root.
func (w *Watcher) BaseDir() string {
	return w.baseDir
}

// Run processes events until ctx is cancelled. A callback still running when
// the next window closes delays that window instead of overlapping it.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrWatcherStarted
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}

		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()

			return
		}

		defer running.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}

		if err := w.cfg.OnChange(ctx, changed); err != nil {
			slog.Error("Watch callback failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()

		if err := w.fsw.Close(); err != nil {
			slog.Warn("Failed to close watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errEventsClosed
			}

			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			rel, err := filepath.Rel(w.baseDir, evt.Name)
			if err != nil || w.isIgnored(rel) || !w.matches(rel) {
				continue
			}

			slog.Debug("File changed", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[rel] = struct{}{}

			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errErrorsClosed
			}

			slog.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping inaccessible path", "path", path, "error", err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr == nil && rel != "." && w.isIgnored(rel+"/") {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch directory %q: %w", path, addErr)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk watch tree: %w", err)
	}

	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnored(rel+"/") {
		return
	}

	if err := w.fsw.Add(path); err != nil {
		slog.Warn("Failed to watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchGlobs(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return matchGlobs(w.patterns, rel)
}

func matchGlobs(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)

	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}

	return false
}
