// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
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

const defaultDebounce = 500 * time.Millisecond

// clearScreen moves the cursor home after clearing the terminal.
const clearScreen = "\033[2J\033[H"

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// ErrWatcherBroken wraps fsnotify errors the watcher cannot recover from.
	ErrWatcherBroken = errors.New("watch: watcher broken")
)

// defaultIgnores are always excluded. They cover VCS metadata, dependency and
// tool caches that appear in infrastructure repos, and editor swap files.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"**/.terraform/**",
	"**/cdk.out/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// Watcher re-runs a callback when files under BaseDir change.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	ignores  []string
	stdout   io.Writer
	log      *slog.Logger
	debounce time.Duration
	baseDir  string
	started  atomic.Bool

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	busy    atomic.Bool
}

// New validates cfg, resolves BaseDir and registers every non-ignored
// directory under it with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		stdout:   cfg.Stdout,
		log:      cfg.Logger,
		debounce: cfg.Debounce,
		baseDir:  absBase,
		pending:  make(map[string]struct{}),
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.addDirectories(); err != nil {
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.log.Warn("watch: close after init failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched root.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run blocks until ctx is canceled. It returns nil on cancellation and an
// error wrapping ErrWatcherBroken when fsnotify can no longer deliver events.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.log.Warn("watch: close fsnotify", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("%w: event channel closed", ErrWatcherBroken)
			}
			w.handleEvent(ctx, evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("%w: error channel closed", ErrWatcherBroken)
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("%w: %w", ErrWatcherBroken, err)
			}
			w.log.Warn("watch: fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, evt fsnotify.Event) {
	rel, err := filepath.Rel(w.baseDir, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	rel = filepath.ToSlash(rel)

	// New directories are registered even when they do not match Patterns
	// themselves, so files created inside them are still seen.
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name)
	}
	if w.isIgnored(rel) || !w.matchesPatterns(rel) {
		return
	}

	w.log.Debug("watch: change", "path", rel, "op", evt.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[rel] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx) })
		return
	}
	w.timer.Reset(w.debounce)
}

// fire drains the pending set into OnChange. A fire that lands while the
// previous callback is still running is rescheduled instead of dropped.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !w.busy.CompareAndSwap(false, true) {
		w.log.Info("watch: previous run still in progress, rescheduling")
		w.mu.Lock()
		w.timer.Reset(w.debounce)
		w.mu.Unlock()
		return
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	changed := slices.Sorted(maps.Keys(w.pending))
	clear(w.pending)
	w.mu.Unlock()

	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, clearScreen)
	}
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.log.Error("watch: re-run failed", "error", err)
	}
}

func (w *Watcher) addDirectories() error {
	walkErr := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			w.log.Warn("watch: skipping inaccessible path", "path", path, "error", walkDirErr)
			return nil //nolint:nilerr // inaccessible paths are skipped
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr != nil {
			return nil //nolint:nilerr // not under baseDir
		}
		if w.isIgnoredDir(rel) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnoredDir(rel) {
		return
	}
	if addErr := w.fsw.Add(path); addErr != nil {
		w.log.Warn("watch: add new directory", "path", path, "error", addErr)
	}
}

func (w *Watcher) isIgnoredDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, filepath.ToSlash(rel))
}

// matchesPatterns accepts everything when no patterns are configured.
func (w *Watcher) matchesPatterns(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, filepath.ToSlash(rel))
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, path); err == nil && matched {
			return true
		}
	}
	return false
}
