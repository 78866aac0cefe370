// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"extpack-cli/pkg/exclude"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

var errAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the extension source tree. Empty means the working directory.
		Root string
		// Ruleset drops file events for the paths the archive drops. Nil
		// means exclude.Default().
		Ruleset *exclude.Ruleset
		// Ignore holds extra doublestar patterns relative to Root.
		Ignore   []string
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated changed paths relative
		// to Root. Its error is logged and the loop keeps going.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *log.Logger
	}

	// Watcher runs OnChange after the source tree settles. Run may be called
	// once.
	Watcher struct {
		cfg     Config
		root    string
		filter  *filter
		fsw     *fsnotify.Watcher
		log     *log.Logger
		started atomic.Bool
	}

	// batch accumulates changed paths between debounce ticks.
	batch struct {
		mu      sync.Mutex
		paths   map[string]struct{}
		timer   *time.Timer
		delay   time.Duration
		busy    atomic.Bool
		onFlush func([]string)
		logBusy func()
	}
)

// New resolves Root, validates the ignore patterns and registers every
// directory that can hold archived files with fsnotify.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	flt, err := newFilter(cfg.Ruleset, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{cfg: cfg, root: root, filter: flt, fsw: fsw, log: logger}
	if err := w.addTree(root); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("watch: close after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string { return w.root }

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when fsnotify fails beyond recovery.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}

	b := &batch{
		paths: make(map[string]struct{}),
		delay: w.cfg.Debounce,
		onFlush: func(changed []string) {
			if ctx.Err() != nil || w.cfg.OnChange == nil {
				return
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.log.Error("rebuild failed", "err", err)
			}
		},
	}
	b.logBusy = func() { w.log.Warn("previous build still running, retrying after debounce") }

	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("watch: close fsnotify", "err", err)
		}
	}()

	w.log.Info("Watching for changes in " + w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			w.handle(evt, b)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.log.Warn("watch: fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event, b *batch) {
	if evt.Op == fsnotify.Chmod {
		return
	}

	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		return
	}

	if evt.Has(fsnotify.Create) && !w.filter.skipDir(rel) {
		if info, err := os.Lstat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				w.log.Warn("watch: add new directory", "path", evt.Name, "err", err)
			}
		}
	}

	if w.filter.skip(rel) {
		return
	}

	w.log.Debug("change", "op", evt.Op.String(), "path", rel)
	b.add(filepath.ToSlash(rel))
}

// addTree registers dir and its descendants. Unreadable entries are logged
// and skipped; symlinked directories are not followed.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.log.Warn("watch: skipping inaccessible path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // unreadable subtrees are not fatal
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil || w.filter.skipDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", dir, err)
	}
	return nil
}

func (b *batch) add(rel string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.paths[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.flush)
		return
	}
	b.timer.Reset(b.delay)
}

// flush runs onFlush with the pending paths. Only one flush runs at a time;
// a flush that finds another in progress reschedules itself.
func (b *batch) flush() {
	if !b.busy.CompareAndSwap(false, true) {
		if b.logBusy != nil {
			b.logBusy()
		}
		b.mu.Lock()
		b.timer.Reset(b.delay)
		b.mu.Unlock()
		return
	}
	defer b.busy.Store(false)

	b.mu.Lock()
	if len(b.paths) == 0 {
		b.mu.Unlock()
		return
	}
	changed := maps.Keys(b.paths)
	clear(b.paths)
	b.mu.Unlock()

	slices.Sort(changed)
	b.onFlush(changed)
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}
