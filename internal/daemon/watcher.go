package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher signals a reload when a config file changes on disk.
type ConfigWatcher struct {
	debounce time.Duration
	notify   chan<- struct{}
	logger   *slog.Logger

	mu      sync.Mutex
	paths   []string
	changed chan struct{}
}

// NewConfigWatcher watches paths (the main config and its includes) and sends
// on notify after writes settle for debounce.
func NewConfigWatcher(paths []string, debounce time.Duration, notify chan<- struct{}, logger *slog.Logger) *ConfigWatcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConfigWatcher{
		paths:    slices.Clone(paths),
		debounce: debounce,
		notify:   notify,
		logger:   logger,
		changed:  make(chan struct{}, 1),
	}
}

// SetPaths replaces the watched files, e.g. after a reload added or dropped
// an include. It is safe to call while Run is active.
func (w *ConfigWatcher) SetPaths(paths []string) {
	w.mu.Lock()
	w.paths = slices.Clone(paths)
	w.mu.Unlock()
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

// watchSet is the resolved form of a path list.
type watchSet struct {
	files       map[string]bool
	includeDirs map[string]bool
	dirs        map[string]bool
}

func (w *ConfigWatcher) resolve() watchSet {
	w.mu.Lock()
	paths := slices.Clone(w.paths)
	w.mu.Unlock()

	set := watchSet{files: map[string]bool{}, includeDirs: map[string]bool{}, dirs: map[string]bool{}}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			set.includeDirs[abs] = true
			set.dirs[abs] = true
			continue
		}
		set.files[abs] = true
		set.dirs[filepath.Dir(abs)] = true
	}
	return set
}

func (s watchSet) matches(abs string) bool {
	return s.files[abs] || (s.includeDirs[filepath.Dir(abs)] && isYAML(abs))
}

// apply moves the fsnotify directory watches from old to s.
func (s watchSet) apply(watcher *fsnotify.Watcher, old watchSet, logger *slog.Logger) {
	for dir := range old.dirs {
		if !s.dirs[dir] {
			_ = watcher.Remove(dir)
		}
	}
	for dir := range s.dirs {
		if old.dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("config watcher: cannot watch directory", "dir", dir, "error", err)
		}
	}
}

// Run blocks until ctx is cancelled. Parent directories are watched so
// editors that replace files atomically are still seen.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	set := w.resolve()
	set.apply(watcher, watchSet{}, w.logger)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.changed:
			next := w.resolve()
			next.apply(watcher, set, w.logger)
			set = next
			w.logger.Debug("config watcher: paths updated", "files", len(set.files))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !set.matches(abs) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("config watcher: change", "file", ev.Name, "op", ev.Op.String())
			pending = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if !pending {
				continue
			}
			pending = false
			select {
			case w.notify <- struct{}{}:
				w.logger.Info("config changed on disk, reloading")
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
