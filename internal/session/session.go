// Package session wires the app registry, window manager and surface
// controller into one desktop that the daemon, TUI and APIs share.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/deskwm/internal/actionlog"
	"github.com/1broseidon/deskwm/internal/apps"
	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/wm"
)

// ErrWindowNotFound is returned for ids the manager does not know.
var ErrWindowNotFound = errors.New("window not found")

// ErrNoActiveWindow is returned by the *Active helpers on an empty desktop.
var ErrNoActiveWindow = errors.New("no active window")

// Options configure a Session. Everything is optional.
type Options struct {
	// Viewport overrides the configured fallback size.
	Viewport  *geom.Viewport
	Capture   surface.Capture
	Factories map[string]apps.Factory
	Logger    *slog.Logger
	Actions   *actionlog.Logger
	NewID     func(appKey string) string
}

// Session is one running desktop.
type Session struct {
	mu        sync.RWMutex
	cfg       *config.Config
	registry  *apps.Registry
	factories map[string]apps.Factory

	manager    *wm.Manager
	controller *surface.Controller
	actions    *actionlog.Logger
	logger     *slog.Logger
	started    time.Time

	// appKeys remembers the app of every live window so CLOSE entries
	// can name it after the window is gone.
	appMu       sync.Mutex
	appKeys     map[string]string
	unsubscribe func()
}

// New builds a desktop from cfg.
func New(cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	vp := cfg.ViewportFallback()
	if opts.Viewport != nil {
		vp = *opts.Viewport
	}

	registry := apps.FromConfig(cfg, opts.Factories)
	manager := wm.NewManager(registry, vp, managerOptions(cfg, opts.NewID, logger))

	s := &Session{
		cfg:        cfg,
		registry:   registry,
		factories:  opts.Factories,
		manager:    manager,
		controller: surface.NewController(manager, opts.Capture, logger),
		actions:    opts.Actions,
		logger:     logger,
		started:    time.Now(),
		appKeys:    make(map[string]string),
	}
	s.unsubscribe = manager.Subscribe(s.recordAction)
	return s, nil
}

func managerOptions(cfg *config.Config, newID func(string) string, logger *slog.Logger) wm.Options {
	return wm.Options{
		InitialZIndex:  cfg.InitialZIndex,
		CascadeStep:    cfg.Cascade.Step,
		CascadeCycle:   cfg.Cascade.Cycle,
		CenterLift:     cfg.Cascade.Lift,
		DefaultSize:    cfg.DefaultSize,
		DefaultMinSize: cfg.MinSize,
		NewID:          newID,
		Logger:         logger,
	}
}

// Shutdown ends any running gesture and detaches from the manager.
func (s *Session) Shutdown() {
	s.controller.Close()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Reload swaps in a new config. Open windows keep their geometry; the new
// app catalog applies to future opens. A static viewport source resizes the
// desktop immediately.
func (s *Session) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	registry := apps.FromConfig(cfg, s.factories)

	s.mu.Lock()
	s.cfg = cfg
	s.registry = registry
	s.mu.Unlock()

	s.manager.SetCatalog(registry)
	if cfg.Viewport.Source == config.ViewportStatic {
		s.manager.SetViewport(cfg.ViewportFallback())
	}
	s.logger.Info("session reloaded", "apps", registry.Len())
	return nil
}

// Config returns the active configuration.
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Registry returns the active app registry.
func (s *Session) Registry() *apps.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

func (s *Session) Manager() *wm.Manager            { return s.manager }
func (s *Session) Controller() *surface.Controller { return s.controller }

// Snapshot is shorthand for Manager().Snapshot().
func (s *Session) Snapshot() wm.Snapshot {
	return s.manager.Snapshot()
}

// SetViewport resizes the desktop.
func (s *Session) SetViewport(v geom.Viewport) bool {
	return s.manager.SetViewport(v)
}

// Open focuses, restores or creates the window for appKey.
func (s *Session) Open(appKey string, ov wm.Overrides) (wm.Window, wm.OpenResult, error) {
	w, res, err := s.manager.Open(appKey, ov)
	if err != nil {
		return wm.Window{}, "", err
	}
	return w, res, nil
}

// Window returns the window with id.
func (s *Session) Window(id string) (wm.Window, error) {
	w, ok := s.manager.Window(id)
	if !ok {
		return wm.Window{}, fmt.Errorf("%w: %q", ErrWindowNotFound, id)
	}
	return w, nil
}

func (s *Session) Close(id string) error {
	return s.apply(id, s.manager.Close)
}

func (s *Session) Minimize(id string) error {
	return s.apply(id, s.manager.Minimize)
}

func (s *Session) ToggleMaximize(id string) error {
	return s.apply(id, s.manager.ToggleMaximize)
}

func (s *Session) Focus(id string) error {
	return s.apply(id, s.manager.Focus)
}

// Mounted tells the manager a shell has drawn the window for the first time.
func (s *Session) Mounted(id string) error {
	return s.apply(id, s.manager.MarkMounted)
}

// Move sets the window origin. Coordinates are taken as given.
func (s *Session) Move(id string, x, y int) error {
	return s.apply(id, func(id string) bool { return s.manager.Move(id, x, y) })
}

// Resize sets the window size, floored at its minimum.
func (s *Session) Resize(id string, width, height int) error {
	return s.apply(id, func(id string) bool { return s.manager.Resize(id, width, height) })
}

// apply runs op for a known id. op returning false for a known id is a
// no-op, not an error.
func (s *Session) apply(id string, op func(string) bool) error {
	if _, ok := s.manager.Window(id); !ok {
		return fmt.Errorf("%w: %q", ErrWindowNotFound, id)
	}
	op(id)
	return nil
}

// CloseActive closes the active window.
func (s *Session) CloseActive() error {
	return s.withActive(s.Close)
}

// MinimizeActive minimizes the active window.
func (s *Session) MinimizeActive() error {
	return s.withActive(s.Minimize)
}

// MaximizeActive toggles maximize on the active window.
func (s *Session) MaximizeActive() error {
	return s.withActive(s.ToggleMaximize)
}

func (s *Session) withActive(op func(string) error) error {
	id := s.manager.ActiveID()
	if id == "" {
		return ErrNoActiveWindow
	}
	return op(id)
}

// Status summarizes the desktop.
type Status struct {
	WindowCount  int              `json:"window_count"`
	VisibleCount int              `json:"visible_count"`
	ActiveID     string           `json:"active_id,omitempty"`
	Viewport     geom.Viewport    `json:"viewport"`
	Gesture      *surface.Gesture `json:"gesture,omitempty"`
	Uptime       time.Duration    `json:"uptime"`
}

// Status reports window counts, the active window and any running gesture.
func (s *Session) Status() Status {
	snap := s.manager.Snapshot()
	st := Status{
		WindowCount: len(snap.Windows),
		ActiveID:    snap.ActiveID,
		Viewport:    snap.Viewport,
		Uptime:      time.Since(s.started),
	}
	for _, w := range snap.Windows {
		if !w.Minimized {
			st.VisibleCount++
		}
	}
	if g, ok := s.controller.Active(); ok {
		st.Gesture = &g
	}
	return st
}
