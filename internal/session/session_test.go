package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/deskwm/internal/actionlog"
	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/wm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Viewport.Width = 1000
	cfg.Viewport.Height = 800
	n := 0
	opts.NewID = func(k string) string {
		n++
		return fmt.Sprintf("%s-%d", k, n)
	}
	s, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func TestNew_UsesConfiguredViewport(t *testing.T) {
	s := newSession(t, Options{})
	assert.Equal(t, geom.Viewport{Width: 1000, Height: 800, TaskbarHeight: 48}, s.Manager().Viewport())

	vp := geom.Viewport{Width: 640, Height: 480, TaskbarHeight: 48}
	s2 := newSession(t, Options{Viewport: &vp})
	assert.Equal(t, vp, s2.Manager().Viewport())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cascade.Cycle = 0
	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestOperations_UnknownWindow(t *testing.T) {
	s := newSession(t, Options{})
	for name, op := range map[string]func() error{
		"close":    func() error { return s.Close("ghost") },
		"minimize": func() error { return s.Minimize("ghost") },
		"maximize": func() error { return s.ToggleMaximize("ghost") },
		"focus":    func() error { return s.Focus("ghost") },
		"move":     func() error { return s.Move("ghost", 1, 1) },
		"resize":   func() error { return s.Resize("ghost", 1, 1) },
		"mounted":  func() error { return s.Mounted("ghost") },
	} {
		assert.ErrorIs(t, op(), ErrWindowNotFound, name)
	}
}

func TestActiveHelpers(t *testing.T) {
	s := newSession(t, Options{})
	assert.ErrorIs(t, s.CloseActive(), ErrNoActiveWindow)

	a, _, err := s.Open("about", wm.Overrides{})
	require.NoError(t, err)
	b, _, err := s.Open("projects", wm.Overrides{})
	require.NoError(t, err)

	require.NoError(t, s.MaximizeActive())
	got, _ := s.Window(b.ID)
	assert.True(t, got.Maximized)

	require.NoError(t, s.MinimizeActive())
	assert.Equal(t, a.ID, s.Snapshot().ActiveID)

	require.NoError(t, s.CloseActive())
	_, err = s.Window(a.ID)
	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.Empty(t, s.Snapshot().ActiveID)
}

func TestPointer_DragLifecycle(t *testing.T) {
	s := newSession(t, Options{})
	w, _, err := s.Open("about", wm.Overrides{})
	require.NoError(t, err)

	res, err := s.Pointer(PointerEvent{Phase: PhaseTitleDown, WindowID: w.ID, X: 10, Y: 10, Clicks: 1})
	require.NoError(t, err)
	assert.Equal(t, surface.OutcomeStarted, res.Outcome)
	require.NotNil(t, res.Gesture)
	assert.Equal(t, surface.KindDrag, res.Gesture.Kind)

	res, err = s.Pointer(PointerEvent{Phase: PhaseMove, X: 30, Y: 40})
	require.NoError(t, err)
	assert.True(t, res.Consumed)
	got, _ := s.Window(w.ID)
	assert.Equal(t, w.Bounds.X+20, got.Bounds.X)
	assert.Equal(t, w.Bounds.Y+30, got.Bounds.Y)

	res, err = s.Pointer(PointerEvent{Phase: PhaseUp})
	require.NoError(t, err)
	assert.True(t, res.Consumed)
	assert.Nil(t, res.Gesture)
	assert.Nil(t, s.Status().Gesture)
}

func TestPointer_WindowDownHitTests(t *testing.T) {
	s := newSession(t, Options{})
	a, _, err := s.Open("about", wm.Overrides{X: intPtr(0), Y: intPtr(0)})
	require.NoError(t, err)
	_, _, err = s.Open("projects", wm.Overrides{X: intPtr(500), Y: intPtr(0)})
	require.NoError(t, err)

	res, err := s.Pointer(PointerEvent{Phase: PhaseWindowDown, X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, a.ID, res.WindowID)
	assert.Equal(t, surface.OutcomeFocused, res.Outcome)
	assert.Equal(t, a.ID, s.Snapshot().ActiveID)

	res, err = s.Pointer(PointerEvent{Phase: PhaseWindowDown, X: 990, Y: 790})
	require.NoError(t, err)
	assert.Equal(t, surface.OutcomeNone, res.Outcome)
}

func TestPointer_Errors(t *testing.T) {
	s := newSession(t, Options{})
	w, _, err := s.Open("about", wm.Overrides{})
	require.NoError(t, err)

	_, err = s.Pointer(PointerEvent{Phase: "wiggle"})
	assert.ErrorIs(t, err, ErrInvalidPointer)
	_, err = s.Pointer(PointerEvent{Phase: PhaseTitleDown})
	assert.ErrorIs(t, err, ErrInvalidPointer)
	_, err = s.Pointer(PointerEvent{Phase: PhaseHandleDown, WindowID: w.ID, Direction: "middle"})
	assert.ErrorIs(t, err, ErrInvalidPointer)
	_, err = s.Pointer(PointerEvent{Phase: PhaseTitleDown, WindowID: "ghost"})
	assert.ErrorIs(t, err, ErrWindowNotFound)
}

func TestPointer_ResizeAndCancel(t *testing.T) {
	s := newSession(t, Options{})
	w, _, err := s.Open("about", wm.Overrides{})
	require.NoError(t, err)

	res, err := s.Pointer(PointerEvent{Phase: PhaseHandleDown, WindowID: w.ID, Direction: "se", X: 100, Y: 100})
	require.NoError(t, err)
	require.Equal(t, surface.OutcomeStarted, res.Outcome)

	_, err = s.Pointer(PointerEvent{Phase: PhaseMove, X: 150, Y: 130})
	require.NoError(t, err)
	got, _ := s.Window(w.ID)
	assert.Equal(t, w.Bounds.Width+50, got.Bounds.Width)
	assert.Equal(t, w.Bounds.Height+30, got.Bounds.Height)

	res, err = s.Pointer(PointerEvent{Phase: PhaseCancel})
	require.NoError(t, err)
	assert.True(t, res.Consumed)
	got, _ = s.Window(w.ID)
	assert.Equal(t, w.Bounds, got.Bounds)
}

func TestReload_SwapsCatalog(t *testing.T) {
	s := newSession(t, Options{})
	_, _, err := s.Open("notes", wm.Overrides{})
	assert.ErrorIs(t, err, wm.ErrUnknownApp)

	cfg := config.DefaultConfig()
	cfg.Apps["notes"] = config.AppConfig{Name: "Notes", Resizable: true, Order: 500}
	cfg.Viewport.Source = config.ViewportStatic
	cfg.Viewport.Width = 1600
	cfg.Viewport.Height = 900
	require.NoError(t, s.Reload(cfg))

	w, res, err := s.Open("notes", wm.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, wm.OpenCreated, res)
	assert.Equal(t, "Notes", w.Title)
	assert.Equal(t, 1600, s.Manager().Viewport().Width)
	assert.Same(t, cfg, s.Config())
}

func TestActionLog_RecordsLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	logger, err := actionlog.New(actionlog.Options{Enabled: true, Level: actionlog.LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})
	require.NoError(t, err)
	defer logger.Close()

	s := newSession(t, Options{Actions: logger})
	w, _, err := s.Open("about", wm.Overrides{})
	require.NoError(t, err)
	require.NoError(t, s.Minimize(w.ID))
	_, _, err = s.Open("about", wm.Overrides{})
	require.NoError(t, err)
	require.NoError(t, s.Close(w.ID))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "[OPEN] window=about-1 app=about")
	assert.Contains(t, lines[1], "[MINIMIZE] window=about-1 app=about")
	assert.Contains(t, lines[2], `[RESTORE] window=about-1 app=about from="minimized"`)
	assert.Contains(t, lines[3], "[CLOSE] window=about-1 app=about")
}

func intPtr(v int) *int { return &v }
