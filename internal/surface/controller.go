package surface

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/wm"
)

// Manager is the subset of *wm.Manager the controller drives.
type Manager interface {
	Window(id string) (wm.Window, bool)
	Viewport() geom.Viewport
	Focus(id string) bool
	Move(id string, x, y int) bool
	SetBounds(id string, r geom.Rect) bool
	ToggleMaximize(id string) bool
	SetDragging(id string, on bool) bool
	SetResizing(id string, on bool) bool
	Subscribe(fn func(wm.Event)) func()
}

// Capture routes pointer events from the whole host surface to the
// controller while a gesture runs.
type Capture interface {
	Attach()
	Detach()
}

// Kind is the gesture type.
type Kind string

const (
	KindDrag   Kind = "drag"
	KindResize Kind = "resize"
)

// Gesture is the immutable start snapshot of the running gesture.
type Gesture struct {
	WindowID     string     `json:"window_id"`
	Kind         Kind       `json:"kind"`
	Direction    Direction  `json:"direction,omitempty"`
	StartPointer geom.Point `json:"start_pointer"`
	StartBounds  geom.Rect  `json:"start_bounds"`
	MinSize      geom.Size  `json:"min_size"`
}

// Outcome reports what a pointer-down did.
type Outcome string

const (
	OutcomeNone     Outcome = "none"
	OutcomeFocused  Outcome = "focused"
	OutcomeStarted  Outcome = "started"
	OutcomeToggled  Outcome = "toggled"
	OutcomeRejected Outcome = "rejected"
	OutcomeNotFound Outcome = "not_found"
)

// Controller runs at most one drag or resize at a time.
type Controller struct {
	mu          sync.Mutex
	wm          Manager
	capture     Capture
	logger      *slog.Logger
	gesture     *Gesture
	unsubscribe func()
}

// NewController attaches a controller to m. capture and logger may be nil.
func NewController(m Manager, capture Capture, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{wm: m, capture: capture, logger: logger}
	c.unsubscribe = m.Subscribe(c.onEvent)
	return c
}

// Close detaches the controller from the manager, ending any gesture.
func (c *Controller) Close() {
	c.PointerUp()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Active returns the running gesture.
func (c *Controller) Active() (Gesture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gesture == nil {
		return Gesture{}, false
	}
	return *c.gesture, true
}

// PointerDown focuses the window under the pointer. Shells call it before
// dispatching the event to anything inside the window.
func (c *Controller) PointerDown(id string) Outcome {
	w, ok := c.wm.Window(id)
	if !ok {
		return OutcomeNotFound
	}
	if w.Active {
		return OutcomeNone
	}
	c.wm.Focus(id)
	return OutcomeFocused
}

// TitleBarDown handles a pointer-down on the title bar, outside its buttons.
// clicks is the activation count; two or more toggles maximize instead of
// dragging.
func (c *Controller) TitleBarDown(id string, p geom.Point, clicks int) Outcome {
	if out := c.PointerDown(id); out == OutcomeNotFound {
		return out
	}
	if clicks >= 2 {
		c.PointerUp()
		c.wm.ToggleMaximize(id)
		return OutcomeToggled
	}
	w, ok := c.wm.Window(id)
	if !ok {
		return OutcomeNotFound
	}
	if w.Maximized || w.Minimized {
		return OutcomeRejected
	}
	return c.start(w, KindDrag, 0, p)
}

// HandleDown starts a resize from one of the eight handles.
func (c *Controller) HandleDown(id string, dir Direction, p geom.Point) Outcome {
	if !dir.Valid() {
		return OutcomeRejected
	}
	if out := c.PointerDown(id); out == OutcomeNotFound {
		return out
	}
	w, ok := c.wm.Window(id)
	if !ok {
		return OutcomeNotFound
	}
	if w.Maximized || w.Minimized || !w.Resizable {
		return OutcomeRejected
	}
	return c.start(w, KindResize, dir, p)
}

func (c *Controller) start(w wm.Window, kind Kind, dir Direction, p geom.Point) Outcome {
	c.mu.Lock()
	busy := c.gesture != nil
	c.mu.Unlock()
	if busy {
		return OutcomeRejected
	}

	var ok bool
	if kind == KindDrag {
		ok = c.wm.SetDragging(w.ID, true)
	} else {
		ok = c.wm.SetResizing(w.ID, true)
	}
	if !ok {
		return OutcomeRejected
	}

	c.mu.Lock()
	c.gesture = &Gesture{
		WindowID:     w.ID,
		Kind:         kind,
		Direction:    dir,
		StartPointer: geom.ClampPoint(p),
		StartBounds:  w.Bounds,
		MinSize:      w.MinSize,
	}
	c.mu.Unlock()

	if c.capture != nil {
		c.capture.Attach()
	}
	c.logger.Debug("gesture started", "window", w.ID, "kind", kind, "direction", dir)
	return OutcomeStarted
}

// PointerMove applies the running gesture for the pointer at p. It reports
// whether a gesture consumed the move.
func (c *Controller) PointerMove(p geom.Point) bool {
	g, ok := c.Active()
	if !ok {
		return false
	}
	v := c.wm.Viewport()

	switch g.Kind {
	case KindDrag:
		pos := DragPosition(g.StartBounds, g.StartPointer, p, v)
		c.wm.Move(g.WindowID, pos.X, pos.Y)
	case KindResize:
		d := geom.ClampPoint(p).Sub(g.StartPointer)
		c.wm.SetBounds(g.WindowID, ResizeBounds(g.StartBounds, g.MinSize, g.Direction, d, v))
	}
	return true
}

// PointerUp ends the running gesture wherever the pointer is released.
func (c *Controller) PointerUp() bool {
	g, ok := c.take()
	if !ok {
		return false
	}
	c.release(g)
	return true
}

func (c *Controller) release(g Gesture) {
	if g.Kind == KindDrag {
		c.wm.SetDragging(g.WindowID, false)
	} else {
		c.wm.SetResizing(g.WindowID, false)
	}
	c.logger.Debug("gesture ended", "window", g.WindowID, "kind", g.Kind)
}

// Cancel ends the running gesture and puts the window back where it started.
func (c *Controller) Cancel() bool {
	g, ok := c.Active()
	if !ok {
		return false
	}
	c.wm.SetBounds(g.WindowID, g.StartBounds)
	return c.PointerUp()
}

// Abandon cancels g if it is still the running gesture. Shells call it when
// the pointer source that started g goes away.
func (c *Controller) Abandon(g Gesture) bool {
	c.mu.Lock()
	cur := c.gesture
	c.mu.Unlock()
	if cur == nil || *cur != g {
		return false
	}
	c.wm.SetBounds(g.WindowID, g.StartBounds)
	if _, ok := c.takeIf(cur); !ok {
		return false
	}
	c.release(g)
	return true
}

// take clears the gesture and releases capture.
func (c *Controller) take() (Gesture, bool) {
	return c.takeIf(nil)
}

// takeIf is take restricted to a specific gesture when want is non-nil.
func (c *Controller) takeIf(want *Gesture) (Gesture, bool) {
	c.mu.Lock()
	g := c.gesture
	if g == nil || (want != nil && g != want) {
		c.mu.Unlock()
		return Gesture{}, false
	}
	c.gesture = nil
	c.mu.Unlock()
	if c.capture != nil {
		c.capture.Detach()
	}
	return *g, true
}

// onEvent ends the gesture when its window is closed, minimized, maximized,
// or loses its gesture flag without a pointer-up.
func (c *Controller) onEvent(ev wm.Event) {
	c.mu.Lock()
	g := c.gesture
	c.mu.Unlock()
	if g == nil {
		return
	}
	w, ok := ev.Snapshot.Find(g.WindowID)
	if ok && !w.Minimized && !w.Maximized && w.InGesture() {
		return
	}
	// The snapshot may predate start(); only drop the gesture if the
	// manager agrees it is gone.
	if cur, ok := c.wm.Window(g.WindowID); ok && !cur.Minimized && !cur.Maximized && cur.InGesture() {
		return
	}
	if _, ok := c.takeIf(g); ok {
		c.logger.Debug("gesture cleaned up", "window", g.WindowID, "event", ev.Kind)
	}
}
