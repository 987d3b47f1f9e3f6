// Package wm owns the desktop's window instances, their stacking order and
// the active window.
package wm

import (
	"sort"

	"github.com/1broseidon/deskwm/internal/apps"
	"github.com/1broseidon/deskwm/internal/geom"
)

// Window is one open content surface. Values handed out by the Manager are
// copies; mutate through Manager operations only.
type Window struct {
	ID        string       `json:"id"`
	AppKey    string       `json:"app_key"`
	Title     string       `json:"title"`
	Icon      string       `json:"icon,omitempty"`
	Content   apps.Content `json:"-"`
	Bounds    geom.Rect    `json:"bounds"`
	MinSize   geom.Size    `json:"min_size"`
	Resizable bool         `json:"resizable"`
	ZIndex    int          `json:"z_index"`

	Minimized bool `json:"minimized"`
	Maximized bool `json:"maximized"`
	Active    bool `json:"active"`
	Dragging  bool `json:"dragging"`
	Resizing  bool `json:"resizing"`

	// FocusedOnMount is set on creation and cleared by MarkMounted.
	FocusedOnMount bool `json:"focused_on_mount,omitempty"`
}

// InGesture reports whether the window is being dragged or resized.
func (w Window) InGesture() bool {
	return w.Dragging || w.Resizing
}

// DisplayBounds is where the window should be drawn. Maximized windows cover
// the work area; their stored bounds are untouched.
func (w Window) DisplayBounds(v geom.Viewport) geom.Rect {
	if w.Maximized {
		return v.WorkArea()
	}
	return w.Bounds
}

// Snapshot is a consistent copy of manager state.
type Snapshot struct {
	Seq        uint64        `json:"seq"`
	Windows    []Window      `json:"windows"`
	ActiveID   string        `json:"active_id,omitempty"`
	Viewport   geom.Viewport `json:"viewport"`
	NextZIndex int           `json:"next_z_index"`
}

// Stacked returns the windows ordered back to front.
func (s Snapshot) Stacked() []Window {
	out := make([]Window, len(s.Windows))
	copy(out, s.Windows)
	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Find returns the window with id.
func (s Snapshot) Find(id string) (Window, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

// FindApp returns the first window for appKey, preferring a visible one.
func (s Snapshot) FindApp(appKey string) (Window, bool) {
	var fallback *Window
	for i := range s.Windows {
		w := s.Windows[i]
		if w.AppKey != appKey {
			continue
		}
		if !w.Minimized {
			return w, true
		}
		if fallback == nil {
			fallback = &s.Windows[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Window{}, false
}

// TopAt returns the front-most visible window whose displayed bounds contain p.
func (s Snapshot) TopAt(p geom.Point) (Window, bool) {
	stacked := s.Stacked()
	for i := len(stacked) - 1; i >= 0; i-- {
		w := stacked[i]
		if w.Minimized {
			continue
		}
		if w.DisplayBounds(s.Viewport).Contains(p) {
			return w, true
		}
	}
	return Window{}, false
}
