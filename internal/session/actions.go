package session

import (
	"github.com/1broseidon/deskwm/internal/actionlog"
	"github.com/1broseidon/deskwm/internal/wm"
)

// recordAction mirrors manager events into the action log.
func (s *Session) recordAction(ev wm.Event) {
	w, found := ev.Snapshot.Find(ev.WindowID)

	s.appMu.Lock()
	appKey := s.appKeys[ev.WindowID]
	switch {
	case ev.Kind == wm.EventOpened && found:
		s.appKeys[w.ID] = w.AppKey
		appKey = w.AppKey
	case ev.Kind == wm.EventClosed:
		delete(s.appKeys, ev.WindowID)
	}
	s.appMu.Unlock()

	if !s.actions.Enabled() {
		return
	}

	var (
		action  actionlog.Action
		details map[string]any
	)
	switch ev.Kind {
	case wm.EventOpened:
		action = actionlog.ActionOpen
		details = map[string]any{"x": w.Bounds.X, "y": w.Bounds.Y, "width": w.Bounds.Width, "height": w.Bounds.Height, "z": w.ZIndex}
	case wm.EventClosed:
		action = actionlog.ActionClose
	case wm.EventMinimized:
		action = actionlog.ActionMinimize
	case wm.EventMaximized:
		action = actionlog.ActionMaximize
	case wm.EventRestored:
		action = actionlog.ActionRestore
		details = map[string]any{"from": "minimized"}
	case wm.EventUnmaximized:
		action = actionlog.ActionRestore
		details = map[string]any{"from": "maximized"}
	case wm.EventFocused:
		action = actionlog.ActionFocus
		details = map[string]any{"z": w.ZIndex}
	case wm.EventMoved:
		action = actionlog.ActionMove
		details = map[string]any{"x": w.Bounds.X, "y": w.Bounds.Y}
	case wm.EventResized:
		action = actionlog.ActionResize
		details = map[string]any{"x": w.Bounds.X, "y": w.Bounds.Y, "width": w.Bounds.Width, "height": w.Bounds.Height}
	case wm.EventGesture:
		action = actionlog.ActionGesture
		details = map[string]any{"dragging": w.Dragging, "resizing": w.Resizing}
	default:
		return
	}
	s.actions.Log(action, ev.WindowID, appKey, details)
}
