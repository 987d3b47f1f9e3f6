package session

import (
	"errors"
	"fmt"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
)

// ErrInvalidPointer is returned for malformed pointer events.
var ErrInvalidPointer = errors.New("invalid pointer event")

// PointerPhase is the kind of pointer event a remote shell reports.
type PointerPhase string

const (
	PhaseWindowDown PointerPhase = "window_down"
	PhaseTitleDown  PointerPhase = "title_down"
	PhaseHandleDown PointerPhase = "handle_down"
	PhaseMove       PointerPhase = "move"
	PhaseUp         PointerPhase = "up"
	PhaseCancel     PointerPhase = "cancel"
)

// PointerEvent is a pointer event in viewport pixels. Shells that have no
// window hit-testing of their own send window_down with coordinates only.
type PointerEvent struct {
	Phase     PointerPhase `json:"phase"`
	WindowID  string       `json:"window_id,omitempty"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Direction string       `json:"direction,omitempty"`
	Clicks    int          `json:"clicks,omitempty"`
}

// PointerResult reports how an event was handled.
type PointerResult struct {
	Outcome  surface.Outcome  `json:"outcome,omitempty"`
	WindowID string           `json:"window_id,omitempty"`
	Consumed bool             `json:"consumed"`
	Gesture  *surface.Gesture `json:"gesture,omitempty"`
}

// Pointer feeds one pointer event to the surface controller.
func (s *Session) Pointer(ev PointerEvent) (PointerResult, error) {
	p := geom.SanitizePoint(ev.X, ev.Y)
	c := s.controller
	res := PointerResult{WindowID: ev.WindowID}

	switch ev.Phase {
	case PhaseWindowDown:
		if res.WindowID == "" {
			w, ok := s.manager.Snapshot().TopAt(p)
			if !ok {
				res.Outcome = surface.OutcomeNone
				break
			}
			res.WindowID = w.ID
		}
		res.Outcome = c.PointerDown(res.WindowID)
	case PhaseTitleDown:
		if ev.WindowID == "" {
			return res, fmt.Errorf("%w: title_down needs window_id", ErrInvalidPointer)
		}
		clicks := max(ev.Clicks, 1)
		res.Outcome = c.TitleBarDown(ev.WindowID, p, clicks)
	case PhaseHandleDown:
		if ev.WindowID == "" {
			return res, fmt.Errorf("%w: handle_down needs window_id", ErrInvalidPointer)
		}
		dir, err := surface.ParseDirection(ev.Direction)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrInvalidPointer, err)
		}
		res.Outcome = c.HandleDown(ev.WindowID, dir, p)
	case PhaseMove:
		res.Consumed = c.PointerMove(p)
	case PhaseUp:
		res.Consumed = c.PointerUp()
	case PhaseCancel:
		res.Consumed = c.Cancel()
	default:
		return res, fmt.Errorf("%w: unknown phase %q", ErrInvalidPointer, ev.Phase)
	}

	if res.Outcome == surface.OutcomeNotFound {
		return res, fmt.Errorf("%w: %q", ErrWindowNotFound, res.WindowID)
	}
	if res.Outcome == surface.OutcomeStarted {
		res.Consumed = true
	}
	if g, ok := c.Active(); ok {
		res.Gesture = &g
	}
	return res, nil
}
