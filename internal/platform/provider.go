// Package platform reports the size of the surface the desktop is drawn on.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/geom"
)

// ErrUnavailable is returned when a provider cannot reach its display.
var ErrUnavailable = errors.New("display unavailable")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Bounds Rect   `json:"bounds"`
	Usable Rect   `json:"usable"`
}

// ViewportProvider reports the current desktop viewport.
type ViewportProvider interface {
	Name() string
	Viewport(ctx context.Context) (geom.Viewport, error)
	Displays() ([]Display, error)
	Close()
}

// Static always reports the same viewport.
type Static struct {
	V geom.Viewport
}

var _ ViewportProvider = Static{}

func (s Static) Name() string { return "static" }

func (s Static) Viewport(context.Context) (geom.Viewport, error) {
	return s.V, nil
}

func (s Static) Displays() ([]Display, error) {
	r := Rect{Width: s.V.Width, Height: s.V.Height}
	return []Display{{ID: 0, Name: "static", Bounds: r, Usable: r}}, nil
}

func (s Static) Close() {}

// NewProvider picks a provider for cfg.Viewport.Source. With "auto" an X11
// connection is tried first and the static size is the fallback.
func NewProvider(cfg *config.Config, logger *slog.Logger) (ViewportProvider, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	static := Static{V: cfg.ViewportFallback()}

	switch cfg.Viewport.Source {
	case config.ViewportStatic:
		return static, nil
	case config.ViewportX11:
		p, err := newX11Provider(cfg.Display, cfg.TaskbarHeight)
		if err != nil {
			return nil, fmt.Errorf("x11 viewport: %w", err)
		}
		return p, nil
	default:
		p, err := newX11Provider(cfg.Display, cfg.TaskbarHeight)
		if err != nil {
			logger.Info("x11 viewport unavailable, using configured size", "error", err,
				"width", static.V.Width, "height", static.V.Height)
			return static, nil
		}
		return p, nil
	}
}
