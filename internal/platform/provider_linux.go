//go:build linux

package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/x11"
)

// X11 derives the viewport from the active monitor's usable area.
type X11 struct {
	mu            sync.Mutex
	conn          *x11.Connection
	taskbarHeight int
}

var _ ViewportProvider = (*X11)(nil)

func newX11Provider(display string, taskbarHeight int) (*X11, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &X11{conn: conn, taskbarHeight: taskbarHeight}, nil
}

// Conn exposes the X connection for hotkey grabs.
func (p *X11) Conn() *x11.Connection {
	return p.conn
}

func (p *X11) Name() string { return "x11" }

func (p *X11) Viewport(ctx context.Context) (geom.Viewport, error) {
	if err := ctx.Err(); err != nil {
		return geom.Viewport{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return geom.Viewport{}, ErrUnavailable
	}
	m, err := p.conn.GetActiveMonitor()
	if err != nil {
		return geom.Viewport{}, err
	}
	return geom.Viewport{Width: m.Width, Height: m.Height, TaskbarHeight: p.taskbarHeight}, nil
}

func (p *X11) Displays() ([]Display, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil, ErrUnavailable
	}
	monitors, err := p.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		bounds := Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
		displays = append(displays, Display{ID: m.ID, Name: m.Name, Bounds: bounds, Usable: bounds})
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

func (p *X11) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
