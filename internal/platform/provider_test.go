package platform

import (
	"context"
	"testing"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/geom"
)

func TestNewProvider_Static(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Viewport.Source = config.ViewportStatic
	cfg.Viewport.Width = 1024
	cfg.Viewport.Height = 768

	p, err := NewProvider(cfg, nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer p.Close()

	if p.Name() != "static" {
		t.Errorf("Name() = %q, want static", p.Name())
	}
	v, err := p.Viewport(context.Background())
	if err != nil {
		t.Fatalf("Viewport() error = %v", err)
	}
	want := geom.Viewport{Width: 1024, Height: 768, TaskbarHeight: 48}
	if v != want {
		t.Errorf("Viewport() = %+v, want %+v", v, want)
	}

	displays, err := p.Displays()
	if err != nil || len(displays) != 1 || displays[0].Bounds.Width != 1024 {
		t.Errorf("Displays() = %+v, %v", displays, err)
	}
}

func TestNewProvider_AutoFallsBackWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	cfg := config.DefaultConfig()
	cfg.Display = ":987"

	p, err := NewProvider(cfg, nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer p.Close()
	if p.Name() != "static" {
		t.Errorf("Name() = %q, want static fallback", p.Name())
	}
}

func TestNewProvider_X11RequiredFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Viewport.Source = config.ViewportX11
	cfg.Display = ":987"
	if _, err := NewProvider(cfg, nil); err == nil {
		t.Error("NewProvider(x11) on a missing display should fail")
	}
}
