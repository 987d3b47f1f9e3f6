package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestApplyStruts_BottomPanel(t *testing.T) {
	m := Monitor{Name: "eDP-1", Width: 1920, Height: 1080}
	panel := FullStrut(&ewmh.WmStrut{Bottom: 40}, 1920, 1080)

	got, ok := ApplyStruts(m, 1920, 1080, []ewmh.WmStrutPartial{panel})
	if !ok {
		t.Fatal("ApplyStruts() reported no strut")
	}
	want := Monitor{Name: "eDP-1", Width: 1920, Height: 1040}
	if got != want {
		t.Errorf("ApplyStruts() = %+v, want %+v", got, want)
	}
}

func TestApplyStruts_OnlyTouchesOverlappingMonitor(t *testing.T) {
	// Two side-by-side monitors, top bar only on the left one.
	left := Monitor{ID: 0, Width: 1920, Height: 1080}
	right := Monitor{ID: 1, X: 1920, Width: 1920, Height: 1080}
	bar := ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	got, ok := ApplyStruts(left, 3840, 1080, []ewmh.WmStrutPartial{bar})
	if !ok || got.Y != 30 || got.Height != 1050 {
		t.Errorf("left = %+v ok=%v", got, ok)
	}
	got, ok = ApplyStruts(right, 3840, 1080, []ewmh.WmStrutPartial{bar})
	if ok || got != right {
		t.Errorf("right = %+v ok=%v, want untouched", got, ok)
	}
}

func TestApplyStruts_SideDocks(t *testing.T) {
	m := Monitor{Width: 1000, Height: 800}
	struts := []ewmh.WmStrutPartial{
		{Left: 64, LeftStartY: 0, LeftEndY: 799},
		{Right: 20, RightStartY: 0, RightEndY: 799},
		{Left: 48, LeftStartY: 0, LeftEndY: 799},
	}
	got, ok := ApplyStruts(m, 1000, 800, struts)
	if !ok {
		t.Fatal("expected struts to apply")
	}
	if got.X != 64 || got.Width != 1000-64-20 {
		t.Errorf("got %+v", got)
	}
}

func TestClipToWorkarea(t *testing.T) {
	m := Monitor{Width: 1920, Height: 1080}

	got := ClipToWorkarea(m, ewmh.Workarea{X: 0, Y: 28, Width: 1920, Height: 1052})
	if got.Y != 28 || got.Height != 1052 || got.Width != 1920 {
		t.Errorf("ClipToWorkarea() = %+v", got)
	}

	miss := ClipToWorkarea(m, ewmh.Workarea{X: 5000, Y: 0, Width: 100, Height: 100})
	if miss != m {
		t.Errorf("disjoint work area changed monitor: %+v", miss)
	}
}
