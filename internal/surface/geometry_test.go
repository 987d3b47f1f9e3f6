package surface

import (
	"math/rand"
	"testing"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vp = geom.Viewport{Width: 1000, Height: 800, TaskbarHeight: 48}

func TestDirectionAxes(t *testing.T) {
	tests := []struct {
		dir Direction
		h   HRule
		v   VRule
	}{
		{DirTop, HNone, VTop},
		{DirBottom, HNone, VBottom},
		{DirLeft, HLeft, VNone},
		{DirRight, HRight, VNone},
		{DirTopLeft, HLeft, VTop},
		{DirTopRight, HRight, VTop},
		{DirBottomLeft, HLeft, VBottom},
		{DirBottomRight, HRight, VBottom},
	}
	for _, tt := range tests {
		h, v := tt.dir.Axes()
		assert.Equal(t, tt.h, h, tt.dir.String())
		assert.Equal(t, tt.v, v, tt.dir.String())
	}
	assert.Len(t, Directions, 8)
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	got, err := ParseDirection("SE")
	require.NoError(t, err)
	assert.Equal(t, DirBottomRight, got)

	_, err = ParseDirection("middle")
	assert.Error(t, err)
	assert.False(t, Direction(0).Valid())
}

func TestDragPosition_ClampsToWorkArea(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 300, Height: 200}
	from := geom.Point{X: 150, Y: 110}

	tests := []struct {
		name string
		to   geom.Point
		want geom.Point
	}{
		{"inside", geom.Point{X: 160, Y: 130}, geom.Point{X: 110, Y: 120}},
		{"past left/top", geom.Point{X: -900, Y: -900}, geom.Point{X: 0, Y: 0}},
		{"past right", geom.Point{X: 5000, Y: 110}, geom.Point{X: 700, Y: 100}},
		{"past taskbar", geom.Point{X: 150, Y: 5000}, geom.Point{X: 100, Y: 552}},
		{"huge", geom.Point{X: 1 << 40, Y: -(1 << 40)}, geom.Point{X: 700, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DragPosition(start, from, tt.to, vp))
		})
	}
}

func TestDragPosition_WindowLargerThanViewportPinsToOrigin(t *testing.T) {
	start := geom.Rect{X: 0, Y: 0, Width: 1200, Height: 900}
	got := DragPosition(start, geom.Point{}, geom.Point{X: 50, Y: 50}, vp)
	assert.Equal(t, geom.Point{}, got)
}

func TestResizeBounds_Right(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	minSize := geom.Size{Width: 200, Height: 150}

	got := ResizeBounds(start, minSize, DirRight, geom.Point{X: 50}, vp)
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 450, Height: 300}, got)

	got = ResizeBounds(start, minSize, DirRight, geom.Point{X: -1000}, vp)
	assert.Equal(t, 200, got.Width)

	// Right edge stops at the viewport.
	got = ResizeBounds(start, minSize, DirRight, geom.Point{X: 5000}, vp)
	assert.Equal(t, 900, got.Width)
}

func TestResizeBounds_BottomStopsAtTaskbar(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	got := ResizeBounds(start, geom.Size{Width: 200, Height: 150}, DirBottom, geom.Point{Y: 5000}, vp)
	assert.Equal(t, 652, got.Height)
	assert.Equal(t, 100, got.Y)
}

func TestResizeBounds_LeftPastMinimumKeepsRightEdge(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	minSize := geom.Size{Width: 200, Height: 150}

	got := ResizeBounds(start, minSize, DirLeft, geom.Point{X: 350}, vp)
	assert.Equal(t, 200, got.Width)
	assert.Equal(t, 300, got.X)
	assert.Equal(t, start.Right(), got.Right())
}

func TestResizeBounds_TopPastMinimumKeepsBottomEdge(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	minSize := geom.Size{Width: 200, Height: 150}

	got := ResizeBounds(start, minSize, DirTop, geom.Point{Y: 9999}, vp)
	assert.Equal(t, 150, got.Height)
	assert.Equal(t, 250, got.Y)
	assert.Equal(t, start.Bottom(), got.Bottom())
}

func TestResizeBounds_LeftIntoNegativeOrigin(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	minSize := geom.Size{Width: 200, Height: 150}

	got := ResizeBounds(start, minSize, DirLeft, geom.Point{X: -300}, vp)
	assert.Equal(t, 0, got.X)
	assert.Equal(t, 500, got.Width)
	assert.Equal(t, start.Right(), got.Right())
}

func TestResizeBounds_DiagonalAppliesBothAxes(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	minSize := geom.Size{Width: 200, Height: 150}

	got := ResizeBounds(start, minSize, DirTopLeft, geom.Point{X: -20, Y: 30}, vp)
	assert.Equal(t, geom.Rect{X: 80, Y: 130, Width: 420, Height: 270}, got)

	got = ResizeBounds(start, minSize, DirBottomRight, geom.Point{X: 10, Y: 20}, vp)
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 410, Height: 320}, got)

	got = ResizeBounds(start, minSize, DirTopRight, geom.Point{X: 10, Y: -20}, vp)
	assert.Equal(t, geom.Rect{X: 100, Y: 80, Width: 410, Height: 320}, got)
}

func TestResizeBounds_MinimumLargerThanViewportWins(t *testing.T) {
	start := geom.Rect{X: 0, Y: 0, Width: 1200, Height: 900}
	minSize := geom.Size{Width: 1200, Height: 900}
	got := ResizeBounds(start, minSize, DirBottomRight, geom.Point{X: -500, Y: -500}, vp)
	assert.Equal(t, 1200, got.Width)
	assert.Equal(t, 900, got.Height)
}

func TestResizeBounds_InvariantsUnderRandomDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	minSize := geom.Size{Width: 150, Height: 100}
	for i := 0; i < 5000; i++ {
		start := geom.Rect{
			X:      rng.Intn(500),
			Y:      rng.Intn(400),
			Width:  150 + rng.Intn(400),
			Height: 100 + rng.Intn(300),
		}
		dir := Directions[rng.Intn(len(Directions))]
		d := geom.Point{X: rng.Intn(4000) - 2000, Y: rng.Intn(4000) - 2000}
		got := ResizeBounds(start, minSize, dir, d, vp)

		require.GreaterOrEqual(t, got.Width, minSize.Width)
		require.GreaterOrEqual(t, got.Height, minSize.Height)
		require.GreaterOrEqual(t, got.X, 0)
		require.GreaterOrEqual(t, got.Y, 0)

		h, v := dir.Axes()
		if h == HLeft && got.X > 0 {
			require.Equal(t, start.Right(), got.Right(), "left resize moved right edge")
		}
		if v == VTop && got.Y > 0 {
			require.Equal(t, start.Bottom(), got.Bottom(), "top resize moved bottom edge")
		}
		if h == HNone {
			require.Equal(t, start.X, got.X)
			require.Equal(t, start.Width, got.Width)
		}
		if v == VNone {
			require.Equal(t, start.Y, got.Y)
			require.Equal(t, start.Height, got.Height)
		}
	}
}
