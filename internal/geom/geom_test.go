package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	// Inverted range pins to the lower bound.
	assert.Equal(t, 0, Clamp(7, 0, -20))
}

func TestSanitizeCoord(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{"plain", 12.4, 12},
		{"rounds", 12.6, 13},
		{"nan", math.NaN(), 0},
		{"pos inf", math.Inf(1), MaxCoord},
		{"neg inf", math.Inf(-1), -MaxCoord},
		{"huge", 1e300, MaxCoord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeCoord(tt.in))
		})
	}
}

func TestViewportWorkArea(t *testing.T) {
	v := Viewport{Width: 1280, Height: 800, TaskbarHeight: DefaultTaskbarHeight}
	assert.Equal(t, Rect{Width: 1280, Height: 752}, v.WorkArea())

	tiny := Viewport{Width: 100, Height: 20, TaskbarHeight: 48}
	assert.Equal(t, 0, tiny.WorkArea().Height)
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	assert.True(t, r.Contains(Point{X: 10, Y: 14}))
	assert.False(t, r.Contains(Point{X: 15, Y: 10}))
}
