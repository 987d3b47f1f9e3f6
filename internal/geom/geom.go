// Package geom holds the pixel geometry shared by the window manager and its
// shells.
package geom

import "math"

// DefaultTaskbarHeight is the vertical space reserved at the bottom of the
// viewport for the taskbar.
const DefaultTaskbarHeight = 48

// MaxCoord bounds any coordinate accepted from a pointer source.
const MaxCoord = 1 << 30

// Point is a pointer position in viewport pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// IsZero reports whether both dimensions are unset.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Viewport describes the host surface the desktop is drawn on.
type Viewport struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	TaskbarHeight int `json:"taskbar_height"`
}

// WorkArea is the region above the taskbar where windows live.
func (v Viewport) WorkArea() Rect {
	h := v.Height - v.TaskbarHeight
	if h < 0 {
		h = 0
	}
	w := v.Width
	if w < 0 {
		w = 0
	}
	return Rect{Width: w, Height: h}
}

// Clamp pins v into [lo, hi]. When hi < lo the lower bound wins.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// SanitizeCoord converts an untrusted coordinate to an int within
// [-MaxCoord, MaxCoord]. NaN maps to zero.
func SanitizeCoord(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= MaxCoord:
		return MaxCoord
	case v <= -MaxCoord:
		return -MaxCoord
	}
	return int(math.Round(v))
}

// SanitizePoint applies SanitizeCoord to both axes.
func SanitizePoint(x, y float64) Point {
	return Point{X: SanitizeCoord(x), Y: SanitizeCoord(y)}
}

// ClampPoint bounds an integer point to the accepted coordinate range.
func ClampPoint(p Point) Point {
	return Point{X: Clamp(p.X, -MaxCoord, MaxCoord), Y: Clamp(p.Y, -MaxCoord, MaxCoord)}
}
