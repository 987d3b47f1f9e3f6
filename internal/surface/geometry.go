// Package surface turns pointer gestures into window geometry.
package surface

import "github.com/1broseidon/deskwm/internal/geom"

// DragPosition returns where a window starting at start lands after the
// pointer moved from startPointer to pointer. The window stays inside the
// work area; when it is larger than the work area it pins to the origin.
func DragPosition(start geom.Rect, startPointer, pointer geom.Point, v geom.Viewport) geom.Point {
	d := geom.ClampPoint(pointer).Sub(geom.ClampPoint(startPointer))
	return geom.Point{
		X: geom.Clamp(start.X+d.X, 0, v.Width-start.Width),
		Y: geom.Clamp(start.Y+d.Y, 0, v.Height-v.TaskbarHeight-start.Height),
	}
}

// ResizeBounds applies the handle rules of dir to start for a pointer delta d.
// Each axis is computed independently from the start snapshot.
func ResizeBounds(start geom.Rect, minSize geom.Size, dir Direction, d geom.Point, v geom.Viewport) geom.Rect {
	d = geom.ClampPoint(d)
	h, vr := dir.Axes()
	out := start

	switch h {
	case HRight:
		out.Width = growFar(start.X, start.Width, minSize.Width, d.X, v.Width)
	case HLeft:
		out.X, out.Width = growNear(start.X, start.Width, minSize.Width, d.X)
	}
	switch vr {
	case VBottom:
		out.Height = growFar(start.Y, start.Height, minSize.Height, d.Y, v.Height-v.TaskbarHeight)
	case VTop:
		out.Y, out.Height = growNear(start.Y, start.Height, minSize.Height, d.Y)
	}
	return out
}

// growFar moves the far edge (right or bottom). The edge stops at limit unless
// the minimum size forces it past.
func growFar(pos, size, floor, delta, limit int) int {
	size = max(floor, size+delta)
	if pos+size > limit {
		size = limit - pos
	}
	return max(size, floor)
}

// growNear moves the near edge (left or top) while the far edge stays put.
func growNear(pos, size, floor, delta int) (int, int) {
	cand := size - delta
	var newPos, newSize int
	if cand < floor {
		newSize = floor
		newPos = pos + (size - floor)
	} else {
		newSize = cand
		newPos = pos + delta
	}
	if newPos < 0 {
		newSize = max(floor, newSize+newPos)
		newPos = 0
	}
	return newPos, newSize
}
