package x11

import "github.com/BurntSushi/xgbutil/ewmh"

// FullStrut widens a plain _NET_WM_STRUT to span the whole root edge.
func FullStrut(s *ewmh.WmStrut, rootW, rootH int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootH - 1),
		RightEndY:  uint(rootH - 1),
		TopEndX:    uint(rootW - 1),
		BottomEndX: uint(rootW - 1),
	}
}

type span struct{ x1, y1, x2, y2 int }

func (a span) overlap(b span) (int, int) {
	w := min(a.x2, b.x2) - max(a.x1, b.x1)
	h := min(a.y2, b.y2) - max(a.y1, b.y1)
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}

// ApplyStruts shrinks m by the dock struts that overlap it. It reports false
// when no strut touches the monitor.
func ApplyStruts(m Monitor, rootW, rootH int, struts []ewmh.WmStrutPartial) (Monitor, bool) {
	mon := span{m.X, m.Y, m.X + m.Width, m.Y + m.Height}
	var left, right, top, bottom int

	for _, sp := range struts {
		if sp.Top > 0 {
			_, h := mon.overlap(span{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)})
			top = max(top, h)
		}
		if sp.Bottom > 0 {
			_, h := mon.overlap(span{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH})
			bottom = max(bottom, h)
		}
		if sp.Left > 0 {
			w, _ := mon.overlap(span{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1})
			left = max(left, w)
		}
		if sp.Right > 0 {
			w, _ := mon.overlap(span{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1})
			right = max(right, w)
		}
	}

	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return m, false
	}

	m.X += left
	m.Y += top
	m.Width = max(1, m.Width-left-right)
	m.Height = max(1, m.Height-top-bottom)
	return m, true
}

// ClipToWorkarea intersects m with an EWMH work area. A work area that misses
// the monitor leaves it unchanged.
func ClipToWorkarea(m Monitor, wa ewmh.Workarea) Monitor {
	x1 := max(m.X, int(wa.X))
	y1 := max(m.Y, int(wa.Y))
	x2 := min(m.X+m.Width, int(wa.X)+int(wa.Width))
	y2 := min(m.Y+m.Height, int(wa.Y)+int(wa.Height))
	if x2 <= x1 || y2 <= y1 {
		return m
	}
	m.X, m.Y = x1, y1
	m.Width, m.Height = x2-x1, y2-y1
	return m
}
