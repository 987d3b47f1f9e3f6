package tui

import (
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/wm"
)

// One terminal cell stands for cellW x cellH desktop pixels.
const (
	cellW       = 8
	cellH       = 16
	taskbarRows = 3

	startLabel      = " Start "
	taskButtonWidth = 18
	clockWidth      = 7
)

// viewportFor is the desktop size of a cols x rows terminal.
func viewportFor(cols, rows int) geom.Viewport {
	return geom.Viewport{
		Width:         max(cols, 1) * cellW,
		Height:        max(rows, 1) * cellH,
		TaskbarHeight: taskbarRows * cellH,
	}
}

// cellRect is an inclusive rectangle of terminal cells.
type cellRect struct {
	x0, y0, x1, y1 int
}

func (c cellRect) contains(col, row int) bool {
	return col >= c.x0 && col <= c.x1 && row >= c.y0 && row <= c.y1
}

func (c cellRect) width() int  { return c.x1 - c.x0 + 1 }
func (c cellRect) height() int { return c.y1 - c.y0 + 1 }

// cellsFor maps pixel bounds onto the cells they cover.
func cellsFor(r geom.Rect) cellRect {
	return cellRect{
		x0: floorDiv(r.X, cellW),
		y0: floorDiv(r.Y, cellH),
		x1: floorDiv(r.X+max(r.Width, 1)-1, cellW),
		y1: floorDiv(r.Y+max(r.Height, 1)-1, cellH),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// pixelAt is the desktop point at the center of a cell.
func pixelAt(col, row int) geom.Point {
	return geom.Point{X: col*cellW + cellW/2, Y: row*cellH + cellH/2}
}

type hitKind int

const (
	hitDesktop hitKind = iota
	hitBody
	hitTitle
	hitMinimize
	hitMaximize
	hitClose
	hitHandle
	hitStart
	hitTask
)

// hit is what lies under a cell.
type hit struct {
	kind     hitKind
	windowID string
	dir      surface.Direction
}

// titleButtons are drawn at the right end of the title row, in this order.
var titleButtons = []struct {
	label string
	kind  hitKind
}{
	{"[_]", hitMinimize},
	{"[□]", hitMaximize},
	{"[x]", hitClose},
}

const titleButtonWidth = 3

// buttonsStart is the first column of the title buttons of a window drawn at c.
func buttonsStart(c cellRect) int {
	return c.x1 - len(titleButtons)*titleButtonWidth
}

// frame returns the cells a window occupies on screen.
func frame(w wm.Window, v geom.Viewport) cellRect {
	return cellsFor(w.DisplayBounds(v))
}

// hitTest resolves a cell against the drawn desktop.
func hitTest(snap wm.Snapshot, cols, rows, col, row int) hit {
	if row >= rows-taskbarRows {
		return hitTaskbar(snap, cols, col)
	}

	stacked := snap.Stacked()
	for i := len(stacked) - 1; i >= 0; i-- {
		w := stacked[i]
		if w.Minimized {
			continue
		}
		c := frame(w, snap.Viewport)
		if !c.contains(col, row) {
			continue
		}
		return hitWindow(w, c, col, row)
	}
	return hit{kind: hitDesktop}
}

func hitWindow(w wm.Window, c cellRect, col, row int) hit {
	h := hit{kind: hitBody, windowID: w.ID}

	if w.Resizable && !w.Maximized {
		if dir, ok := handleAt(c, col, row); ok {
			h.kind, h.dir = hitHandle, dir
			return h
		}
	}

	switch row {
	case c.y0 + 1:
		if bs := buttonsStart(c); col >= bs && col < bs+len(titleButtons)*titleButtonWidth {
			h.kind = titleButtons[(col-bs)/titleButtonWidth].kind
			return h
		}
		h.kind = hitTitle
	case c.y0:
		// Top border of a window without handles.
		h.kind = hitTitle
	}
	return h
}

// handleAt maps the border cells of c to resize handles.
func handleAt(c cellRect, col, row int) (surface.Direction, bool) {
	top, bottom := row == c.y0, row == c.y1
	left, right := col == c.x0, col == c.x1
	switch {
	case top && left:
		return surface.DirTopLeft, true
	case top && right:
		return surface.DirTopRight, true
	case bottom && left:
		return surface.DirBottomLeft, true
	case bottom && right:
		return surface.DirBottomRight, true
	case top:
		return surface.DirTop, true
	case bottom:
		return surface.DirBottom, true
	case left:
		return surface.DirLeft, true
	case right:
		return surface.DirRight, true
	}
	return 0, false
}

// taskButtons returns the taskbar entries in open order with their first
// column. Entries that do not fit before the clock are dropped.
func taskButtons(snap wm.Snapshot, cols int) []taskButton {
	var out []taskButton
	col := len(startLabel) + 2
	limit := cols - clockWidth - 1
	for _, w := range snap.Windows {
		if col+taskButtonWidth > limit {
			break
		}
		out = append(out, taskButton{window: w, col: col})
		col += taskButtonWidth + 1
	}
	return out
}

type taskButton struct {
	window wm.Window
	col    int
}

func hitTaskbar(snap wm.Snapshot, cols, col int) hit {
	if col >= 1 && col < 1+len(startLabel) {
		return hit{kind: hitStart}
	}
	for _, b := range taskButtons(snap, cols) {
		if col >= b.col && col < b.col+taskButtonWidth {
			return hit{kind: hitTask, windowID: b.window.ID}
		}
	}
	return hit{kind: hitDesktop}
}
