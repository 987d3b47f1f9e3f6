package tui

import (
	"fmt"
	"time"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/wm"
)

// drawDesktop paints windows back to front, then the taskbar.
func drawDesktop(snap wm.Snapshot, cols, rows int, now time.Time, menuOpen bool, status string) *canvas {
	c := newCanvas(cols, rows)
	c.clipY = rows - taskbarRows
	for _, w := range snap.Stacked() {
		if w.Minimized {
			continue
		}
		drawWindow(c, w, snap.Viewport)
	}
	c.clipY = rows
	drawTaskbar(c, snap, now, menuOpen, status)
	return c
}

func drawWindow(c *canvas, w wm.Window, v geom.Viewport) {
	f := frame(w, v)
	if f.width() < 3 || f.height() < 3 {
		return
	}

	border, title := styleFrame, styleTitle
	if w.Active {
		border, title = styleFrameActive, styleTitleActive
	}

	c.fill(f, ' ', styleBody)
	for x := f.x0 + 1; x < f.x1; x++ {
		c.set(x, f.y0, '─', border)
		c.set(x, f.y1, '─', border)
	}
	for y := f.y0 + 1; y < f.y1; y++ {
		c.set(f.x0, y, '│', border)
		c.set(f.x1, y, '│', border)
	}
	c.set(f.x0, f.y0, '┌', border)
	c.set(f.x1, f.y0, '┐', border)
	c.set(f.x0, f.y1, '└', border)
	c.set(f.x1, f.y1, '┘', border)

	ty := f.y0 + 1
	if ty >= f.y1 {
		return
	}
	c.fill(cellRect{x0: f.x0 + 1, y0: ty, x1: f.x1 - 1, y1: ty}, ' ', title)

	label := w.Title
	switch {
	case w.Dragging:
		label += " (moving)"
	case w.Resizing:
		label += " (resizing)"
	}
	bs := buttonsStart(f)
	c.text(f.x0+2, ty, label, title, bs-f.x0-3)
	for i, b := range titleButtons {
		c.text(bs+i*titleButtonWidth, ty, b.label, styleButton, titleButtonWidth)
	}

	if w.Content == nil {
		return
	}
	inner := f.width() - 4
	for i, line := range w.Content.Lines() {
		y := ty + 2 + i
		if y >= f.y1 {
			break
		}
		c.text(f.x0+2, y, line, styleBody, inner)
	}
}

func drawTaskbar(c *canvas, snap wm.Snapshot, now time.Time, menuOpen bool, status string) {
	top := c.h - taskbarRows
	c.fill(cellRect{x0: 0, y0: top, x1: c.w - 1, y1: c.h - 1}, ' ', styleTaskbar)
	for x := 0; x < c.w; x++ {
		c.set(x, top, '▔', styleTaskbar)
	}

	mid := top + 1
	start := styleStart
	if menuOpen {
		start = styleStartOpen
	}
	c.text(1, mid, startLabel, start, len(startLabel))

	for _, b := range taskButtons(snap, c.w) {
		st := styleTask
		switch {
		case b.window.Minimized:
			st = styleTaskMinimized
		case b.window.Active:
			st = styleTaskActive
		}
		label := fmt.Sprintf(" %-*s", taskButtonWidth-1, b.window.Title)
		c.text(b.col, mid, label, st, taskButtonWidth)
	}

	c.text(c.w-clockWidth, mid, fmt.Sprintf(" %5s ", now.Format("15:04")), styleClock, clockWidth)
	if status != "" {
		c.text(1, c.h-1, status, styleTaskbar, c.w-2)
	}
}
