package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type style int

const (
	styleDesktop style = iota
	styleFrame
	styleFrameActive
	styleTitle
	styleTitleActive
	styleButton
	styleBody
	styleTaskbar
	styleStart
	styleStartOpen
	styleTask
	styleTaskActive
	styleTaskMinimized
	styleClock
)

var styles = map[style]lipgloss.Style{
	styleDesktop:       lipgloss.NewStyle().Background(lipgloss.Color("24")),
	styleFrame:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236")),
	styleFrameActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Background(lipgloss.Color("236")),
	styleTitle:         lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238")),
	styleTitleActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")),
	styleButton:        lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("238")),
	styleBody:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235")),
	styleTaskbar:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("234")),
	styleStart:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("28")),
	styleStartOpen:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("34")),
	styleTask:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
	styleTaskActive:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")),
	styleTaskMinimized: lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Background(lipgloss.Color("236")),
	styleClock:         lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("234")),
}

type cell struct {
	r rune
	s style
}

// canvas is a grid of styled cells. Writes outside the clip rows are dropped.
type canvas struct {
	w, h  int
	clipY int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 1), max(h, 1)
	c := &canvas{w: w, h: h, clipY: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', s: styleDesktop}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, s style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h || y >= c.clipY {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, s: s}
}

func (c *canvas) at(x, y int) cell {
	return c.cells[y*c.w+x]
}

// text writes s from (x, y), stopping after limit cells.
func (c *canvas) text(x, y int, s string, st style, limit int) {
	n := 0
	for _, r := range s {
		if n >= limit {
			return
		}
		if r < ' ' {
			r = ' '
		}
		c.set(x+n, y, r, st)
		n++
	}
}

func (c *canvas) fill(r cellRect, ch rune, st style) {
	for y := r.y0; y <= r.y1; y++ {
		for x := r.x0; x <= r.x1; x++ {
			c.set(x, y, ch, st)
		}
	}
}

// row renders row y starting at column from, grouping runs of one style.
func (c *canvas) row(y, from int) string {
	var sb strings.Builder
	var run strings.Builder
	cur := style(-1)
	flush := func() {
		if run.Len() > 0 {
			sb.WriteString(styles[cur].Render(run.String()))
			run.Reset()
		}
	}
	for x := max(from, 0); x < c.w; x++ {
		cl := c.at(x, y)
		if cl.s != cur {
			flush()
			cur = cl.s
		}
		run.WriteRune(cl.r)
	}
	flush()
	return sb.String()
}

// plain returns row y without styling.
func (c *canvas) plain(y int) string {
	var sb strings.Builder
	for x := 0; x < c.w; x++ {
		sb.WriteRune(c.at(x, y).r)
	}
	return sb.String()
}

func (c *canvas) lines() []string {
	out := make([]string, c.h)
	for y := range out {
		out[y] = c.row(y, 0)
	}
	return out
}
