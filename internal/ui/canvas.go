package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellAspect is how many times taller a terminal cell is than it is wide.
const cellAspect = 2.0

// cell is one character of a canvas with its colour.
type cell struct {
	ch    rune
	color string // lipgloss colour; empty for the default
	bold  bool
	label bool // part of a label, may be displaced by a winning label
}

var blank = cell{ch: ' '}

// canvas is a fixed-size character grid rendered with lipgloss.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = blank
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

func (c *canvas) at(x, y int) cell {
	if !c.inside(x, y) {
		return blank
	}
	return c.cells[y][x]
}

func (c *canvas) set(x, y int, ch rune, color string, bold bool) {
	if c.inside(x, y) {
		c.cells[y][x] = cell{ch: ch, color: color, bold: bold}
	}
}

// setIfEmpty draws only on blank cells.
func (c *canvas) setIfEmpty(x, y int, ch rune, color string) {
	if c.inside(x, y) && c.cells[y][x].ch == ' ' {
		c.cells[y][x] = cell{ch: ch, color: color}
	}
}

// disc fills a circle of radius r rows centred on (cx, cy). Columns are
// scaled by cellAspect so the disc looks round.
func (c *canvas) disc(cx, cy int, r float64, ch rune, color string) {
	ry := int(math.Ceil(r))
	rx := int(math.Ceil(r * cellAspect))
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			fx := float64(dx) / cellAspect
			fy := float64(dy)
			if fx*fx+fy*fy <= r*r {
				c.set(cx+dx, cy+dy, ch, color, false)
			}
		}
	}
}

// fits reports whether s can be written at (x, y) covering only blank or
// dim cells, and other labels when overLabels is set. Cells past the right
// edge are clipped.
func (c *canvas) fits(x, y int, s string, overLabels bool) bool {
	if !c.inside(x, y) {
		return false
	}
	for i := range []rune(s) {
		if !c.inside(x+i, y) {
			break
		}
		cur := c.cells[y][x+i]
		if cur.ch == ' ' || cur.ch == '·' || (overLabels && cur.label) {
			continue
		}
		return false
	}
	return true
}

func (c *canvas) writeLabel(x, y int, s string, color string) {
	for i, r := range []rune(s) {
		if c.inside(x+i, y) {
			c.cells[y][x+i] = cell{ch: r, color: color, label: true}
		}
	}
}

// label places s beside a body on row y, or the row above or below when
// that row is taken. A winning label may displace other labels but never
// body glyphs. It reports whether the label was drawn.
func (c *canvas) label(x, y int, s string, color string, wins bool) bool {
	rows := []int{y, y - 1, y + 1}
	for _, row := range rows {
		if c.fits(x, row, s, false) {
			c.writeLabel(x, row, s, color)
			return true
		}
	}
	if !wins {
		return false
	}
	for _, row := range rows {
		if c.fits(x, row, s, true) {
			c.writeLabel(x, row, s, color)
			return true
		}
	}
	return false
}

// render converts the grid to a string, batching runs of equal style.
func (c *canvas) render() string {
	var b strings.Builder
	for y, row := range c.cells {
		var run strings.Builder
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.color == "" && !cur.bold {
				b.WriteString(run.String())
			} else {
				style := lipgloss.NewStyle().Bold(cur.bold)
				if cur.color != "" {
					style = style.Foreground(lipgloss.Color(cur.color))
				}
				b.WriteString(style.Render(run.String()))
			}
			run.Reset()
		}
		for x, ch := range row {
			if x == 0 || ch.color != cur.color || ch.bold != cur.bold {
				flush()
				cur = ch
			}
			run.WriteRune(ch.ch)
		}
		flush()
		if y < len(c.cells)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// plain returns the grid without styling, for tests and headless dumps.
func (c *canvas) plain() string {
	var b strings.Builder
	for y, row := range c.cells {
		for _, ch := range row {
			b.WriteRune(ch.ch)
		}
		if y < len(c.cells)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
