package drawer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Rect is a cell rectangle. Y grows downward.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) is inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Line returns the n-line strip starting i lines below the top of r.
func (r Rect) Line(i, n int) Rect {
	return Rect{X: r.X, Y: r.Y + i, W: r.W, H: n}
}

// Inset shrinks r horizontally.
func (r Rect) Inset(left, right int) Rect {
	out := r
	out.X += left
	out.W -= left + right
	if out.W < 0 {
		out.W = 0
	}
	return out
}

// FarRight returns the w-cell strip at the right edge of r's first line.
func (r Rect) FarRight(w int) Rect {
	if w > r.W {
		w = r.W
	}
	return Rect{X: r.X + r.W - w, Y: r.Y, W: w, H: 1}
}

// Canvas is a fixed-size grid of terminal lines. Writes outside the grid are clipped.
type Canvas struct {
	width int
	lines []string
}

// NewCanvas returns a blank canvas.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{width: width, lines: make([]string, height)}
	blank := strings.Repeat(" ", width)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return len(c.lines) }

// Fill paints r with spaces in the given style.
func (c *Canvas) Fill(r Rect, style lipgloss.Style) {
	if r.W <= 0 {
		return
	}
	row := style.Render(strings.Repeat(" ", r.W))
	for y := r.Y; y < r.Y+r.H; y++ {
		c.Put(r.X, y, row)
	}
}

// Put writes s, which may carry ANSI styling, at column x of line y.
func (c *Canvas) Put(x, y int, s string) {
	if y < 0 || y >= len(c.lines) || x >= c.width {
		return
	}
	if x < 0 {
		s = dropColumns(s, -x)
		x = 0
	}
	s = ansi.Truncate(s, c.width-x, "")
	w := ansi.StringWidth(s)
	if w == 0 {
		return
	}
	line := c.lines[y]
	left := ansi.Truncate(line, x, "")
	right := dropColumns(line, x+w)
	c.lines[y] = padRightANSI(left+s+right, c.width)
}

// Lines returns the rendered lines.
func (c *Canvas) Lines() []string { return append([]string(nil), c.lines...) }

// Plain returns line y with styling removed.
func (c *Canvas) Plain(y int) string {
	if y < 0 || y >= len(c.lines) {
		return ""
	}
	return ansi.Strip(c.lines[y])
}

func (c *Canvas) String() string { return strings.Join(c.lines, "\n") }

func dropColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return ansi.TruncateLeft(s, cols, "")
}

func padRightANSI(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
