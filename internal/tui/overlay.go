package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cutscenes/internal/drawer"
)

var popupStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorLavender).
	Padding(1, 2)

// renderPopup composites popup, framed as a card, over the centre of base. Base lines
// keep their styling outside the card.
func renderPopup(base, popup string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base
	}
	c := drawer.NewCanvas(width, height)
	for i, line := range strings.Split(base, "\n") {
		c.Put(0, i, line)
	}
	card := popupStyle.MaxWidth(width).Render(popup)
	x := (width - lipgloss.Width(card)) / 2
	y := (height - lipgloss.Height(card)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	for i, line := range strings.Split(card, "\n") {
		c.Put(x, y+i, line)
	}
	return c.String()
}
