package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cutscenes/internal/drawer"
)

// Catppuccin Mocha
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorPink     lipgloss.Color = "#f5c2e7"

	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface0 lipgloss.Color = "#313244"
	colorCrust    lipgloss.Color = "#11111b"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	dirtyStyle  = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	statusStyle = lipgloss.NewStyle().Foreground(colorTeal)
	savedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	modalTitle  = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	pickerFocus = lipgloss.NewStyle().Foreground(colorCrust).Background(colorLavender)
)

// listTheme styles the token rows. Row backgrounds come from the type colors, so text
// is kept dark.
func listTheme() drawer.Theme {
	t := drawer.DefaultTheme()
	t.Footer = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0)
	t.Muted = lipgloss.NewStyle().Foreground(colorSurface2)
	t.Remove = lipgloss.NewStyle().Foreground(colorCrust).Background(colorRed)
	t.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a5a00")).Bold(true)
	t.Focused = lipgloss.NewStyle().Foreground(colorCrust).Background(colorYellow)
	return t
}

func levelStyle(high bool) lipgloss.Style {
	if high {
		return errorStyle
	}
	return lipgloss.NewStyle().Foreground(colorYellow)
}
