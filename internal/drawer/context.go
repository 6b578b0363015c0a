package drawer

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cutscenes/internal/token"
)

// NameField is the focus index of a token's name line; fields are numbered from 0.
const NameField = -1

// Focus addresses the field that receives input.
type Focus struct {
	Token int
	Field int
}

// Input is one edit addressed to the focused field. Either Key is set, or Commit is true
// and Text holds the submitted text.
type Input struct {
	Key    string
	Text   string
	Commit bool
}

// Marker tags a field label, e.g. with a validation result.
type Marker int

const (
	MarkNone Marker = iota
	MarkWarning
	MarkError
)

// TokenDrawn is passed to token observers before a token is drawn. Observers may
// rewrite Label.
type TokenDrawn struct {
	Rect  Rect
	Seq   *token.Sequence
	Token *token.Token
	Index int
	Label string
}

// FieldDrawn is passed to field observers before each field is drawn. Observers may
// rewrite Label and set Marker.
type FieldDrawn struct {
	Rect       Rect
	Seq        *token.Sequence
	Token      *token.Token
	TokenIndex int
	Field      token.Field
	FieldIndex int
	Label      string
	Marker     Marker
}

type (
	TokenObserver func(*TokenDrawn)
	FieldObserver func(*FieldDrawn)
)

// Theme holds the styles used while drawing rows.
type Theme struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Focused lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Handle  lipgloss.Style
	Remove  lipgloss.Style
	Footer  lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultTheme returns the built-in styles.
func DefaultTheme() Theme {
	return Theme{
		Header:  lipgloss.NewStyle().Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("232")),
		Focused: lipgloss.NewStyle().Reverse(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("136")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
		Handle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Remove:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("160")),
		Footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Context carries everything a drawer needs for one frame. It replaces ambient GUI
// state: the widget builds one per Draw call and threads it through every drawer.
type Context struct {
	Canvas *Canvas
	Theme  Theme
	Seq    *token.Sequence
	Focus  Focus
	// Input is consumed by the first drawer drawn at Focus.
	Input          *Input
	TokenObservers []TokenObserver
	FieldObservers []FieldObserver

	row     lipgloss.Style
	current Focus
	hasRow  bool
	marker  Marker
}

// NewContext returns a context drawing onto c with no focus.
func NewContext(c *Canvas, seq *token.Sequence) *Context {
	return &Context{
		Canvas: c,
		Theme:  DefaultTheme(),
		Seq:    seq,
		Focus:  Focus{Token: -1, Field: NameField},
	}
}

// SetRow sets the background style of the row being drawn.
func (c *Context) SetRow(style lipgloss.Style) {
	c.row = style
	c.hasRow = true
}

func (c *Context) enter(tokenIndex, field int, m Marker) {
	c.current = Focus{Token: tokenIndex, Field: field}
	c.marker = m
}

func (c *Context) labelStyle() lipgloss.Style {
	switch c.marker {
	case MarkError:
		return c.Theme.Error
	case MarkWarning:
		return c.Theme.Warning
	}
	return c.Theme.Label
}

// Focused reports whether the field being drawn has focus.
func (c *Context) Focused() bool {
	return c.current == c.Focus
}

// TakeInput returns the pending input if the field being drawn has focus, and clears it.
func (c *Context) TakeInput() *Input {
	if !c.Focused() || c.Input == nil {
		return nil
	}
	in := c.Input
	c.Input = nil
	return in
}

// Print writes s at (x, y) in style, keeping the row background.
func (c *Context) Print(x, y int, style lipgloss.Style, s string) {
	if c.Canvas == nil {
		return
	}
	if c.hasRow {
		style = style.Inherit(c.row)
	}
	c.Canvas.Put(x, y, style.Render(s))
}
