package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	// browser
	Open   key.Binding
	New    key.Binding
	Delete key.Binding
	Reset  key.Binding
	Quit   key.Binding

	// editor
	Move      key.Binding
	Field     key.Binding
	Adjust    key.Binding
	Edit      key.Binding
	Add       key.Binding
	Remove    key.Binding
	Copy      key.Binding
	Paste     key.Binding
	Duplicate key.Binding
	Save      key.Binding
	Rename    key.Binding
	Colors    key.Binding
	Back      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reset:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "delete all")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),

		Move:      key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select")),
		Field:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "field")),
		Adjust:    key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "adjust")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Remove:    key.NewBinding(key.WithKeys("delete", "x"), key.WithHelp("x", "remove")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Paste:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "paste")),
		Duplicate: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "duplicate")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Colors:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "colors")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

func (k keyMap) BrowserHelp() []key.Binding {
	return []key.Binding{k.Open, k.New, k.Delete, k.Reset, k.Quit}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Field, k.Edit, k.Add, k.Remove, k.Save, k.Back, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Field, k.Adjust, k.Edit},
		{k.Add, k.Remove, k.Copy, k.Paste, k.Duplicate},
		{k.Save, k.Rename, k.Colors, k.Back, k.ForceQuit, k.Help},
	}
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
