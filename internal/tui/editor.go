package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/cutscenes/internal/database/repository"
	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/tokenlist"
	"github.com/jask/cutscenes/internal/validate"
)

const (
	wheelStep     = 3
	maxIssueLines = 4
)

// redraw runs one frame of the token list and caches it for View.
func (a *App) redraw() {
	if a.state != viewEditor || a.list == nil || a.width <= 0 {
		return
	}
	a.report = a.session.Validate()
	frame := a.list.Draw(a.width, a.observers())
	if frame.Changed {
		a.session.MarkDirty()
		a.report = a.session.Validate()
		// markers were drawn against the old values
		frame = a.list.Repaint(a.width, a.observers())
		frame.Changed = true
	}
	a.frame = frame
	a.refreshIssues()
	a.layout()
}

func (a *App) observers() tokenlist.Observers {
	counts := map[int]int{}
	for _, n := range a.report.Notices {
		counts[n.Token]++
	}
	return tokenlist.Observers{
		Tokens: []drawer.TokenObserver{func(td *drawer.TokenDrawn) {
			switch n := counts[td.Index]; {
			case n == 1:
				td.Label += "  (1 issue)"
			case n > 1:
				td.Label += fmt.Sprintf("  (%d issues)", n)
			}
		}},
		Fields: []drawer.FieldObserver{a.report.Observer()},
	}
}

func issueColumns(width int) []table.Column {
	msgW := max(width-4-5-16-24-8, 12)
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Row", Width: 4},
		{Title: "Field", Width: 14},
		{Title: "Message", Width: msgW},
		{Title: "Hint", Width: 22},
	}
}

func (a *App) refreshIssues() {
	seq := a.session.Sequence()
	rows := make([]table.Row, 0, len(a.report.Notices))
	for _, n := range a.report.Notices {
		field := ""
		if t := seq.At(n.Token); t != nil && n.Field >= 0 && n.Field < t.NumFields() {
			field = drawer.Label(t.Field(n.Field).Def.Name)
		}
		mark := "?"
		if n.Level == validate.High {
			mark = "!"
		}
		rows = append(rows, table.Row{mark, fmt.Sprintf("#%d", n.Token), field, n.Message, n.Hint})
	}
	a.issues.SetColumns(issueColumns(a.width))
	a.issues.SetRows(rows)
	a.issues.SetHeight(min(len(rows), maxIssueLines) + 1)
}

// layout sizes the list viewport to what the bottom panel leaves over and keeps the
// selection visible.
func (a *App) layout() {
	if a.state != viewEditor || a.list == nil {
		return
	}
	var bottom []string
	if len(a.report.Notices) > 0 {
		header := levelStyle(a.report.Highest() == validate.High).
			Render(fmt.Sprintf("%d issue(s)", len(a.report.Notices)))
		bottom = append(bottom, header)
		bottom = append(bottom, strings.Split(a.issues.View(), "\n")...)
	}
	bottom = append(bottom, a.statusLine())
	if a.fullHelp {
		for _, group := range a.keys.FullHelp() {
			bottom = append(bottom, renderHelp(group))
		}
	} else {
		bottom = append(bottom, renderHelp(a.keys.ShortHelp()))
	}
	a.bottom = bottom
	a.viewH = max(a.height-listTop-tokenlist.FooterHeight-len(bottom), 1)
	if !a.list.Dragging() {
		a.ensureVisible()
	}
	a.clampScroll()
}

func (a *App) ensureVisible() {
	if !a.list.HasSelection() {
		return
	}
	layout := a.list.Layout()
	i := a.list.Selected()
	top := layout.Offset(i, -1)
	bottom := top + layout.HeightAt(i)
	if top < a.scroll {
		a.scroll = top
	}
	if bottom > a.scroll+a.viewH {
		a.scroll = bottom - a.viewH
	}
}

func (a *App) clampScroll() {
	maxScroll := max(a.list.Height()-a.viewH, 0)
	a.scroll = min(max(a.scroll, 0), maxScroll)
}

// listBounds is where the whole list sits in screen coordinates; rows scrolled out of
// the viewport have negative or off-screen Y.
func (a *App) listBounds() drawer.Rect {
	return drawer.Rect{X: 0, Y: listTop - a.scroll, W: a.width, H: a.list.Height()}
}

func (a *App) footerY() int { return listTop + a.viewH }

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.state != viewEditor || a.modal != modalNone || a.list == nil {
		return a, nil
	}
	switch m.Button {
	case tea.MouseButtonWheelUp:
		a.scroll -= wheelStep
		a.clampScroll()
		return a, nil
	case tea.MouseButtonWheelDown:
		a.scroll += wheelStep
		a.clampScroll()
		return a, nil
	}
	ev, ok := a.pointerEvent(m)
	if !ok {
		return a, nil
	}
	res := a.list.Update(ev, a.listBounds())
	if res.Changed {
		a.session.MarkDirty()
	}
	a.redraw()
	return a, a.tick()
}

// pointerEvent maps a terminal mouse message onto the list. The footer is drawn
// directly under the viewport, not under the full list, so presses on it are shifted.
func (a *App) pointerEvent(m tea.MouseMsg) (tokenlist.Event, bool) {
	switch m.Action {
	case tea.MouseActionPress:
		var button tokenlist.Button
		switch m.Button {
		case tea.MouseButtonLeft:
			button = tokenlist.ButtonPrimary
		case tea.MouseButtonRight:
			button = tokenlist.ButtonSecondary
		case tea.MouseButtonMiddle:
			button = tokenlist.ButtonMiddle
		default:
			return nil, false
		}
		y := m.Y
		switch {
		case y == a.footerY():
			b := a.listBounds()
			y = b.Y + b.H
		case y < listTop || y > a.footerY():
			return nil, false
		case y-listTop+a.scroll >= a.list.Height():
			// blank space under the last row
			return nil, false
		}
		return tokenlist.PointerDown{X: m.X, Y: y, Button: button}, true
	case tea.MouseActionMotion:
		if !a.list.Pressed() {
			return nil, false
		}
		return tokenlist.PointerMove{X: m.X, Y: m.Y}, true
	case tea.MouseActionRelease:
		if !a.list.Pressed() {
			return nil, false
		}
		return tokenlist.PointerUp{X: m.X, Y: m.Y}, true
	}
	return nil, false
}

func (a *App) renderEditor() string {
	seq := a.session.Sequence()
	if seq == nil || a.frame.Canvas == nil {
		return mutedStyle.Render("loading…")
	}
	title := titleStyle.Render(seq.Name)
	if a.session.Dirty() {
		title += " " + dirtyStyle.Render("●")
	}
	title += mutedStyle.Render(fmt.Sprintf("  %d tokens", seq.Count()))
	lines := []string{ansi.Truncate(title, a.width, "…"), ""}

	canvas := a.frame.Canvas.Lines()
	rows := canvas[:len(canvas)-tokenlist.FooterHeight]
	footer := canvas[len(canvas)-tokenlist.FooterHeight:]
	for i := 0; i < a.viewH; i++ {
		idx := a.scroll + i
		switch {
		case idx < len(rows):
			lines = append(lines, rows[idx])
		case i == 0 && len(rows) == 0:
			lines = append(lines, mutedStyle.Render("no tokens yet, press a to add one"))
		default:
			lines = append(lines, "")
		}
	}
	lines = append(lines, footer...)
	lines = append(lines, a.bottom...)
	if a.height > 0 && len(lines) > a.height {
		lines = lines[:a.height]
	}
	return strings.Join(lines, "\n")
}

type cutsceneItem struct {
	c repository.Cutscene
}

func (i cutsceneItem) Title() string { return i.c.Name }

func (i cutsceneItem) Description() string {
	n := "tokens"
	if i.c.TokenCount == 1 {
		n = "token"
	}
	return fmt.Sprintf("%d %s · updated %s", i.c.TokenCount, n, i.c.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func (i cutsceneItem) FilterValue() string { return i.c.Name }

func (a *App) setBrowserItems() {
	items := make([]list.Item, len(a.cutscenes))
	for i, c := range a.cutscenes {
		items[i] = cutsceneItem{c: c}
	}
	a.browser.SetItems(items)
}

func (a *App) selectedCutscene() (repository.Cutscene, bool) {
	item, ok := a.browser.SelectedItem().(cutsceneItem)
	if !ok {
		return repository.Cutscene{}, false
	}
	return item.c, true
}

func (a *App) renderBrowser() string {
	var body string
	if len(a.cutscenes) == 0 {
		body = titleStyle.Render("Cutscenes") + "\n\n" + mutedStyle.Render("no cutscenes yet, press n to create one")
	} else {
		body = a.browser.View()
	}
	lines := []string{body}
	if s := a.statusLine(); s != "" {
		lines = append(lines, s)
	}
	lines = append(lines, renderHelp(a.keys.BrowserHelp()))
	return strings.Join(lines, "\n")
}
