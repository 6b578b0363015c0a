package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cutscenes/internal/catalog"
	"github.com/jask/cutscenes/internal/config"
	"github.com/jask/cutscenes/internal/database/repository"
	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/prefs"
	"github.com/jask/cutscenes/internal/service"
	"github.com/jask/cutscenes/internal/tokenlist"
	"github.com/jask/cutscenes/internal/validate"
)

// App ties together the cutscene browser and the token editor.
type App struct {
	ctx         context.Context
	cfg         config.Config
	session     *service.Session
	repo        *repository.CutsceneRepo
	maintenance *service.MaintenanceService
	catalog     *catalog.Catalog
	mapper      *drawer.Mapper
	logger      *log.Logger
	keys        keyMap

	state    appState
	modal    modalState
	prompt   promptKind
	confirm  confirmKind
	fullHelp bool

	browser   list.Model
	cutscenes []repository.Cutscene

	list    *tokenlist.List
	frame   tokenlist.Frame
	report  validate.Report
	issues  table.Model
	bottom  []string
	picker  *typePicker
	input   textinput.Model
	scroll  int
	viewH   int
	ticking bool

	width, height int
	status        string
	statusErr     bool
	lastCutscene  string

	// overridable for tests
	remember   func(id string) error
	saveConfig func(config.Config) error
}

// Options wires the App to its collaborators.
type Options struct {
	Config       config.Config
	Session      *service.Session
	Repo         *repository.CutsceneRepo
	Maintenance  *service.MaintenanceService
	Catalog      *catalog.Catalog
	Registry     *drawer.Registry
	Logger       *log.Logger
	LastCutscene string
}

type appState string

const (
	viewBrowser appState = "browser"
	viewEditor  appState = "editor"
)

type modalState string

const (
	modalNone    modalState = ""
	modalPicker  modalState = "picker"
	modalPrompt  modalState = "prompt"
	modalConfirm modalState = "confirm"
)

type promptKind int

const (
	promptField promptKind = iota
	promptNewCutscene
	promptRename
)

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmReset
	confirmDiscard
)

// listTop is the screen line where token rows start, below the title bar.
const listTop = 2

type cutscenesMsg []repository.Cutscene

type statusMsg string

type errMsg struct{ error }

type frameMsg time.Time

type deletedMsg struct{ name string }

type resetMsg struct{ count int64 }

func New(ctx context.Context, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = drawer.NewRegistry()
	}
	mapper := drawer.NewMapper(reg, opts.Catalog)
	mapper.Colorful = opts.Config.Editor.ColorfulTokens
	mapper.LineHeight = opts.Config.Editor.LineHeight

	browser := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	browser.Title = "Cutscenes"
	browser.Styles.Title = titleStyle
	browser.SetShowStatusBar(false)
	browser.SetFilteringEnabled(false)
	browser.SetShowHelp(false)
	browser.DisableQuitKeybindings()

	input := textinput.New()
	input.Prompt = "> "

	issues := table.New(table.WithColumns(issueColumns(80)), table.WithFocused(false), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = styles.Cell
	issues.SetStyles(styles)

	return &App{
		ctx:          ctx,
		cfg:          opts.Config,
		session:      opts.Session,
		repo:         opts.Repo,
		maintenance:  opts.Maintenance,
		catalog:      opts.Catalog,
		mapper:       mapper,
		logger:       logger,
		keys:         newKeyMap(),
		state:        viewBrowser,
		browser:      browser,
		input:        input,
		issues:       issues,
		lastCutscene: opts.LastCutscene,
		remember:     prefs.RememberCutscene,
		saveConfig:   config.Save,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadCutscenes()
}

func (a *App) loadCutscenes() tea.Cmd {
	return func() tea.Msg {
		items, err := a.repo.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return cutscenesMsg(items)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.browser.SetSize(m.Width, max(m.Height-2, 1))
		a.input.Width = max(m.Width/2, 20)
		a.redraw()
	case cutscenesMsg:
		a.cutscenes = []repository.Cutscene(m)
		a.setBrowserItems()
		if a.lastCutscene != "" {
			id := a.lastCutscene
			a.lastCutscene = ""
			for _, c := range a.cutscenes {
				if c.ID == id {
					return a, a.open(id)
				}
			}
		}
	case statusMsg:
		a.setStatus(string(m), false)
	case errMsg:
		a.logger.Printf("error: %v", m.error)
		a.setStatus("error: "+m.Error(), true)
	case deletedMsg:
		a.setStatus(fmt.Sprintf("deleted %q", m.name), false)
		return a, a.loadCutscenes()
	case resetMsg:
		a.setStatus(fmt.Sprintf("deleted %d cutscenes", m.count), false)
		return a, a.loadCutscenes()
	case frameMsg:
		a.ticking = false
		a.redraw()
		return a, a.tick()
	case tea.MouseMsg:
		return a.handleMouse(m)
	case tea.KeyMsg:
		if key.Matches(m, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewEditor {
			return a.handleEditorKey(m)
		}
		return a.handleBrowserKey(m)
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	if a.state == viewEditor {
		body = a.renderEditor()
	} else {
		body = a.renderBrowser()
	}
	switch a.modal {
	case modalPicker:
		body = renderPopup(body, a.picker.View(max(a.width/2, 30)), a.width, a.height)
	case modalPrompt:
		body = renderPopup(body, modalTitle.Render(a.promptTitle())+"\n\n"+a.input.View(), a.width, a.height)
	case modalConfirm:
		body = renderPopup(body, a.confirmText()+"\n\n"+mutedStyle.Render("y confirm · n cancel"), a.width, a.height)
	}
	return body
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.statusErr = isErr
	a.layout()
}

// open loads cutscene id into the session and switches to the editor.
func (a *App) open(id string) tea.Cmd {
	if err := a.session.Open(a.ctx, id); err != nil {
		a.setStatus("error: "+err.Error(), true)
		return nil
	}
	a.enterEditor()
	a.setStatus(fmt.Sprintf("opened %q", a.session.Sequence().Name), false)
	return a.rememberCmd(id)
}

func (a *App) rememberCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.remember(id); err != nil {
			a.logger.Printf("warn: remember cutscene: %v", err)
		}
		return nil
	}
}

func (a *App) enterEditor() {
	seq := a.session.Sequence()
	if a.list == nil {
		a.list = tokenlist.New(seq, a.mapper,
			tokenlist.WithLogger(a.logger),
			tokenlist.WithSlideSpeed(a.cfg.Editor.SlideSpeed),
			tokenlist.WithTheme(listTheme()),
			tokenlist.WithOnChanged(func(int) { a.session.MarkDirty() }),
		)
	} else {
		a.list.SetSequence(seq)
	}
	a.state = viewEditor
	a.scroll = 0
	a.redraw()
}

func (a *App) toBrowser() tea.Cmd {
	a.state = viewBrowser
	a.modal = modalNone
	return a.loadCutscenes()
}

func (a *App) handleBrowserKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Open):
		if c, ok := a.selectedCutscene(); ok {
			return a, a.open(c.ID)
		}
		return a, nil
	case key.Matches(m, a.keys.New):
		a.openPrompt(promptNewCutscene, "")
		return a, textinput.Blink
	case key.Matches(m, a.keys.Delete):
		if _, ok := a.selectedCutscene(); ok {
			a.modal, a.confirm = modalConfirm, confirmDelete
		}
		return a, nil
	case key.Matches(m, a.keys.Reset):
		if len(a.cutscenes) > 0 {
			a.modal, a.confirm = modalConfirm, confirmReset
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.browser, cmd = a.browser.Update(m)
	return a, cmd
}

func (a *App) handleEditorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	bounds := a.listBounds()
	switch {
	case key.Matches(m, a.keys.Back):
		if a.list.Pressed() {
			a.list.Update(tokenlist.Key{Name: "esc"}, bounds)
			a.redraw()
			return a, nil
		}
		if a.session.Dirty() {
			a.modal, a.confirm = modalConfirm, confirmDiscard
			return a, nil
		}
		return a, a.toBrowser()
	case key.Matches(m, a.keys.Save):
		if err := a.session.Save(a.ctx); err != nil {
			a.setStatus("error: "+err.Error(), true)
			return a, nil
		}
		a.setStatus("saved", false)
		return a, tea.Batch(a.loadCutscenes(), a.rememberCmd(a.session.Sequence().ID))
	case key.Matches(m, a.keys.Add):
		a.picker = newTypePicker(a.catalog.Specs())
		a.modal = modalPicker
		return a, nil
	case key.Matches(m, a.keys.Copy):
		if err := a.session.Copy(a.list.Selected()); err != nil {
			a.setStatus("error: "+err.Error(), true)
		} else {
			a.setStatus("copied token", false)
		}
		return a, nil
	case key.Matches(m, a.keys.Paste):
		i, err := a.session.Paste(a.list.Selected())
		a.afterInsert(i, err, "pasted token")
		return a, a.tick()
	case key.Matches(m, a.keys.Duplicate):
		if !a.list.HasSelection() {
			return a, nil
		}
		i, err := a.session.Duplicate(a.list.Selected())
		a.afterInsert(i, err, "duplicated token")
		return a, a.tick()
	case key.Matches(m, a.keys.Rename):
		a.openPrompt(promptRename, a.session.Sequence().Name)
		return a, textinput.Blink
	case key.Matches(m, a.keys.Colors):
		a.mapper.Colorful = !a.mapper.Colorful
		a.mapper.Clear()
		a.cfg.Editor.ColorfulTokens = a.mapper.Colorful
		a.redraw()
		return a, a.saveConfigCmd()
	case key.Matches(m, a.keys.Help):
		a.fullHelp = !a.fullHelp
		a.layout()
		return a, nil
	case key.Matches(m, a.keys.Edit):
		if d, f, ok := a.list.FocusedDrawer(); ok {
			if te, ok := d.(drawer.TextEditor); ok {
				a.openPrompt(promptField, te.EditText(f))
				return a, textinput.Blink
			}
		}
		if m.String() != "enter" {
			return a, nil
		}
	}

	name := m.String()
	if name == "x" {
		name = "delete"
	}
	res := a.list.Update(tokenlist.Key{Name: name}, bounds)
	if res.Changed {
		a.session.MarkDirty()
	}
	a.redraw()
	return a, a.tick()
}

func (a *App) afterInsert(i int, err error, ok string) {
	if err != nil {
		a.setStatus("error: "+err.Error(), true)
		return
	}
	a.list.Select(i)
	a.redraw()
	a.setStatus(ok, false)
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalPicker:
		action, item := a.picker.HandleKey(m.String())
		switch action {
		case pickerCancelled:
			a.modal = modalNone
		case pickerSelected:
			a.modal = modalNone
			i, err := a.session.Add(item.Tag, a.list.Selected())
			a.afterInsert(i, err, "added "+item.Label)
		}
		return a, nil
	case modalPrompt:
		switch m.String() {
		case "esc":
			a.modal = modalNone
			a.input.Blur()
			return a, nil
		case "enter":
			a.modal = modalNone
			a.input.Blur()
			return a, a.commitPrompt(a.input.Value())
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(m)
		return a, cmd
	case modalConfirm:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			return a, a.commitConfirm()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	}
	return a, nil
}

func (a *App) openPrompt(kind promptKind, value string) {
	a.prompt = kind
	a.modal = modalPrompt
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.input.Focus()
}

func (a *App) promptTitle() string {
	switch a.prompt {
	case promptNewCutscene:
		return "New cutscene name"
	case promptRename:
		return "Rename cutscene"
	}
	if _, f, ok := a.list.FocusedDrawer(); ok {
		return "Edit " + drawer.Label(f.Def.Name)
	}
	return "Edit"
}

func (a *App) commitPrompt(value string) tea.Cmd {
	switch a.prompt {
	case promptNewCutscene:
		a.session.New(value)
		a.enterEditor()
		a.setStatus(fmt.Sprintf("new cutscene %q (unsaved)", a.session.Sequence().Name), false)
	case promptRename:
		if err := a.session.Rename(a.ctx, value); err != nil {
			a.setStatus("error: "+err.Error(), true)
			return nil
		}
		a.layout()
	case promptField:
		a.list.Update(tokenlist.Text{Value: value}, a.listBounds())
		a.redraw()
	}
	return nil
}

func (a *App) confirmText() string {
	switch a.confirm {
	case confirmDelete:
		c, _ := a.selectedCutscene()
		return fmt.Sprintf("Delete %q?", c.Name)
	case confirmReset:
		return fmt.Sprintf("Delete all %d cutscenes?", len(a.cutscenes))
	}
	return "Discard unsaved changes?"
}

func (a *App) commitConfirm() tea.Cmd {
	switch a.confirm {
	case confirmDelete:
		c, ok := a.selectedCutscene()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			if err := a.repo.Delete(a.ctx, c.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return errMsg{err}
			}
			return deletedMsg{name: c.Name}
		}
	case confirmReset:
		return func() tea.Msg {
			n, err := a.maintenance.Reset(a.ctx)
			if err != nil {
				return errMsg{err}
			}
			return resetMsg{count: n}
		}
	}
	a.setStatus("discarded changes", false)
	return a.toBrowser()
}

func (a *App) saveConfigCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		if err := a.saveConfig(cfg); err != nil {
			return errMsg{fmt.Errorf("save config: %w", err)}
		}
		if cfg.Editor.ColorfulTokens {
			return statusMsg("colorful tokens on")
		}
		return statusMsg("colorful tokens off")
	}
}

// tick schedules the next animation frame while rows are sliding.
func (a *App) tick() tea.Cmd {
	if a.ticking || a.list == nil || !a.list.Animating() {
		return nil
	}
	a.ticking = true
	return tea.Tick(time.Duration(a.cfg.Editor.FrameMS)*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (a *App) statusLine() string {
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return errorStyle.Render(a.status)
	}
	if strings.HasPrefix(a.status, "saved") {
		return savedStyle.Render(a.status)
	}
	return statusStyle.Render(a.status)
}
