// Package tokenlist is the reorderable token list: it draws one row per token, tracks
// selection and field focus, and turns pointer drags into swaps on the sequence.
package tokenlist

import (
	"log"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/rows"
	"github.com/jask/cutscenes/internal/token"
)

const (
	// FooterHeight is reserved below the rows even when the list is empty.
	FooterHeight = 1
	// FooterRemove is the footer control that removes the selected row.
	FooterRemove = "[-] remove"

	handleWidth  = 3
	contentRight = 1
)

// Observers are called while rows are drawn.
type Observers struct {
	Tokens []drawer.TokenObserver
	Fields []drawer.FieldObserver
}

// Frame is the output of one Draw.
type Frame struct {
	Canvas *drawer.Canvas
	// Changed is set when a drawer edited a field during the frame.
	Changed bool
}

func (f Frame) String() string { return f.Canvas.String() }

// List is the token list widget. It is not safe for concurrent use; the host calls
// Update and Draw from its single UI loop.
type List struct {
	seq    *token.Sequence
	mapper *drawer.Mapper
	layout *rows.Layout
	theme  drawer.Theme
	slide  *slideGroup

	selected   int
	field      int
	dragOffset int
	draggedY   int
	pressed    bool
	dragging   bool
	pending    *drawer.Input
	// still holds sliding rows in place during a Repaint
	still bool

	onChanged func(index int)
}

type Option func(*List)

// WithLogger sets the logger used for layout warnings.
func WithLogger(l *log.Logger) Option {
	return func(list *List) { list.layout.Logger = l }
}

// WithSlideSpeed sets the fraction of the remaining distance a sliding row covers per frame.
func WithSlideSpeed(speed float64) Option {
	return func(list *List) { list.slide = newSlideGroup(speed) }
}

func WithTheme(t drawer.Theme) Option {
	return func(list *List) { list.theme = t }
}

// WithOnChanged registers a callback run after a drawer edits the token at index.
func WithOnChanged(fn func(index int)) Option {
	return func(list *List) { list.onChanged = fn }
}

// New returns a list over seq. Row heights come from mapper so layout, hit-testing and
// drawing share one height function.
func New(seq *token.Sequence, mapper *drawer.Mapper, opts ...Option) *List {
	l := &List{
		seq:      seq,
		mapper:   mapper,
		layout:   rows.New(seq, mapper),
		theme:    drawer.DefaultTheme(),
		slide:    newSlideGroup(0.5),
		selected: -1,
		field:    drawer.NameField,
	}
	l.layout.LineHeight = mapper.LineHeight
	for _, opt := range opts {
		opt(l)
	}
	if !seq.IsEmpty() {
		l.selected = 0
	}
	return l
}

// SetSequence points the list at another sequence and resets all transient state.
func (l *List) SetSequence(seq *token.Sequence) {
	l.seq = seq
	l.layout.Seq = seq
	l.cancelDrag()
	l.pending = nil
	l.selected = -1
	if !seq.IsEmpty() {
		l.selected = 0
	}
	l.field = drawer.NameField
}

func (l *List) Sequence() *token.Sequence { return l.seq }

func (l *List) Layout() *rows.Layout { return l.layout }

func (l *List) Count() int { return l.seq.Count() }

// Selected returns the selected row, or -1 when nothing is selected.
func (l *List) Selected() int { return l.selected }

// HasSelection reports whether Selected is a valid row.
func (l *List) HasSelection() bool { return l.selected >= 0 && l.selected < l.Count() }

// Select moves the selection, clamped into the sequence. A negative index clears it.
func (l *List) Select(i int) {
	prev := l.selected
	switch {
	case i < 0 || l.Count() == 0:
		l.selected = -1
	case i >= l.Count():
		l.selected = l.Count() - 1
	default:
		l.selected = i
	}
	if l.selected != prev {
		l.field = drawer.NameField
	}
}

// FieldCursor returns the focused field of the selected row (drawer.NameField for the name).
func (l *List) FieldCursor() int { return l.field }

func (l *List) Dragging() bool { return l.dragging }

// DragY returns the tracked pointer position of the current gesture, relative to the rows.
func (l *List) DragY() int { return l.draggedY }

// Pressed reports whether a pointer gesture is in progress.
func (l *List) Pressed() bool { return l.pressed }

// Animating reports whether rows are still sliding into place.
func (l *List) Animating() bool { return l.dragging && l.slide.animating() }

// Height returns the height of the rows, not counting the footer.
func (l *List) Height() int { return l.layout.Total() }

// FocusedDrawer returns the drawer and field under the field cursor.
func (l *List) FocusedDrawer() (drawer.Drawer, token.Field, bool) {
	if !l.HasSelection() {
		return nil, token.Field{}, false
	}
	tok := l.seq.At(l.selected)
	mp := l.mapper.MustFor(tok)
	if l.field == drawer.NameField {
		return mp.DrawerAt(drawer.NameField), token.Field{Def: token.FieldDef{Name: "name", Kind: token.KindString}, Value: tok.Name}, true
	}
	d := mp.DrawerAt(l.field)
	if d == nil {
		return nil, token.Field{}, false
	}
	return d, tok.Field(l.field), true
}

// Remove deletes row i. The selection stays on the same token when a row above it is
// removed, is clamped when it falls off the end, and becomes -1 when the list empties.
func (l *List) Remove(i int) bool {
	if _, err := l.seq.RemoveAt(i); err != nil {
		return false
	}
	l.cancelDrag()
	l.pending = nil
	switch {
	case l.Count() == 0:
		l.selected = -1
	case i < l.selected:
		l.selected--
	case l.selected >= l.Count():
		l.selected = l.Count() - 1
	}
	l.field = drawer.NameField
	return true
}

// Update applies one input event. bounds is where the rows were last drawn, in the same
// coordinates as the event; its height is the rows' height and the footer sits just below.
func (l *List) Update(ev Event, bounds drawer.Rect) Result {
	switch e := ev.(type) {
	case PointerDown:
		return l.pointerDown(e, bounds)
	case PointerMove:
		if !l.pressed {
			return Result{}
		}
		l.dragging = true
		l.updateDraggedY(e.Y-bounds.Y, bounds.H)
		return Result{Consumed: true}
	case PointerUp:
		return l.pointerUp()
	case Key:
		return l.key(e.Name)
	case Text:
		if !l.HasSelection() {
			return Result{}
		}
		l.pending = &drawer.Input{Commit: true, Text: e.Value}
		return Result{Consumed: true}
	}
	return Result{}
}

func (l *List) pointerDown(e PointerDown, bounds drawer.Rect) Result {
	if e.Button != ButtonPrimary {
		return Result{}
	}
	if !bounds.Contains(e.X, e.Y) {
		footer := drawer.Rect{X: bounds.X, Y: bounds.Y + bounds.H, W: bounds.W, H: FooterHeight}
		if footer.FarRight(len(FooterRemove)).Contains(e.X, e.Y) && l.HasSelection() {
			l.Remove(l.selected)
			return Result{Consumed: true, Changed: true, Removed: true}
		}
		return Result{}
	}
	localX, localY := e.X-bounds.X, e.Y-bounds.Y
	hit := l.layout.RowAt(localY)
	if hit < 0 {
		return Result{}
	}
	top := l.layout.Offset(hit, -1)
	mp := l.mapper.MustFor(l.seq.At(hit))
	row := drawer.Rect{X: 0, Y: top, W: bounds.W, H: l.layout.HeightAt(hit)}
	if mp.RemoveRect(contentRect(row)).Contains(localX, localY) {
		l.Remove(hit)
		return Result{Consumed: true, Changed: true, Removed: true}
	}

	l.Select(hit)
	l.field = mp.FieldAt(localY - top)
	l.dragOffset = localY - top
	l.updateDraggedY(localY, bounds.H)
	l.slide.reset()
	l.pressed = true
	l.dragging = false
	return Result{Consumed: true}
}

func (l *List) pointerUp() Result {
	if !l.pressed {
		return Result{}
	}
	dragged := l.dragging
	l.pressed = false
	l.dragging = false
	res := Result{Consumed: true}
	if !dragged {
		// released without moving: a plain click
		return res
	}
	target := l.dropTarget()
	if target >= 0 && target != l.selected {
		if err := l.seq.Swap(l.selected, target); err == nil {
			res.Changed = true
		}
	}
	if target >= 0 {
		l.selected = target
	}
	return res
}

func (l *List) key(name string) Result {
	switch name {
	case "up":
		l.step(-1)
		return Result{Consumed: true}
	case "down":
		l.step(1)
		return Result{Consumed: true}
	case "tab", "shift+tab":
		if !l.HasSelection() {
			return Result{}
		}
		n := l.seq.At(l.selected).NumFields()
		// focus cycles over NameField (-1) and fields 0..n-1
		pos := l.field + 1
		if name == "tab" {
			pos = (pos + 1) % (n + 1)
		} else {
			pos = (pos - 1 + n + 1) % (n + 1)
		}
		l.field = pos - 1
		return Result{Consumed: true}
	case "esc":
		l.cancelDrag()
		return Result{Consumed: true}
	case "delete":
		if !l.HasSelection() {
			return Result{}
		}
		l.Remove(l.selected)
		return Result{Consumed: true, Changed: true, Removed: true}
	}
	if isFieldKey(name) && l.HasSelection() {
		l.pending = &drawer.Input{Key: name}
		return Result{Consumed: true}
	}
	return Result{}
}

func isFieldKey(name string) bool {
	switch name {
	case "left", "right", "h", "l", "-", "+", "=", " ", "space", "enter", "backspace":
		return true
	}
	return false
}

func (l *List) step(delta int) {
	if l.Count() == 0 {
		l.selected = -1
		return
	}
	next := l.selected + delta
	if next < 0 {
		next = 0
	}
	if next > l.Count()-1 {
		next = l.Count() - 1
	}
	l.Select(next)
}

func (l *List) cancelDrag() {
	l.pressed = false
	l.dragging = false
}

func (l *List) updateDraggedY(localY, height int) {
	lo := l.dragOffset
	hi := height - (l.layout.HeightAt(l.selected) - l.dragOffset)
	y := localY
	if y > hi {
		y = hi
	}
	if y < lo {
		y = lo
	}
	l.draggedY = y
}

// dropTarget is the slot holding the drag Y once the offsets are re-walked without the
// selected row.
func (l *List) dropTarget() int {
	return l.layout.SlotAt(l.draggedY, l.selected)
}

func contentRect(row drawer.Rect) drawer.Rect {
	return row.Inset(handleWidth, contentRight)
}

// Draw renders one frame of the given width: rows, then the footer. It applies pending
// field input, so it must run once per Update.
func (l *List) Draw(width int, obs Observers) Frame {
	height := l.Height()
	canvas := drawer.NewCanvas(width, height+FooterHeight)
	frame := Frame{Canvas: canvas}
	defer func() { l.pending = nil }()
	if l.seq.IsEmpty() {
		return frame
	}

	ctx := drawer.NewContext(canvas, l.seq)
	ctx.Theme = l.theme
	ctx.Focus = drawer.Focus{Token: l.selected, Field: l.field}
	ctx.Input = l.pending
	ctx.TokenObservers = obs.Tokens
	ctx.FieldObservers = obs.Fields

	if l.dragging {
		frame.Changed = l.drawDragging(ctx, width)
	} else {
		frame.Changed = l.drawNormal(ctx, width)
	}
	l.drawFooter(canvas, height)
	return frame
}

// Repaint draws the current state again without applying pending input or advancing
// the slide animation. Hosts use it to refresh observer output after reacting to a
// Changed frame.
func (l *List) Repaint(width int, obs Observers) Frame {
	l.pending = nil
	l.still = true
	defer func() { l.still = false }()
	return l.Draw(width, obs)
}

func (l *List) drawNormal(ctx *drawer.Context, width int) bool {
	changed := false
	for i := 0; i < l.Count(); i++ {
		r := drawer.Rect{X: 0, Y: l.layout.Offset(i, -1), W: width, H: l.layout.HeightAt(i)}
		if l.drawRow(ctx, r, i, i == l.selected) {
			changed = true
		}
	}
	return changed
}

func (l *List) drawDragging(ctx *drawer.Context, width int) bool {
	target := l.dropTarget()
	order := make([]int, 0, l.Count())
	for i := 0; i < l.Count(); i++ {
		if i != l.selected {
			order = append(order, i)
		}
	}
	if target < 0 || target > len(order) {
		target = len(order)
	}
	order = append(order[:target], append([]int{-1}, order[target:]...)...)

	changed := false
	y := 0
	for _, i := range order {
		if i == -1 {
			y += l.layout.HeightAt(l.selected)
			continue
		}
		h := l.layout.HeightAt(i)
		top := l.slide.position
		if l.still {
			top = l.slide.peek
		}
		r := drawer.Rect{X: 0, Y: top(i, y), W: width, H: h}
		if l.drawRow(ctx, r, i, false) {
			changed = true
		}
		y += h
	}
	r := drawer.Rect{X: 0, Y: l.draggedY - l.dragOffset, W: width, H: l.layout.HeightAt(l.selected)}
	if l.drawRow(ctx, r, l.selected, true) {
		changed = true
	}
	return changed
}

func (l *List) drawRow(ctx *drawer.Context, r drawer.Rect, i int, selected bool) bool {
	tok := l.seq.At(i)
	if tok == nil {
		return false
	}
	mp := l.mapper.MustFor(tok)
	bg := mp.Color
	if selected {
		bg = mp.SelectedColor
	}
	style := lipgloss.NewStyle().Background(lipgloss.Color(bg.Hex())).Foreground(lipgloss.Color("232"))
	ctx.Canvas.Fill(r, style)
	ctx.SetRow(style)
	ctx.Print(r.X+1, r.Y, l.theme.Handle, "≡")

	changed := mp.Draw(ctx, contentRect(r), i, tok)
	if changed && l.onChanged != nil {
		l.onChanged(i)
	}
	return changed
}

func (l *List) drawFooter(c *drawer.Canvas, y int) {
	style := l.theme.Footer
	if !l.HasSelection() {
		style = l.theme.Muted
	}
	r := drawer.Rect{X: 0, Y: y, W: c.Width(), H: FooterHeight}.FarRight(len(FooterRemove))
	c.Put(r.X, r.Y, style.Render(FooterRemove))
}
