package drawer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/cutscenes/internal/token"
)

const (
	// ChromeLines is the header line plus the token-name line drawn above the fields.
	ChromeLines = 2
	// RemoveLabel is the per-row remove control at the right of the header.
	RemoveLabel = "[x]"

	saturation       = 0.8
	brightness       = 0.8
	brightnessSelect = 1.0
	headerField      = -2
)

// SpecSource provides type metadata, e.g. a catalog.
type SpecSource interface {
	Spec(tag string) (token.TypeSpec, bool)
}

// Mapped is the cached drawing plan for one token type.
type Mapped struct {
	Tag           string
	Label         string
	Color         colorful.Color
	SelectedColor colorful.Color
	// FieldLines is the number of lines taken by the fields alone.
	FieldLines int

	drawers    []Drawer
	name       Drawer
	lineHeight int
}

// Mapper builds and caches Mapped values per token type.
type Mapper struct {
	Registry   *Registry
	Specs      SpecSource
	Colorful   bool
	LineHeight int

	cache map[string]*Mapped
}

// NewMapper returns a mapper with colorful rows and a one-cell line height.
func NewMapper(reg *Registry, specs SpecSource) *Mapper {
	return &Mapper{Registry: reg, Specs: specs, Colorful: true, LineHeight: 1}
}

// Clear drops every cached mapping.
func (m *Mapper) Clear() { m.cache = nil }

// For returns the mapping for t's type, building it on first use.
func (m *Mapper) For(t *token.Token) (*Mapped, error) {
	if mp, ok := m.cache[t.Type]; ok {
		return mp, nil
	}
	name, err := m.Registry.Lookup(token.KindString)
	if err != nil {
		return nil, fmt.Errorf("token name: %w", err)
	}
	mp := &Mapped{Tag: t.Type, name: name, lineHeight: m.lineHeight()}
	mp.Label = Label(t.Type)
	if m.Specs != nil {
		if spec, ok := m.Specs.Spec(t.Type); ok && spec.Label != "" {
			mp.Label = spec.Label
		}
	}
	for _, f := range t.Fields() {
		d, err := m.Registry.Lookup(f.Def.Kind)
		if err != nil {
			return nil, fmt.Errorf("token type %s field %s: %w", t.Type, f.Def.Name, err)
		}
		mp.drawers = append(mp.drawers, d)
		mp.FieldLines += d.Lines()
	}
	if m.Colorful {
		mp.Color, mp.SelectedColor = TypeColors(t.Type)
	} else {
		mp.Color = colorful.Hsv(0, 0, brightness)
		mp.SelectedColor = colorful.Hsv(0, 0, brightnessSelect)
	}
	if m.cache == nil {
		m.cache = map[string]*Mapped{}
	}
	m.cache[t.Type] = mp
	return mp, nil
}

// MustFor is For for callers that treat an unmappable type as a programming error.
func (m *Mapper) MustFor(t *token.Token) *Mapped {
	mp, err := m.For(t)
	if err != nil {
		panic(err)
	}
	return mp
}

// HeightOf returns the row height of t in cells.
func (m *Mapper) HeightOf(t *token.Token) int {
	return m.MustFor(t).Height()
}

func (m *Mapper) lineHeight() int {
	if m.LineHeight <= 0 {
		return 1
	}
	return m.LineHeight
}

// Height returns the row height in cells.
func (mp *Mapped) Height() int {
	return (mp.FieldLines + ChromeLines) * mp.lineHeight
}

// FieldAt maps a cell offset inside the row to the focus index of the field drawn there.
// Header and name lines map to NameField.
func (mp *Mapped) FieldAt(y int) int {
	line := y / mp.lineHeight
	if line < ChromeLines {
		return NameField
	}
	line -= ChromeLines
	for i, d := range mp.drawers {
		if line < d.Lines() {
			return i
		}
		line -= d.Lines()
	}
	return len(mp.drawers) - 1
}

// DrawerAt returns the drawer of field i, or the name drawer for NameField.
func (mp *Mapped) DrawerAt(i int) Drawer {
	if i == NameField {
		return mp.name
	}
	if i < 0 || i >= len(mp.drawers) {
		return nil
	}
	return mp.drawers[i]
}

// RemoveRect returns where the remove control sits inside a row's content rect.
func (mp *Mapped) RemoveRect(content Rect) Rect {
	return content.FarRight(len(RemoveLabel))
}

// Draw draws the header, the name line and every field of t inside r. It returns true
// when any value was edited.
func (mp *Mapped) Draw(ctx *Context, r Rect, index int, t *token.Token) bool {
	td := &TokenDrawn{Rect: r, Seq: ctx.Seq, Token: t, Index: index, Label: fmt.Sprintf("#%d - %s", index, mp.Label)}
	for _, obs := range ctx.TokenObservers {
		obs(td)
	}
	ctx.enter(index, headerField, MarkNone)
	ctx.Print(r.X, r.Y, ctx.Theme.Header, ansi.Truncate(td.Label, r.W-len(RemoveLabel)-1, "…"))
	btn := mp.RemoveRect(r)
	if ctx.Canvas != nil {
		ctx.Canvas.Put(btn.X, btn.Y, ctx.Theme.Remove.Render(RemoveLabel))
	}

	changed := false
	ctx.enter(index, NameField, MarkNone)
	nameField := token.Field{Def: token.FieldDef{Name: "name", Kind: token.KindString}, Value: t.Name}
	if mp.name.Draw(ctx, r.Line(mp.lineHeight, 1), "Token Name", nameField, func(v any) { t.Name = asString(v) }) {
		changed = true
	}

	line := ChromeLines
	for i, f := range t.Fields() {
		if i >= len(mp.drawers) {
			break
		}
		d := mp.drawers[i]
		fr := r.Line(line*mp.lineHeight, d.Lines())
		line += d.Lines()
		fd := &FieldDrawn{
			Rect:       fr,
			Seq:        ctx.Seq,
			Token:      t,
			TokenIndex: index,
			Field:      f,
			FieldIndex: i,
			Label:      Label(f.Def.Name),
		}
		for _, obs := range ctx.FieldObservers {
			obs(fd)
		}
		ctx.enter(index, i, fd.Marker)
		idx := i
		if d.Draw(ctx, fr, fd.Label, f, func(v any) { _ = t.Set(idx, v) }) {
			changed = true
		}
	}
	return changed
}

// Label turns an identifier into a display label: "play_animation" and "PlayAnimationToken"
// both become "Play Animation".
func Label(ident string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(ident)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	if len(words) > 1 && strings.EqualFold(words[len(words)-1], "token") {
		words = words[:len(words)-1]
	}
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

// TypeColors derives a stable hue from a type tag and returns the row and selected-row
// colors. Three hex digits are sampled evenly across the tag for r, g and b.
func TypeColors(tag string) (colorful.Color, colorful.Color) {
	if tag == "" {
		return colorful.Hsv(0, 0, brightness), colorful.Hsv(0, 0, brightnessSelect)
	}
	inc := float64(len(tag)-1) / 5
	base := colorful.Color{
		R: sampleByte(tag, 0, inc),
		G: sampleByte(tag, 2, inc),
		B: sampleByte(tag, 4, inc),
	}
	h, _, _ := base.Hsv()
	return colorful.Hsv(h, saturation, brightness), colorful.Hsv(h, saturation, brightnessSelect)
}

func sampleByte(s string, offset int, inc float64) float64 {
	a := s[int(float64(offset)*inc)] % 16
	b := s[int(float64(offset+1)*inc)] % 16
	return float64(a*16+b) / 255
}
