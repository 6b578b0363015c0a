package drawer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/cutscenes/internal/token"
)

const maxLabelWidth = 16

func labelWidth(w int) int {
	lw := w / 3
	if lw > maxLabelWidth {
		lw = maxLabelWidth
	}
	return lw
}

// drawRow prints "label  value" on the first line of r.
func drawRow(ctx *Context, r Rect, label, value string) {
	lw := labelWidth(r.W)
	ctx.Print(r.X, r.Y, ctx.labelStyle(), fit(label, lw))
	style := ctx.Theme.Value
	if ctx.Focused() {
		style = ctx.Theme.Focused
	}
	ctx.Print(r.X+lw, r.Y, style, ansi.Truncate(value, r.W-lw, "…"))
}

func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w-1, "…")
	return s + strings.Repeat(" ", w-ansi.StringWidth(s))
}

type stringDrawer struct{}

func (stringDrawer) Lines() int { return 1 }

func (stringDrawer) EditText(f token.Field) string { return asString(f.Value) }

func (stringDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	changed := false
	if in := ctx.TakeInput(); in != nil && in.Commit && in.Text != asString(f.Value) {
		set(in.Text)
		f.Value = in.Text
		changed = true
	}
	drawRow(ctx, r, label, asString(f.Value))
	return changed
}

type textDrawer struct {
	lines int
}

func (d textDrawer) Lines() int { return d.lines }

func (textDrawer) EditText(f token.Field) string { return asString(f.Value) }

func (d textDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	changed := false
	if in := ctx.TakeInput(); in != nil && in.Commit && in.Text != asString(f.Value) {
		set(in.Text)
		f.Value = in.Text
		changed = true
	}
	lw := labelWidth(r.W)
	chunks := wrap(asString(f.Value), r.W-lw, d.lines)
	for i := 0; i < d.lines; i++ {
		line := r.Line(i, 1)
		l := ""
		if i == 0 {
			l = label
		}
		text := ""
		if i < len(chunks) {
			text = chunks[i]
		}
		drawRow(ctx, line, l, text)
	}
	return changed
}

// wrap splits s into at most n chunks of width w, breaking on spaces where possible.
func wrap(s string, w, n int) []string {
	if w <= 0 || n <= 0 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case ansi.StringWidth(line)+1+ansi.StringWidth(word) <= w:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	if len(out) > n {
		out = out[:n]
		out[n-1] = ansi.Truncate(out[n-1]+" …", w, "…")
	}
	return out
}

type intDrawer struct{}

func (intDrawer) Lines() int { return 1 }

func (intDrawer) EditText(f token.Field) string { return strconv.Itoa(asInt(f.Value)) }

func (intDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	cur := asInt(f.Value)
	next := cur
	if in := ctx.TakeInput(); in != nil {
		switch {
		case in.Commit:
			if v, err := strconv.Atoi(strings.TrimSpace(in.Text)); err == nil {
				next = v
			}
		case isDecrement(in.Key):
			next = cur - 1
		case isIncrement(in.Key):
			next = cur + 1
		}
	}
	changed := next != cur
	if changed {
		set(next)
	}
	drawRow(ctx, r, label, strconv.Itoa(next))
	return changed
}

type floatDrawer struct {
	step float64
}

func (floatDrawer) Lines() int { return 1 }

func (floatDrawer) EditText(f token.Field) string { return formatFloat(asFloat(f.Value)) }

func (d floatDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	cur := asFloat(f.Value)
	next := cur
	if in := ctx.TakeInput(); in != nil {
		switch {
		case in.Commit:
			if v, err := strconv.ParseFloat(strings.TrimSpace(in.Text), 64); err == nil && !math.IsNaN(v) {
				next = v
			}
		case isDecrement(in.Key):
			next = round(cur - d.step)
		case isIncrement(in.Key):
			next = round(cur + d.step)
		}
	}
	changed := next != cur
	if changed {
		set(next)
	}
	drawRow(ctx, r, label, formatFloat(next))
	return changed
}

func round(v float64) float64 { return math.Round(v*1e6) / 1e6 }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

type boolDrawer struct{}

func (boolDrawer) Lines() int { return 1 }

func (boolDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	v := asBool(f.Value)
	changed := false
	if in := ctx.TakeInput(); in != nil && (in.Key == " " || in.Key == "space" || in.Key == "enter") {
		v = !v
		set(v)
		changed = true
	}
	box := "[ ]"
	if v {
		box = "[x]"
	}
	drawRow(ctx, r, label, box)
	return changed
}

type vectorDrawer struct{}

func (vectorDrawer) Lines() int { return 2 }

func (vectorDrawer) EditText(f token.Field) string {
	v := asVec(f.Value)
	return formatFloat(v.X) + "," + formatFloat(v.Y)
}

func (vectorDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	v := asVec(f.Value)
	changed := false
	if in := ctx.TakeInput(); in != nil && in.Commit {
		if parsed, ok := parseVec(in.Text); ok && parsed != v {
			v = parsed
			set(v)
			changed = true
		}
	}
	drawRow(ctx, r.Line(0, 1), label, "x "+formatFloat(v.X))
	drawRow(ctx, r.Line(1, 1), "", "y "+formatFloat(v.Y))
	return changed
}

func parseVec(s string) (token.Vec2, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 2 {
		return token.Vec2{}, false
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return token.Vec2{}, false
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return token.Vec2{}, false
	}
	return token.Vec2{X: x, Y: y}, true
}

type colorDrawer struct{}

func (colorDrawer) Lines() int { return 1 }

func (colorDrawer) EditText(f token.Field) string { return asColor(f.Value).Hex() }

func (colorDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	c := asColor(f.Value)
	changed := false
	if in := ctx.TakeInput(); in != nil && in.Commit {
		text := strings.TrimSpace(in.Text)
		if !strings.HasPrefix(text, "#") {
			text = "#" + text
		}
		if parsed, err := colorful.Hex(text); err == nil && parsed.Hex() != c.Hex() {
			c = parsed
			set(c)
			changed = true
		}
	}
	drawRow(ctx, r, label, c.Hex())
	lw := labelWidth(r.W)
	swatch := r.X + lw + len(c.Hex()) + 1
	if swatch+2 <= r.X+r.W {
		ctx.Print(swatch, r.Y, lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())), "██")
	}
	return changed
}

type referenceDrawer struct{}

func (referenceDrawer) Lines() int { return 1 }

func (referenceDrawer) EditText(f token.Field) string {
	if ref, ok := f.Value.(*token.Reference); ok && ref != nil {
		return ref.ID
	}
	return ""
}

func (d referenceDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	ref, _ := f.Value.(*token.Reference)
	changed := false
	if in := ctx.TakeInput(); in != nil && in.Commit {
		id := strings.TrimSpace(in.Text)
		switch {
		case id == "" && ref != nil:
			ref = nil
			set((*token.Reference)(nil))
			changed = true
		case id != "" && (ref == nil || ref.ID != id):
			ref = &token.Reference{ID: id}
			set(ref)
			changed = true
		}
	}
	text := "<none>"
	if ref != nil {
		text = "@" + ref.ID
	}
	drawRow(ctx, r, label, text)
	return changed
}

type futureDrawer struct{}

func (futureDrawer) Lines() int { return 1 }

func (futureDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	ref, _ := f.Value.(*token.FutureRef)
	var futures []token.Future
	if ctx.Seq != nil {
		futures = ctx.Seq.Futures()
	}
	changed := false
	if in := ctx.TakeInput(); in != nil {
		switch {
		case in.Key == "backspace" || in.Key == "delete":
			if ref != nil {
				ref = nil
				set((*token.FutureRef)(nil))
				changed = true
			}
		case len(futures) > 0 && (isDecrement(in.Key) || isIncrement(in.Key)):
			pos := -1
			for i, fu := range futures {
				if ref != nil && fu.ID == ref.ID {
					pos = i
				}
			}
			switch {
			case pos < 0 && isDecrement(in.Key):
				pos = len(futures) - 1
			case pos < 0:
				pos = 0
			case isDecrement(in.Key):
				pos = (pos - 1 + len(futures)) % len(futures)
			default:
				pos = (pos + 1) % len(futures)
			}
			if ref == nil || ref.ID != futures[pos].ID {
				ref = &token.FutureRef{ID: futures[pos].ID}
				set(ref)
				changed = true
			}
		}
	}
	text := "<none>"
	if ref != nil {
		text = fmt.Sprintf("<missing #%d>", ref.ID)
		if ctx.Seq != nil {
			if fu, ok := ctx.Seq.Future(ref.ID); ok {
				text = fmt.Sprintf("#%d %s", fu.ID, fu.Name)
			}
		}
	}
	drawRow(ctx, r, label, text)
	return changed
}

type choiceDrawer struct{}

func (choiceDrawer) Lines() int { return 1 }

func (choiceDrawer) Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool {
	cur := asString(f.Value)
	opts := f.Def.Options
	changed := false
	if in := ctx.TakeInput(); in != nil && len(opts) > 0 && (isDecrement(in.Key) || isIncrement(in.Key)) {
		pos := 0
		for i, o := range opts {
			if o == cur {
				pos = i
			}
		}
		if isDecrement(in.Key) {
			pos = (pos - 1 + len(opts)) % len(opts)
		} else {
			pos = (pos + 1) % len(opts)
		}
		if opts[pos] != cur {
			cur = opts[pos]
			set(cur)
			changed = true
		}
	}
	drawRow(ctx, r, label, "‹ "+cur+" ›")
	return changed
}

func isDecrement(k string) bool { return k == "left" || k == "-" || k == "h" }

func isIncrement(k string) bool { return k == "right" || k == "+" || k == "=" || k == "l" }

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func asInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	}
	return 0
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asVec(v any) token.Vec2 {
	vec, _ := v.(token.Vec2)
	return vec
}

func asColor(v any) colorful.Color {
	c, ok := v.(colorful.Color)
	if !ok {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}
