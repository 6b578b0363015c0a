package drawer

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"

	"github.com/jask/cutscenes/internal/token"
)

var dialogue = token.TypeSpec{
	Tag:   "dialogue",
	Label: "Dialogue",
	Fields: []token.FieldDef{
		{Name: "speaker", Kind: token.KindReference},
		{Name: "line", Kind: token.KindText},
		{Name: "duration", Kind: token.KindFloat, Default: 2.0},
		{Name: "skippable", Kind: token.KindBool},
		{Name: "repeat", Kind: token.KindInt},
		{Name: "mood", Kind: token.KindChoice, Options: []string{"calm", "angry", "sad"}},
		{Name: "offset", Kind: token.KindVector2},
		{Name: "tint", Kind: token.KindColor},
		{Name: "after", Kind: token.KindFuture, Nullable: true},
	},
}

type specs map[string]token.TypeSpec

func (s specs) Spec(tag string) (token.TypeSpec, bool) {
	spec, ok := s[tag]
	return spec, ok
}

func newMapper() *Mapper {
	return NewMapper(NewRegistry(), specs{"dialogue": dialogue})
}

func TestRegistryLookupFailsForUnknownKind(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lookup("quaternion")
	require.ErrorIs(t, err, ErrNoDrawer)
	require.Contains(t, err.Error(), "quaternion")

	err = reg.Validate([]token.TypeSpec{
		dialogue,
		{Tag: "rotate", Fields: []token.FieldDef{{Name: "angle", Kind: "quaternion"}}},
	})
	require.ErrorIs(t, err, ErrNoDrawer)
	require.Contains(t, err.Error(), "rotate")

	reg.Register("quaternion", stringDrawer{})
	require.NoError(t, reg.Validate([]token.TypeSpec{{Tag: "rotate", Fields: []token.FieldDef{{Name: "angle", Kind: "quaternion"}}}}))
	require.Contains(t, reg.Kinds(), token.Kind("quaternion"))
}

func TestMapperRefusesUnknownKinds(t *testing.T) {
	m := newMapper()
	bad := token.New(token.TypeSpec{Tag: "rotate", Fields: []token.FieldDef{{Name: "angle", Kind: "quaternion"}}})
	_, err := m.For(bad)
	require.ErrorIs(t, err, ErrNoDrawer)
	require.Panics(t, func() { m.HeightOf(bad) })
}

func TestHeightCountsDrawerLinesAndChrome(t *testing.T) {
	m := newMapper()
	tok := token.New(dialogue)
	// reference 1, text 3, float 1, bool 1, int 1, choice 1, vector 2, color 1, future 1
	require.Equal(t, 12+ChromeLines, m.HeightOf(tok))

	m.LineHeight = 2
	m.Clear()
	require.Equal(t, (12+ChromeLines)*2, m.HeightOf(tok))

	other := token.New(dialogue)
	other.Name = "different name"
	require.Equal(t, m.HeightOf(tok), m.HeightOf(other))
}

func TestMappedLabelAndColors(t *testing.T) {
	m := newMapper()
	mp, err := m.For(token.New(dialogue))
	require.NoError(t, err)
	require.Equal(t, "Dialogue", mp.Label)

	c1, s1 := TypeColors("dialogue")
	c2, s2 := TypeColors("dialogue")
	require.Equal(t, c1, c2)
	require.Equal(t, s1, s2)
	_, _, v := s1.Hsv()
	require.InDelta(t, 1.0, v, 1e-9)
	_, sat, v := c1.Hsv()
	require.InDelta(t, 0.8, v, 1e-9)
	require.InDelta(t, 0.8, sat, 1e-9)

	m.Colorful = false
	m.Clear()
	mp, err = m.For(token.New(dialogue))
	require.NoError(t, err)
	_, sat, _ = mp.Color.Hsv()
	require.InDelta(t, 0, sat, 1e-9)
}

func TestLabel(t *testing.T) {
	require.Equal(t, "Play Animation", Label("play_animation"))
	require.Equal(t, "Play Animation", Label("PlayAnimationToken"))
	require.Equal(t, "Target ID", Label("targetID"))
	require.Equal(t, "Wait", Label("wait"))
	require.Equal(t, "Token", Label("Token"))
}

func TestFieldAt(t *testing.T) {
	mp := newMapper().MustFor(token.New(dialogue))
	require.Equal(t, NameField, mp.FieldAt(0))
	require.Equal(t, NameField, mp.FieldAt(1))
	require.Equal(t, 0, mp.FieldAt(2))
	require.Equal(t, 1, mp.FieldAt(3))
	require.Equal(t, 1, mp.FieldAt(5))
	require.Equal(t, 2, mp.FieldAt(6))
	require.Equal(t, 8, mp.FieldAt(100))
}

// drawWith draws tok once with input aimed at field and returns the changed flag.
func drawWith(t *testing.T, seq *token.Sequence, tok *token.Token, field int, in *Input) (bool, *Canvas) {
	t.Helper()
	m := newMapper()
	mp := m.MustFor(tok)
	c := NewCanvas(60, mp.Height())
	ctx := NewContext(c, seq)
	ctx.Focus = Focus{Token: 0, Field: field}
	ctx.Input = in
	changed := mp.Draw(ctx, Rect{X: 0, Y: 0, W: 60, H: mp.Height()}, 0, tok)
	require.Nil(t, ctx.Input, "input should be consumed by the focused drawer")
	return changed, c
}

func TestDrawRendersHeaderNameAndFields(t *testing.T) {
	tok := token.New(dialogue)
	tok.Name = "Greeting"
	changed, c := drawWith(t, nil, tok, NameField, nil)
	require.False(t, changed)
	require.True(t, strings.HasPrefix(c.Plain(0), "#0 - Dialogue"))
	require.True(t, strings.HasSuffix(c.Plain(0), RemoveLabel))
	require.Contains(t, c.Plain(1), "Token Name")
	require.Contains(t, c.Plain(1), "Greeting")
	require.Contains(t, c.Plain(2), "Speaker")
	require.Contains(t, c.Plain(2), "<none>")
	require.Contains(t, c.Plain(6), "2")
	require.Contains(t, c.Plain(7), "[ ]")
}

func TestDrawersApplyInput(t *testing.T) {
	seq := token.NewSequence("s", "edits")
	first := seq.AddFuture("door open")
	second := seq.AddFuture("hero ready")

	cases := []struct {
		name  string
		field int
		in    Input
		check func(t *testing.T, tok *token.Token)
	}{
		{"rename", NameField, Input{Commit: true, Text: "Intro"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, "Intro", tok.Name)
		}},
		{"reference set", 0, Input{Commit: true, Text: "hero"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, &token.Reference{ID: "hero"}, tok.Field(0).Value)
		}},
		{"text", 1, Input{Commit: true, Text: "Hello there"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, "Hello there", tok.Field(1).Value)
		}},
		{"float step", 2, Input{Key: "right"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, 2.1, tok.Field(2).Value)
		}},
		{"float typed", 2, Input{Commit: true, Text: " 0.25 "}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, 0.25, tok.Field(2).Value)
		}},
		{"bool toggle", 3, Input{Key: " "}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, true, tok.Field(3).Value)
		}},
		{"int decrement", 4, Input{Key: "-"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, -1, tok.Field(4).Value)
		}},
		{"choice wraps backwards", 5, Input{Key: "left"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, "sad", tok.Field(5).Value)
		}},
		{"vector", 6, Input{Commit: true, Text: "3, -4.5"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, token.Vec2{X: 3, Y: -4.5}, tok.Field(6).Value)
		}},
		{"color", 7, Input{Commit: true, Text: "ff0000"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, "#ff0000", tok.Field(7).Value.(colorful.Color).Hex())
		}},
		{"future cycles to first", 8, Input{Key: "right"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, &token.FutureRef{ID: first}, tok.Field(8).Value)
		}},
		{"future cycles back to last", 8, Input{Key: "left"}, func(t *testing.T, tok *token.Token) {
			require.Equal(t, &token.FutureRef{ID: second}, tok.Field(8).Value)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := token.New(dialogue)
			in := tc.in
			changed, _ := drawWith(t, seq, tok, tc.field, &in)
			require.True(t, changed)
			tc.check(t, tok)
		})
	}
}

func TestRejectedInputLeavesValue(t *testing.T) {
	tok := token.New(dialogue)
	changed, _ := drawWith(t, nil, tok, 4, &Input{Commit: true, Text: "twelve"})
	require.False(t, changed)
	require.Equal(t, 0, tok.Field(4).Value)

	changed, _ = drawWith(t, nil, tok, 6, &Input{Commit: true, Text: "1"})
	require.False(t, changed)

	changed, _ = drawWith(t, nil, tok, 8, &Input{Key: "right"})
	require.False(t, changed, "no futures to cycle through")
}

func TestReferenceClearsOnEmptyText(t *testing.T) {
	tok := token.New(dialogue)
	require.NoError(t, tok.Set(0, &token.Reference{ID: "hero"}))
	changed, c := drawWith(t, nil, tok, 0, &Input{Commit: true, Text: "  "})
	require.True(t, changed)
	require.Nil(t, tok.Field(0).Value)
	require.Contains(t, c.Plain(2), "<none>")
}

func TestUnfocusedDrawersIgnoreInput(t *testing.T) {
	tok := token.New(dialogue)
	m := newMapper()
	mp := m.MustFor(tok)
	ctx := NewContext(NewCanvas(60, mp.Height()), nil)
	ctx.Focus = Focus{Token: 3, Field: 4}
	ctx.Input = &Input{Key: "right"}
	require.False(t, mp.Draw(ctx, Rect{W: 60, H: mp.Height()}, 0, tok))
	require.NotNil(t, ctx.Input)
	require.Equal(t, 0, tok.Field(4).Value)
}

func TestObserversRewriteLabels(t *testing.T) {
	tok := token.New(dialogue)
	m := newMapper()
	mp := m.MustFor(tok)
	c := NewCanvas(60, mp.Height())
	ctx := NewContext(c, nil)
	var seen []int
	ctx.TokenObservers = []TokenObserver{func(td *TokenDrawn) { td.Label += " (edited)" }}
	ctx.FieldObservers = []FieldObserver{func(fd *FieldDrawn) {
		seen = append(seen, fd.FieldIndex)
		if fd.Field.Def.Name == "speaker" {
			fd.Label = "! " + fd.Label
			fd.Marker = MarkError
		}
	}}
	mp.Draw(ctx, Rect{W: 60, H: mp.Height()}, 0, tok)
	require.Contains(t, c.Plain(0), "#0 - Dialogue (edited)")
	require.Contains(t, c.Plain(2), "! Speaker")
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, seen)
}

func TestCanvasPutClipsAndSplices(t *testing.T) {
	c := NewCanvas(10, 2)
	c.Put(0, 0, "abcdefghij")
	c.Put(3, 0, "XY")
	require.Equal(t, "abcXYfghij", c.Plain(0))
	c.Put(8, 0, "1234")
	require.Equal(t, "abcXYfgh12", c.Plain(0))
	c.Put(-2, 1, "zzab")
	require.Equal(t, "ab        ", c.Plain(1))
	c.Put(0, 5, "ignored")
	require.Len(t, c.Lines(), 2)
	require.True(t, Rect{X: 2, Y: 2, W: 3, H: 2}.Contains(4, 3))
	require.False(t, Rect{X: 2, Y: 2, W: 3, H: 2}.Contains(5, 3))
}
