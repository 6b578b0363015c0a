package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var waitSpec = TypeSpec{
	Tag:   "wait",
	Label: "Wait",
	Fields: []FieldDef{
		{Name: "seconds", Kind: KindFloat, Default: 1.0},
	},
}

func seqOf(names ...string) *Sequence {
	s := NewSequence("s1", "test")
	for _, n := range names {
		t := New(waitSpec)
		t.Name = n
		s.Append(t)
	}
	return s
}

func names(s *Sequence) []string {
	out := make([]string, 0, s.Count())
	for _, t := range s.Tokens() {
		out = append(out, t.Name)
	}
	return out
}

func TestSwapIsInvolution(t *testing.T) {
	s := seqOf("a", "b", "c", "d")
	orig := names(s)
	for i := 0; i < s.Count(); i++ {
		for j := 0; j < s.Count(); j++ {
			if i == j {
				continue
			}
			require.NoError(t, s.Swap(i, j))
			require.NoError(t, s.Swap(i, j))
			require.Equal(t, orig, names(s), "swap(%d,%d) twice", i, j)
		}
	}
}

func TestSwapPreservesMultiset(t *testing.T) {
	s := seqOf("a", "b", "c")
	require.NoError(t, s.Swap(0, 2))
	require.Equal(t, []string{"c", "b", "a"}, names(s))
	require.ElementsMatch(t, []string{"a", "b", "c"}, names(s))
}

func TestSwapOutOfRange(t *testing.T) {
	s := seqOf("a", "b")
	err := s.Swap(0, 2)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIndexOutOfRange))
	require.Equal(t, []string{"a", "b"}, names(s))
	require.ErrorIs(t, s.Swap(-1, 0), ErrIndexOutOfRange)
}

func TestRemoveAtKeepsIndicesContiguous(t *testing.T) {
	s := seqOf("a", "b", "c")
	removed, err := s.RemoveAt(1)
	require.NoError(t, err)
	require.Equal(t, "b", removed.Name)
	require.Equal(t, []string{"a", "c"}, names(s))
	require.Nil(t, s.At(2))

	_, err = s.RemoveAt(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.Equal(t, 2, s.Count())
}

func TestInsert(t *testing.T) {
	s := seqOf("a", "c")
	b := New(waitSpec)
	b.Name = "b"
	require.NoError(t, s.Insert(1, b))
	end := New(waitSpec)
	end.Name = "d"
	require.NoError(t, s.Insert(3, end))
	require.Equal(t, []string{"a", "b", "c", "d"}, names(s))
	require.ErrorIs(t, s.Insert(9, b), ErrIndexOutOfRange)
}

func TestFutures(t *testing.T) {
	s := NewSequence("s", "futures")
	a := s.AddFuture("door opened")
	b := s.AddFuture("hero arrived")
	require.NotEqual(t, a, b)
	f, ok := s.Future(b)
	require.True(t, ok)
	require.Equal(t, "hero arrived", f.Name)

	s.PutFuture(Future{ID: 10, Name: "restored"})
	c := s.AddFuture("after restore")
	require.Equal(t, 11, c)
	require.Len(t, s.Futures(), 4)
	require.Equal(t, a, s.Futures()[0].ID)
}

func TestNewTokenDefaults(t *testing.T) {
	spec := TypeSpec{
		Tag: "mixed",
		Fields: []FieldDef{
			{Name: "line", Kind: KindString},
			{Name: "count", Kind: KindInt},
			{Name: "mood", Kind: KindChoice, Options: []string{"calm", "angry"}},
			{Name: "target", Kind: KindReference},
			{Name: "offset", Kind: KindVector2, Default: Vec2{X: 1, Y: 2}},
		},
	}
	tok := New(spec)
	require.Equal(t, "mixed", tok.Name)
	require.Equal(t, "", tok.Field(0).Value)
	require.Equal(t, 0, tok.Field(1).Value)
	require.Equal(t, "calm", tok.Field(2).Value)
	require.Nil(t, tok.Field(3).Value)
	require.Equal(t, Vec2{X: 1, Y: 2}, tok.Field(4).Value)
	require.Equal(t, 2, tok.FieldByName("Mood"))
	require.Equal(t, -1, tok.FieldByName("missing"))
}

func TestCloneIsDeep(t *testing.T) {
	spec := TypeSpec{Tag: "r", Fields: []FieldDef{{Name: "target", Kind: KindReference}}}
	tok := New(spec)
	require.NoError(t, tok.Set(0, &Reference{ID: "hero"}))
	c := tok.Clone()
	c.Field(0).Value.(*Reference).ID = "villain"
	require.Equal(t, "hero", tok.Field(0).Value.(*Reference).ID)
	require.ErrorIs(t, tok.Set(3, 1), ErrIndexOutOfRange)
}
