package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/token"
)

func sample() *token.Sequence {
	seq := token.NewSequence("s", "intro")
	seq.PutFuture(token.Future{ID: 1, Name: "door open"})

	dialogue := token.New(token.TypeSpec{Tag: "dialogue", Fields: []token.FieldDef{
		{Name: "speaker", Kind: token.KindReference},
		{Name: "line", Kind: token.KindText},
		{Name: "voice", Kind: token.KindString, AllowEmpty: true},
	}})
	_ = dialogue.Set(0, &token.Reference{ID: "guard_captian"})
	seq.Append(dialogue)

	await := token.New(token.TypeSpec{Tag: "await_future", Fields: []token.FieldDef{
		{Name: "future", Kind: token.KindFuture},
		{Name: "after", Kind: token.KindFuture, Nullable: true},
	}})
	_ = await.Set(0, &token.FutureRef{ID: 7})
	seq.Append(await)

	wait := token.New(token.TypeSpec{Tag: "wait", Fields: []token.FieldDef{
		{Name: "target", Kind: token.KindReference},
	}})
	seq.Append(wait)
	return seq
}

func TestRunDefaultCheckers(t *testing.T) {
	seq := sample()
	r := Run(seq, NewIDSet("guard_captain", "player", "door"))

	n, ok := r.For(0, 0)
	require.True(t, ok)
	require.Equal(t, High, n.Level)
	require.Contains(t, n.Message, "guard_captian")
	require.Equal(t, `did you mean "guard_captain"?`, n.Hint)

	n, ok = r.For(0, 1)
	require.True(t, ok)
	require.Equal(t, Medium, n.Level)

	_, ok = r.For(0, 2)
	require.False(t, ok, "allow_empty fields are not flagged")

	n, ok = r.For(1, 0)
	require.True(t, ok)
	require.Equal(t, "future #7 does not exist", n.Message)

	_, ok = r.For(1, 1)
	require.False(t, ok, "nullable futures may be unset")

	n, ok = r.For(2, 0)
	require.True(t, ok)
	require.Equal(t, "target is not set", n.Message)

	require.Equal(t, High, r.Highest())
	require.Len(t, r.Notices, 4)
	for i := 1; i < len(r.Notices); i++ {
		require.LessOrEqual(t, r.Notices[i-1].Token, r.Notices[i].Token)
	}
}

func TestMissingReferenceNeedsResolver(t *testing.T) {
	r := Run(sample(), nil)
	_, ok := r.For(0, 0)
	require.False(t, ok)
}

func TestResolvedReferencesPass(t *testing.T) {
	seq := sample()
	_ = seq.At(1).Set(0, &token.FutureRef{ID: 1})
	r := Run(seq, NewIDSet("guard_captian"))
	_, ok := r.For(0, 0)
	require.False(t, ok)
	_, ok = r.For(1, 0)
	require.False(t, ok)
}

func TestCustomCheckerOnly(t *testing.T) {
	calls := 0
	c := CheckerFunc(func(_ Env, ti, fi int, _ *token.Token, _ token.Field, add func(Notice)) {
		calls++
		if ti == 2 {
			add(Notice{Token: ti, Field: fi, Level: Low, Message: "custom"})
		}
	})
	r := Run(sample(), nil, c)
	require.Equal(t, 6, calls)
	require.Len(t, r.Notices, 1)
	require.Equal(t, Low, r.Highest())
}

func TestForKeepsMostSevere(t *testing.T) {
	low := CheckerFunc(func(_ Env, ti, fi int, _ *token.Token, _ token.Field, add func(Notice)) {
		add(Notice{Token: ti, Field: fi, Level: Low, Message: "low"})
	})
	r := Run(sample(), nil, low, NullChecker{})
	n, ok := r.For(2, 0)
	require.True(t, ok)
	require.Equal(t, High, n.Level)
	n, _ = r.For(0, 1)
	require.Equal(t, Low, n.Level)
}

func TestClosest(t *testing.T) {
	ids := []string{"player", "door", "guard_captain"}
	require.Equal(t, "player", Closest("playr", ids))
	require.Equal(t, "door", Closest("Door", ids))
	require.Equal(t, "", Closest("xyzzy", ids))
	require.Equal(t, "", Closest("x", nil))
}

func TestObserverMarksFields(t *testing.T) {
	r := Run(sample(), nil)
	obs := r.Observer()

	fd := &drawer.FieldDrawn{TokenIndex: 2, FieldIndex: 0, Label: "Target"}
	obs(fd)
	require.Equal(t, drawer.MarkError, fd.Marker)
	require.Equal(t, "! Target", fd.Label)

	fd = &drawer.FieldDrawn{TokenIndex: 0, FieldIndex: 1, Label: "Line"}
	obs(fd)
	require.Equal(t, drawer.MarkWarning, fd.Marker)

	fd = &drawer.FieldDrawn{TokenIndex: 0, FieldIndex: 2, Label: "Voice"}
	obs(fd)
	require.Equal(t, drawer.MarkNone, fd.Marker)
	require.Equal(t, "Voice", fd.Label)
}
