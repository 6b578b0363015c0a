// Package validate runs field checkers over a sequence and exposes the results as a
// field observer, so annotated fields are marked while the list draws them.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/cutscenes/internal/drawer"
	"github.com/jask/cutscenes/internal/token"
)

type Level int

const (
	Low Level = iota + 1
	Medium
	High
)

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return "none"
}

// Notice is one finding about a field.
type Notice struct {
	Token   int
	Field   int
	Level   Level
	Message string
	Hint    string
}

// Resolver answers whether a reference id names a known scene object.
type Resolver interface {
	Has(id string) bool
	IDs() []string
}

// IDSet is a Resolver over a fixed list of ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := IDSet{}
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Env is what checkers may consult besides the field itself. Resolver may be nil.
type Env struct {
	Seq      *token.Sequence
	Resolver Resolver
}

// Checker inspects one field and reports zero or more notices through add.
type Checker interface {
	Check(env Env, tokenIndex, fieldIndex int, t *token.Token, f token.Field, add func(Notice))
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(env Env, tokenIndex, fieldIndex int, t *token.Token, f token.Field, add func(Notice))

func (fn CheckerFunc) Check(env Env, tokenIndex, fieldIndex int, t *token.Token, f token.Field, add func(Notice)) {
	fn(env, tokenIndex, fieldIndex, t, f, add)
}

// Defaults returns the checkers the editor ships with.
func Defaults() []Checker {
	return []Checker{NullChecker{}, EmptyStringChecker{}, MissingFutureChecker{}, MissingReferenceChecker{}}
}

// NullChecker flags unset references and futures in fields that are not nullable.
type NullChecker struct{}

func (NullChecker) Check(_ Env, ti, fi int, _ *token.Token, f token.Field, add func(Notice)) {
	if f.Def.Nullable {
		return
	}
	switch f.Def.Kind {
	case token.KindReference, token.KindFuture:
	default:
		return
	}
	if isNil(f.Value) {
		add(Notice{Token: ti, Field: fi, Level: High, Message: fmt.Sprintf("%s is not set", f.Def.Name)})
	}
}

// EmptyStringChecker flags empty text where the field does not allow it.
type EmptyStringChecker struct{}

func (EmptyStringChecker) Check(_ Env, ti, fi int, _ *token.Token, f token.Field, add func(Notice)) {
	if f.Def.AllowEmpty {
		return
	}
	if f.Def.Kind != token.KindString && f.Def.Kind != token.KindText {
		return
	}
	if s, _ := f.Value.(string); strings.TrimSpace(s) == "" {
		add(Notice{Token: ti, Field: fi, Level: Medium, Message: fmt.Sprintf("%s is empty", f.Def.Name)})
	}
}

// MissingFutureChecker flags future references whose id the sequence does not define.
type MissingFutureChecker struct{}

func (MissingFutureChecker) Check(env Env, ti, fi int, _ *token.Token, f token.Field, add func(Notice)) {
	ref, ok := futureRef(f.Value)
	if !ok || env.Seq == nil {
		return
	}
	if _, found := env.Seq.Future(ref.ID); !found {
		add(Notice{Token: ti, Field: fi, Level: High, Message: fmt.Sprintf("future #%d does not exist", ref.ID)})
	}
}

// MissingReferenceChecker flags references the resolver does not know, suggesting the
// closest known id. It does nothing without a resolver.
type MissingReferenceChecker struct{}

func (MissingReferenceChecker) Check(env Env, ti, fi int, _ *token.Token, f token.Field, add func(Notice)) {
	if env.Resolver == nil {
		return
	}
	ref, ok := reference(f.Value)
	if !ok || env.Resolver.Has(ref.ID) {
		return
	}
	n := Notice{Token: ti, Field: fi, Level: High, Message: fmt.Sprintf("unknown scene object %q", ref.ID)}
	if best := Closest(ref.ID, env.Resolver.IDs()); best != "" {
		n.Hint = fmt.Sprintf("did you mean %q?", best)
	}
	add(n)
}

// Closest returns the candidate with the smallest edit distance to s, or "" when none
// is within half of s's length.
func Closest(s string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(s), strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(s) / 2
	if limit < 1 {
		limit = 1
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *token.Reference:
		return x == nil
	case *token.FutureRef:
		return x == nil
	}
	return false
}

func reference(v any) (token.Reference, bool) {
	switch x := v.(type) {
	case token.Reference:
		return x, true
	case *token.Reference:
		if x != nil {
			return *x, true
		}
	}
	return token.Reference{}, false
}

func futureRef(v any) (token.FutureRef, bool) {
	switch x := v.(type) {
	case token.FutureRef:
		return x, true
	case *token.FutureRef:
		if x != nil {
			return *x, true
		}
	}
	return token.FutureRef{}, false
}

type key struct{ token, field int }

// Report holds the notices from one Run.
type Report struct {
	Notices []Notice
	byField map[key]Notice
}

// Run checks every field of every token in seq.
func Run(seq *token.Sequence, resolver Resolver, checkers ...Checker) Report {
	if len(checkers) == 0 {
		checkers = Defaults()
	}
	r := Report{byField: map[key]Notice{}}
	env := Env{Seq: seq, Resolver: resolver}
	add := func(n Notice) {
		r.Notices = append(r.Notices, n)
		k := key{n.Token, n.Field}
		if cur, ok := r.byField[k]; !ok || n.Level > cur.Level {
			r.byField[k] = n
		}
	}
	for ti, t := range seq.Tokens() {
		for fi, f := range t.Fields() {
			for _, c := range checkers {
				c.Check(env, ti, fi, t, f, add)
			}
		}
	}
	sort.SliceStable(r.Notices, func(i, j int) bool {
		a, b := r.Notices[i], r.Notices[j]
		if a.Token != b.Token {
			return a.Token < b.Token
		}
		return a.Field < b.Field
	})
	return r
}

// For returns the most severe notice for a field.
func (r Report) For(tokenIndex, fieldIndex int) (Notice, bool) {
	n, ok := r.byField[key{tokenIndex, fieldIndex}]
	return n, ok
}

// Highest returns the most severe level in the report, or 0 when it is clean.
func (r Report) Highest() Level {
	var l Level
	for _, n := range r.Notices {
		if n.Level > l {
			l = n.Level
		}
	}
	return l
}

// Observer marks annotated fields while they are drawn.
func (r Report) Observer() drawer.FieldObserver {
	return func(fd *drawer.FieldDrawn) {
		n, ok := r.For(fd.TokenIndex, fd.FieldIndex)
		if !ok {
			return
		}
		switch n.Level {
		case High:
			fd.Marker = drawer.MarkError
			fd.Label = "! " + fd.Label
		default:
			fd.Marker = drawer.MarkWarning
			fd.Label = "? " + fd.Label
		}
	}
}
