// Package drawer renders and edits token fields. Every field kind maps to a Drawer through
// an explicit Registry; a kind with no drawer is a configuration error, never skipped.
package drawer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jask/cutscenes/internal/token"
)

// ErrNoDrawer is returned when a field kind has no registered drawer.
var ErrNoDrawer = errors.New("no drawer registered")

// Drawer draws one field inside r and applies input addressed to it. It returns true when
// it changed the value through set.
type Drawer interface {
	Lines() int
	Draw(ctx *Context, r Rect, label string, f token.Field, set func(any)) bool
}

// TextEditor is implemented by drawers whose value can be typed in. EditText returns the
// initial text for the prompt.
type TextEditor interface {
	EditText(f token.Field) string
}

// Registry maps field kinds to drawers.
type Registry struct {
	drawers map[token.Kind]Drawer
}

// NewRegistry returns a registry holding a drawer for every built-in kind.
func NewRegistry() *Registry {
	r := &Registry{drawers: map[token.Kind]Drawer{}}
	r.Register(token.KindString, stringDrawer{})
	r.Register(token.KindText, textDrawer{lines: 3})
	r.Register(token.KindInt, intDrawer{})
	r.Register(token.KindFloat, floatDrawer{step: 0.1})
	r.Register(token.KindBool, boolDrawer{})
	r.Register(token.KindVector2, vectorDrawer{})
	r.Register(token.KindColor, colorDrawer{})
	r.Register(token.KindReference, referenceDrawer{})
	r.Register(token.KindFuture, futureDrawer{})
	r.Register(token.KindChoice, choiceDrawer{})
	return r
}

// Register binds d to kind, replacing any previous drawer.
func (r *Registry) Register(kind token.Kind, d Drawer) {
	if r.drawers == nil {
		r.drawers = map[token.Kind]Drawer{}
	}
	r.drawers[kind] = d
}

// Lookup returns the drawer for kind.
func (r *Registry) Lookup(kind token.Kind) (Drawer, error) {
	d, ok := r.drawers[kind]
	if !ok {
		return nil, fmt.Errorf("field kind %q: %w", kind, ErrNoDrawer)
	}
	return d, nil
}

// Kinds lists the registered kinds in name order.
func (r *Registry) Kinds() []token.Kind {
	out := make([]token.Kind, 0, len(r.drawers))
	for k := range r.drawers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every field of every spec has a drawer.
func (r *Registry) Validate(specs []token.TypeSpec) error {
	var errs []error
	for _, spec := range specs {
		for _, f := range spec.Fields {
			if _, err := r.Lookup(f.Kind); err != nil {
				errs = append(errs, fmt.Errorf("type %s field %s: %w", spec.Tag, f.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
