package token

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind is the declared value type of a field. The built-in kinds below each have a
// drawer; catalogs may declare other kinds as long as a drawer is registered for them.
type Kind string

const (
	KindString    Kind = "string"
	KindText      Kind = "text"
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindBool      Kind = "bool"
	KindVector2   Kind = "vector2"
	KindColor     Kind = "color"
	KindReference Kind = "reference"
	KindFuture    Kind = "future"
	KindChoice    Kind = "choice"
)

// Vec2 is a 2D vector value.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) String() string { return fmt.Sprintf("%g, %g", v.X, v.Y) }

// Reference points at a scene object resolved by the host.
type Reference struct {
	ID string
}

// FutureRef points at a future declared in the same sequence.
type FutureRef struct {
	ID int
}

// FieldDef describes one field of a token type.
type FieldDef struct {
	Name       string
	Kind       Kind
	Default    any
	Options    []string
	Nullable   bool
	AllowEmpty bool
}

// TypeSpec describes a token type: its tag, label and ordered fields.
type TypeSpec struct {
	Tag      string
	Label    string
	Fields   []FieldDef
	Produces bool
}

// Field is one named value on a token.
type Field struct {
	Def   FieldDef
	Value any
}

// Token is one instruction in a cutscene.
type Token struct {
	Type   string
	Name   string
	fields []Field
}

// New creates a token of the given type with every field at its default value.
func New(spec TypeSpec) *Token {
	t := &Token{Type: spec.Tag, Name: spec.Label, fields: make([]Field, len(spec.Fields))}
	if t.Name == "" {
		t.Name = spec.Tag
	}
	for i, def := range spec.Fields {
		t.fields[i] = Field{Def: def, Value: ZeroValue(def)}
	}
	return t
}

// NumFields returns the number of fields on the token.
func (t *Token) NumFields() int { return len(t.fields) }

// Field returns the i-th field.
func (t *Token) Field(i int) Field { return t.fields[i] }

// Fields returns a copy of the token's fields.
func (t *Token) Fields() []Field { return append([]Field(nil), t.fields...) }

// Set replaces the value of the i-th field.
func (t *Token) Set(i int, v any) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field %d of %s: %w", i, t.Type, ErrIndexOutOfRange)
	}
	t.fields[i].Value = v
	return nil
}

// FieldByName returns the index of the named field, or -1.
func (t *Token) FieldByName(name string) int {
	for i, f := range t.fields {
		if strings.EqualFold(f.Def.Name, name) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	out := &Token{Type: t.Type, Name: t.Name, fields: make([]Field, len(t.fields))}
	for i, f := range t.fields {
		def := f.Def
		def.Options = append([]string(nil), f.Def.Options...)
		out.fields[i] = Field{Def: def, Value: cloneValue(f.Value)}
	}
	return out
}

// ZeroValue returns the initial value of a field: its declared default, or the zero
// value of its kind.
func ZeroValue(def FieldDef) any {
	if def.Default != nil {
		return cloneValue(def.Default)
	}
	switch def.Kind {
	case KindString, KindText:
		return ""
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindBool:
		return false
	case KindVector2:
		return Vec2{}
	case KindColor:
		return colorful.Color{R: 1, G: 1, B: 1}
	case KindChoice:
		if len(def.Options) > 0 {
			return def.Options[0]
		}
		return ""
	}
	return nil
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Reference:
		if x == nil {
			return (*Reference)(nil)
		}
		c := *x
		return &c
	case *FutureRef:
		if x == nil {
			return (*FutureRef)(nil)
		}
		c := *x
		return &c
	}
	return v
}
