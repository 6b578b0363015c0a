package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/cutscenes/internal/token"
)

// ErrUnknownType is returned when a tag names no token type.
var ErrUnknownType = errors.New("unknown token type")

const currentVersion = 1

type fieldFile struct {
	Name       string   `toml:"name"`
	Kind       string   `toml:"kind"`
	Default    any      `toml:"default"`
	Options    []string `toml:"options"`
	Nullable   bool     `toml:"nullable"`
	AllowEmpty bool     `toml:"allow_empty"`
}

type typeFile struct {
	Tag      string      `toml:"tag"`
	Label    string      `toml:"label"`
	Produces bool        `toml:"produces"`
	Fields   []fieldFile `toml:"field"`
}

type sceneFile struct {
	Objects []string `toml:"objects"`
}

type catalogFile struct {
	Version int        `toml:"version"`
	Types   []typeFile `toml:"type"`
	Scene   sceneFile  `toml:"scene"`
}

// Catalog is the set of token types the editor can create, plus the scene objects
// references may point at.
type Catalog struct {
	specs   map[string]token.TypeSpec
	objects []string
}

// Builtin returns a catalog holding only the built-in types.
func Builtin() *Catalog {
	c := &Catalog{specs: map[string]token.TypeSpec{}}
	for _, s := range builtins() {
		c.specs[s.Tag] = s
	}
	return c
}

// Load reads a catalog file and merges its types over the built-ins. An empty path
// returns the built-ins.
func Load(path string) (*Catalog, error) {
	c := Builtin()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.merge(file); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return c, nil
}

// Parse is Load for catalog text already in memory.
func Parse(data string) (*Catalog, error) {
	c := Builtin()
	var file catalogFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.merge(file); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) merge(file catalogFile) error {
	if file.Version != currentVersion {
		return fmt.Errorf("version must be %d, got %d", currentVersion, file.Version)
	}
	seen := map[string]bool{}
	for i, tf := range file.Types {
		tag := strings.TrimSpace(tf.Tag)
		if tag == "" {
			return fmt.Errorf("type %d: tag is required", i+1)
		}
		if seen[tag] {
			return fmt.Errorf("type %q declared twice", tag)
		}
		seen[tag] = true
		spec := token.TypeSpec{Tag: tag, Label: strings.TrimSpace(tf.Label), Produces: tf.Produces}
		names := map[string]bool{}
		for _, ff := range tf.Fields {
			name := strings.TrimSpace(ff.Name)
			if name == "" {
				return fmt.Errorf("type %q: field name is required", tag)
			}
			if names[strings.ToLower(name)] {
				return fmt.Errorf("type %q: field %q declared twice", tag, name)
			}
			names[strings.ToLower(name)] = true
			def := token.FieldDef{
				Name:       name,
				Kind:       token.Kind(strings.ToLower(strings.TrimSpace(ff.Kind))),
				Options:    ff.Options,
				Nullable:   ff.Nullable,
				AllowEmpty: ff.AllowEmpty,
			}
			if def.Kind == "" {
				return fmt.Errorf("type %q field %q: kind is required", tag, name)
			}
			if def.Kind == token.KindChoice && len(def.Options) == 0 {
				return fmt.Errorf("type %q field %q: choice needs options", tag, name)
			}
			v, err := normalize(def.Kind, ff.Default)
			if err != nil {
				return fmt.Errorf("type %q field %q: %w", tag, name, err)
			}
			def.Default = v
			spec.Fields = append(spec.Fields, def)
		}
		c.specs[tag] = spec
	}
	c.objects = nil
	for _, o := range file.Scene.Objects {
		if o = strings.TrimSpace(o); o != "" {
			c.objects = append(c.objects, o)
		}
	}
	sort.Strings(c.objects)
	return nil
}

// normalize converts a decoded TOML default into the value type the kind's drawer edits.
func normalize(kind token.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case token.KindInt:
		switch x := v.(type) {
		case int64:
			return int(x), nil
		case float64:
			return int(x), nil
		}
	case token.KindFloat:
		switch x := v.(type) {
		case int64:
			return float64(x), nil
		case float64:
			return x, nil
		}
	case token.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case token.KindString, token.KindText, token.KindChoice:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case token.KindVector2:
		if xs, ok := v.([]any); ok && len(xs) == 2 {
			x, okx := number(xs[0])
			y, oky := number(xs[1])
			if okx && oky {
				return token.Vec2{X: x, Y: y}, nil
			}
		}
	case token.KindColor:
		if s, ok := v.(string); ok {
			if !strings.HasPrefix(s, "#") {
				s = "#" + s
			}
			col, err := colorful.Hex(s)
			if err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			return col, nil
		}
	case token.KindReference:
		if s, ok := v.(string); ok {
			return &token.Reference{ID: s}, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("default %v does not fit kind %s", v, kind)
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Spec returns the type registered under tag.
func (c *Catalog) Spec(tag string) (token.TypeSpec, bool) {
	s, ok := c.specs[tag]
	return s, ok
}

// Lookup is Spec with an ErrUnknownType error for a missing tag.
func (c *Catalog) Lookup(tag string) (token.TypeSpec, error) {
	s, ok := c.specs[tag]
	if !ok {
		return token.TypeSpec{}, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	return s, nil
}

// Specs returns every type ordered by label.
func (c *Catalog) Specs() []token.TypeSpec {
	out := make([]token.TypeSpec, 0, len(c.specs))
	for _, s := range c.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// SceneObjects returns the ids references may resolve to.
func (c *Catalog) SceneObjects() []string {
	return append([]string(nil), c.objects...)
}

// Has reports whether id is a known scene object.
func (c *Catalog) Has(id string) bool {
	i := sort.SearchStrings(c.objects, id)
	return i < len(c.objects) && c.objects[i] == id
}

// IDs is SceneObjects; with Has it lets a catalog resolve references.
func (c *Catalog) IDs() []string { return c.SceneObjects() }
