package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/jask/cutscenes/internal/catalog"
	"github.com/jask/cutscenes/internal/database/repository"
	"github.com/jask/cutscenes/internal/token"
	"github.com/jask/cutscenes/internal/validate"
)

const clipKind = "cutscene-token"

// ErrNoCutscene is returned by operations that need an open cutscene.
var ErrNoCutscene = errors.New("no cutscene open")

// Clipboard is the text clipboard used for copy and paste.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard returns the OS clipboard.
func SystemClipboard() Clipboard { return systemClipboard{} }

type clipToken struct {
	Kind   string          `json:"kind"`
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Fields json.RawMessage `json:"fields"`
}

// Session owns the cutscene being edited. The TUI reaches the sequence only through
// it, so there is one owner for the token list at any time.
type Session struct {
	Repo      *repository.CutsceneRepo
	Catalog   *catalog.Catalog
	Clipboard Clipboard
	Logger    *log.Logger

	seq   *token.Sequence
	dirty bool
}

func NewSession(repo *repository.CutsceneRepo, cat *catalog.Catalog) *Session {
	return &Session{Repo: repo, Catalog: cat, Clipboard: SystemClipboard()}
}

// Sequence returns the open cutscene, or nil.
func (s *Session) Sequence() *token.Sequence { return s.seq }

func (s *Session) Dirty() bool { return s.dirty }

// MarkDirty records an edit made directly on the sequence, e.g. by the list widget.
func (s *Session) MarkDirty() { s.dirty = true }

// Open loads cutscene id, replacing whatever was open.
func (s *Session) Open(ctx context.Context, id string) error {
	seq, err := s.Repo.Load(ctx, id, s.Catalog)
	if err != nil {
		return fmt.Errorf("open cutscene: %w", err)
	}
	s.seq = seq
	s.dirty = false
	s.logger().Printf("opened cutscene %q (%d tokens)", seq.Name, seq.Count())
	return nil
}

// New starts an unsaved, empty cutscene.
func (s *Session) New(name string) *token.Sequence {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	s.seq = token.NewSequence(uuid.NewString(), name)
	s.dirty = true
	return s.seq
}

// Save writes the open cutscene.
func (s *Session) Save(ctx context.Context) error {
	if s.seq == nil {
		return ErrNoCutscene
	}
	if err := s.Repo.Save(ctx, s.seq); err != nil {
		return fmt.Errorf("save cutscene: %w", err)
	}
	s.dirty = false
	return nil
}

// Rename changes the open cutscene's name. A stored cutscene is renamed in place; an
// unsaved one picks the name up on its first Save.
func (s *Session) Rename(ctx context.Context, name string) error {
	if s.seq == nil {
		return ErrNoCutscene
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	err := s.Repo.Rename(ctx, s.seq.ID, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.dirty = true
	case err != nil:
		return fmt.Errorf("rename cutscene: %w", err)
	}
	s.seq.Name = name
	return nil
}

// Add creates a token of type tag and inserts it after row after (-1 inserts at the
// top). Producer types get a fresh future wired into their first future field.
func (s *Session) Add(tag string, after int) (int, error) {
	if s.seq == nil {
		return -1, ErrNoCutscene
	}
	spec, err := s.Catalog.Lookup(tag)
	if err != nil {
		return -1, err
	}
	t := token.New(spec)
	s.produce(spec, t)
	return s.insert(t, after)
}

// Copy writes row i to the clipboard.
func (s *Session) Copy(i int) error {
	if s.seq == nil {
		return ErrNoCutscene
	}
	t := s.seq.At(i)
	if t == nil {
		return fmt.Errorf("copy row %d: %w", i, token.ErrIndexOutOfRange)
	}
	fields, err := repository.MarshalFields(t)
	if err != nil {
		return err
	}
	data, err := json.Marshal(clipToken{Kind: clipKind, Type: t.Type, Name: t.Name, Fields: fields})
	if err != nil {
		return err
	}
	return s.Clipboard.WriteAll(string(data))
}

// Paste inserts the token on the clipboard after row after and returns its index.
func (s *Session) Paste(after int) (int, error) {
	if s.seq == nil {
		return -1, ErrNoCutscene
	}
	text, err := s.Clipboard.ReadAll()
	if err != nil {
		return -1, fmt.Errorf("read clipboard: %w", err)
	}
	var clip clipToken
	if err := json.Unmarshal([]byte(text), &clip); err != nil || clip.Kind != clipKind {
		return -1, fmt.Errorf("clipboard does not hold a token")
	}
	spec, err := s.Catalog.Lookup(clip.Type)
	if err != nil {
		return -1, err
	}
	t := token.New(spec)
	t.Name = clip.Name
	if len(clip.Fields) > 0 {
		if err := repository.UnmarshalFields(t, clip.Fields); err != nil {
			return -1, err
		}
	}
	s.produce(spec, t)
	return s.insert(t, after)
}

// Duplicate inserts a deep copy of row i right after it.
func (s *Session) Duplicate(i int) (int, error) {
	if s.seq == nil {
		return -1, ErrNoCutscene
	}
	t := s.seq.At(i)
	if t == nil {
		return -1, fmt.Errorf("duplicate row %d: %w", i, token.ErrIndexOutOfRange)
	}
	c := t.Clone()
	if spec, ok := s.Catalog.Spec(c.Type); ok {
		s.produce(spec, c)
	}
	return s.insert(c, i)
}

// Validate runs the default checkers. References are resolved against the catalog's
// scene objects when it declares any.
func (s *Session) Validate() validate.Report {
	if s.seq == nil {
		return validate.Report{}
	}
	var resolver validate.Resolver
	if len(s.Catalog.SceneObjects()) > 0 {
		resolver = s.Catalog
	}
	return validate.Run(s.seq, resolver)
}

func (s *Session) produce(spec token.TypeSpec, t *token.Token) {
	if !spec.Produces {
		return
	}
	for i, f := range t.Fields() {
		if f.Def.Kind == token.KindFuture {
			id := s.seq.AddFuture(t.Name)
			_ = t.Set(i, &token.FutureRef{ID: id})
			return
		}
	}
}

func (s *Session) insert(t *token.Token, after int) (int, error) {
	at := after + 1
	if at < 0 {
		at = 0
	}
	if at > s.seq.Count() {
		at = s.seq.Count()
	}
	if err := s.seq.Insert(at, t); err != nil {
		return -1, err
	}
	s.dirty = true
	return at, nil
}

func (s *Session) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}
