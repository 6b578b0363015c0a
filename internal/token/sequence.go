package token

import (
	"errors"
	"fmt"
	"sort"
)

// ErrIndexOutOfRange is returned for token or field indices outside the sequence.
var ErrIndexOutOfRange = errors.New("index out of range")

// Future is a value promised by one token and consumed by later ones.
type Future struct {
	ID   int
	Name string
}

// Sequence is an ordered cutscene. Indices are always contiguous 0..Count()-1.
type Sequence struct {
	ID   string
	Name string

	tokens     []*Token
	futures    map[int]Future
	nextFuture int
}

// NewSequence returns an empty sequence.
func NewSequence(id, name string) *Sequence {
	return &Sequence{ID: id, Name: name, futures: map[int]Future{}, nextFuture: 1}
}

func (s *Sequence) Count() int { return len(s.tokens) }

func (s *Sequence) IsEmpty() bool { return len(s.tokens) == 0 }

// At returns the token at i, or nil when i is out of range.
func (s *Sequence) At(i int) *Token {
	if i < 0 || i >= len(s.tokens) {
		return nil
	}
	return s.tokens[i]
}

// Tokens returns the tokens in order. The slice is a copy; the tokens are not.
func (s *Sequence) Tokens() []*Token { return append([]*Token(nil), s.tokens...) }

// Swap exchanges the tokens at i and j.
func (s *Sequence) Swap(i, j int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if err := s.check(j); err != nil {
		return err
	}
	s.tokens[i], s.tokens[j] = s.tokens[j], s.tokens[i]
	return nil
}

// RemoveAt deletes the token at i and returns it.
func (s *Sequence) RemoveAt(i int) (*Token, error) {
	if err := s.check(i); err != nil {
		return nil, err
	}
	t := s.tokens[i]
	s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
	return t, nil
}

// Append adds t at the end and returns its index.
func (s *Sequence) Append(t *Token) int {
	s.tokens = append(s.tokens, t)
	return len(s.tokens) - 1
}

// Insert places t at i, shifting later tokens down. i may equal Count().
func (s *Sequence) Insert(i int, t *Token) error {
	if i < 0 || i > len(s.tokens) {
		return fmt.Errorf("insert at %d: %w", i, ErrIndexOutOfRange)
	}
	s.tokens = append(s.tokens, nil)
	copy(s.tokens[i+1:], s.tokens[i:])
	s.tokens[i] = t
	return nil
}

// AddFuture declares a new future and returns its id.
func (s *Sequence) AddFuture(name string) int {
	if s.futures == nil {
		s.futures = map[int]Future{}
	}
	if s.nextFuture < 1 {
		s.nextFuture = 1
	}
	id := s.nextFuture
	s.nextFuture++
	s.futures[id] = Future{ID: id, Name: name}
	return id
}

// PutFuture restores a future with a known id.
func (s *Sequence) PutFuture(f Future) {
	if s.futures == nil {
		s.futures = map[int]Future{}
	}
	s.futures[f.ID] = f
	if f.ID >= s.nextFuture {
		s.nextFuture = f.ID + 1
	}
}

func (s *Sequence) Future(id int) (Future, bool) {
	f, ok := s.futures[id]
	return f, ok
}

// Futures returns all futures ordered by id.
func (s *Sequence) Futures() []Future {
	out := make([]Future, 0, len(s.futures))
	for _, f := range s.futures {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Sequence) check(i int) error {
	if i < 0 || i >= len(s.tokens) {
		return fmt.Errorf("token %d of %d: %w", i, len(s.tokens), ErrIndexOutOfRange)
	}
	return nil
}
