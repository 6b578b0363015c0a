// Package rows computes row heights and vertical offsets for a token sequence.
// Drawing and hit-testing both go through Layout so they always agree.
package rows

import (
	"log"

	"github.com/jask/cutscenes/internal/token"
)

// Metrics reports the height of a token's row. It must depend only on the token's type.
type Metrics interface {
	HeightOf(t *token.Token) int
}

// MetricsFunc adapts a function to Metrics.
type MetricsFunc func(t *token.Token) int

func (f MetricsFunc) HeightOf(t *token.Token) int { return f(t) }

// Layout walks a sequence with a Metrics provider.
type Layout struct {
	Seq     *token.Sequence
	Metrics Metrics
	// LineHeight is the fallback height for rows that cannot be measured.
	LineHeight int
	Logger     *log.Logger
}

// New returns a Layout with a one-line fallback height.
func New(seq *token.Sequence, m Metrics) *Layout {
	return &Layout{Seq: seq, Metrics: m, LineHeight: 1}
}

func (l *Layout) Count() int {
	if l.Seq == nil {
		return 0
	}
	return l.Seq.Count()
}

// HeightAt returns the height of row i. Out-of-range rows are logged and measured as
// a single line.
func (l *Layout) HeightAt(i int) int {
	if i < 0 || i >= l.Count() {
		name := ""
		if l.Seq != nil {
			name = l.Seq.Name
		}
		l.logger().Printf("warn: token index %d is out of range in cutscene %q", i, name)
		return l.fallback()
	}
	return l.Metrics.HeightOf(l.Seq.At(i))
}

// Offset returns the summed height of rows [0,k), leaving out row skip (-1 skips none).
func (l *Layout) Offset(k, skip int) int {
	y := 0
	for i := 0; i < k && i < l.Count(); i++ {
		if i == skip {
			continue
		}
		y += l.HeightAt(i)
	}
	return y
}

// Total returns the height of every row.
func (l *Layout) Total() int {
	return l.Offset(l.Count(), -1)
}

// RowAt returns the row whose span [top, top+height) contains y. A y past the last row
// resolves to the last row and a negative y to the first; an empty sequence gives -1.
func (l *Layout) RowAt(y int) int {
	n := l.Count()
	if n == 0 {
		return -1
	}
	top := 0
	for i := 0; i < n; i++ {
		h := l.HeightAt(i)
		if y < top+h {
			return i
		}
		top += h
	}
	return n - 1
}

// SlotAt is RowAt over the sequence with row skip taken out. The result indexes the
// remaining rows, which is where the skipped row would land if dropped at y.
func (l *Layout) SlotAt(y, skip int) int {
	n := l.Count()
	if n == 0 {
		return -1
	}
	top, slot := 0, 0
	for i := 0; i < n; i++ {
		if i == skip {
			continue
		}
		h := l.HeightAt(i)
		if y < top+h {
			return slot
		}
		top += h
		slot++
	}
	return n - 1
}

func (l *Layout) fallback() int {
	if l.LineHeight <= 0 {
		return 1
	}
	return l.LineHeight
}

func (l *Layout) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}
