package tokenlist

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Event is one input event delivered to List.Update. Coordinates are absolute cells;
// the list translates them against the bounds it is given.
type Event interface {
	event()
}

type PointerDown struct {
	X, Y   int
	Button Button
}

type PointerMove struct {
	X, Y int
}

type PointerUp struct {
	X, Y int
}

// Key is a named key press, using Bubble Tea key names ("up", "esc", "shift+tab", " ").
type Key struct {
	Name string
}

// Text is committed text for the focused field.
type Text struct {
	Value string
}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Key) event()         {}
func (Text) event()        {}

// Result reports what an Update did.
type Result struct {
	Consumed bool
	// Changed is set when the sequence order changed or a row was removed.
	Changed bool
	Removed bool
}
