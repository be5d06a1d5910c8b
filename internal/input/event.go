// Package input turns host events into the engine's input vocabulary.
package input

// Sink is the engine's event ingestion surface.
type Sink interface {
	OnPointerMove(x, y, buttonMask int)
	OnPointerButton(x, y, button int, down bool)
	OnScroll(dx, dy float64)
	OnKey(code int, down, shift bool)
	OnChar(codePoint int)
}

// Event is one normalized input event. Coordinates are surface-local
// logical pixels.
type Event interface {
	forward(s Sink)
}

type PointerMove struct {
	X, Y    int
	Buttons int
}

type PointerButton struct {
	X, Y    int
	Button  int
	Pressed bool
}

type Scroll struct {
	DX, DY float64
}

type Key struct {
	Code    KeyCode
	Pressed bool
	Shift   bool
}

type Text struct {
	CodePoint int
}

func (e PointerMove) forward(s Sink)   { s.OnPointerMove(e.X, e.Y, e.Buttons) }
func (e PointerButton) forward(s Sink) { s.OnPointerButton(e.X, e.Y, e.Button, e.Pressed) }
func (e Scroll) forward(s Sink)        { s.OnScroll(e.DX, e.DY) }
func (e Key) forward(s Sink)           { s.OnKey(int(e.Code), e.Pressed, e.Shift) }
func (e Text) forward(s Sink)          { s.OnChar(e.CodePoint) }

// Forward delivers ev to s.
func Forward(s Sink, ev Event) {
	if s == nil || ev == nil {
		return
	}
	ev.forward(s)
}
