package input

import (
	"math"
	"unicode/utf8"

	"go.uber.org/zap"

	"pixbridge/internal/platform"
)

// BoundsFunc reports the surface rectangle in host client coordinates. It is
// called for every pointer event; ok is false while no surface exists.
// Pointer events outside the rectangle are not the engine's.
type BoundsFunc func() (r platform.Rect, ok bool)

// Normalizer translates host events and forwards them to the engine
// synchronously, in delivery order.
type Normalizer struct {
	bounds BoundsFunc
	sink   Sink
	log    *zap.Logger
}

func NewNormalizer(bounds BoundsFunc, sink Sink, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{bounds: bounds, sink: sink, log: log}
}

// Handle normalizes ev, marks its default action as prevented where
// required and forwards the result before returning.
func (n *Normalizer) Handle(ev *platform.Event) {
	if out, ok := n.Normalize(ev); ok {
		Forward(n.sink, out)
	}
}

// Normalize maps ev without forwarding it.
func (n *Normalizer) Normalize(ev *platform.Event) (Event, bool) {
	switch ev.Type {
	case platform.EventMouseMove:
		x, y, ok := n.local(ev)
		if !ok {
			return nil, false
		}
		return PointerMove{X: x, Y: y, Buttons: ev.Buttons}, true

	case platform.EventMouseDown, platform.EventMouseUp:
		x, y, ok := n.local(ev)
		if !ok {
			return nil, false
		}
		ev.PreventDefault()
		return PointerButton{X: x, Y: y, Button: ev.Button, Pressed: ev.Type == platform.EventMouseDown}, true

	case platform.EventWheel:
		if _, _, ok := n.local(ev); !ok {
			return nil, false
		}
		ev.PreventDefault()
		return Scroll{DX: ev.DeltaX, DY: ev.DeltaY}, true

	case platform.EventKeyDown, platform.EventKeyUp:
		code := MapKey(ev.KeyCode)
		if code == KeyNone {
			return nil, false
		}
		down := ev.Type == platform.EventKeyDown
		if down && code.IsControl() {
			ev.PreventDefault()
		}
		return Key{Code: code, Pressed: down, Shift: ev.Shift}, true

	case platform.EventKeyPress:
		if ev.Ctrl || ev.Meta || utf8.RuneCountInString(ev.Key) != 1 {
			return nil, false
		}
		r, _ := utf8.DecodeRuneInString(ev.Key)
		if r == utf8.RuneError {
			return nil, false
		}
		return Text{CodePoint: int(r)}, true

	case platform.EventContextMenu:
		if _, _, ok := n.local(ev); ok {
			ev.PreventDefault()
		}
		return nil, false
	}

	n.log.Debug("ignored host event", zap.Stringer("type", ev.Type))
	return nil, false
}

func (n *Normalizer) local(ev *platform.Event) (int, int, bool) {
	if n.bounds == nil {
		return 0, 0, false
	}
	r, ok := n.bounds()
	if !ok {
		return 0, 0, false
	}
	x, y := ev.ClientX-r.X, ev.ClientY-r.Y
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return 0, 0, false
	}
	return int(math.Floor(x)), int(math.Floor(y)), true
}
