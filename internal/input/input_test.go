package input

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"pixbridge/internal/platform"
)

type recorder struct {
	calls []any
}

func (r *recorder) OnPointerMove(x, y, mask int) { r.calls = append(r.calls, PointerMove{x, y, mask}) }
func (r *recorder) OnPointerButton(x, y, button int, down bool) {
	r.calls = append(r.calls, PointerButton{x, y, button, down})
}
func (r *recorder) OnScroll(dx, dy float64) { r.calls = append(r.calls, Scroll{dx, dy}) }
func (r *recorder) OnKey(code int, down, shift bool) {
	r.calls = append(r.calls, Key{KeyCode(code), down, shift})
}
func (r *recorder) OnChar(cp int) { r.calls = append(r.calls, Text{cp}) }

func fixedBounds(x, y float64) BoundsFunc {
	return func() (platform.Rect, bool) {
		return platform.Rect{X: x, Y: y, W: 320, H: 240}, true
	}
}

func TestMapKey(t *testing.T) {
	cases := map[int]KeyCode{
		8:  KeyBackspace,
		46: KeyDelete,
		37: KeyLeft,
		39: KeyRight,
		36: KeyHome,
		35: KeyEnd,
		13: KeyEnter,
		9:  KeyTab,
		27: KeyEscape,
		38: KeyUp,
		40: KeyDown,
		32: KeySpace,
		65: KeyNone,
		16: KeyNone,
		0:  KeyNone,
	}
	for host, want := range cases {
		if got := MapKey(host); got != want {
			t.Fatalf("MapKey(%d) = %v, want %v", host, got, want)
		}
	}
	if int(KeyBackspace) != 1 || int(KeyLeft) != 3 || int(KeySpace) != 12 {
		t.Fatal("canonical key codes changed")
	}
}

func TestPointerButtonTranslatesCoordinates(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(10, 10), rec, zaptest.NewLogger(t))

	ev := &platform.Event{Type: platform.EventMouseDown, ClientX: 110, ClientY: 80, Button: 0}
	n.Handle(ev)

	want := []any{PointerButton{X: 100, Y: 70, Button: 0, Pressed: true}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("got %v, want %v", rec.calls, want)
	}
	if !ev.DefaultPrevented() {
		t.Fatal("pointer down must suppress the default action")
	}

	up := &platform.Event{Type: platform.EventMouseUp, ClientX: 10.9, ClientY: 249.5, Button: 2}
	n.Handle(up)
	if got := rec.calls[1]; got != (PointerButton{X: 0, Y: 239, Button: 2, Pressed: false}) {
		t.Fatalf("unexpected release %v", got)
	}
	if !up.DefaultPrevented() {
		t.Fatal("pointer up must suppress the default action")
	}
}

func TestPointerMoveQueriesBoundsEveryEvent(t *testing.T) {
	rec := &recorder{}
	origin := 0.0
	queries := 0
	bounds := func() (platform.Rect, bool) {
		queries++
		return platform.Rect{X: origin, Y: origin, W: 100, H: 100}, true
	}
	n := NewNormalizer(bounds, rec, nil)

	n.Handle(&platform.Event{Type: platform.EventMouseMove, ClientX: 50.7, ClientY: 20.2, Buttons: 1})
	origin = 20
	move := &platform.Event{Type: platform.EventMouseMove, ClientX: 50.7, ClientY: 20.2, Buttons: 3}
	n.Handle(move)

	want := []any{PointerMove{X: 50, Y: 20, Buttons: 1}, PointerMove{X: 30, Y: 0, Buttons: 3}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("got %v, want %v", rec.calls, want)
	}
	if queries != 2 {
		t.Fatalf("expected a bounds query per event, got %d", queries)
	}
	if move.DefaultPrevented() {
		t.Fatal("pointer move must not suppress the default action")
	}
}

func TestPointerOutsideSurfaceIsDropped(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(10, 10), rec, nil)
	events := []*platform.Event{
		{Type: platform.EventMouseDown, ClientX: 2, ClientY: 500},
		{Type: platform.EventMouseUp, ClientX: 330, ClientY: 20},
		{Type: platform.EventMouseMove, ClientX: 9.5, ClientY: 20},
		{Type: platform.EventWheel, ClientX: 20, ClientY: 250, DeltaY: 40},
		{Type: platform.EventContextMenu, ClientX: 0, ClientY: 0},
	}
	for _, ev := range events {
		n.Handle(ev)
		if ev.DefaultPrevented() {
			t.Fatalf("%v outside the surface suppressed the default action", ev.Type)
		}
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected nothing forwarded, got %v", rec.calls)
	}

	n.Handle(&platform.Event{Type: platform.EventMouseDown, ClientX: 329.5, ClientY: 249.5})
	want := []any{PointerButton{X: 319, Y: 239, Pressed: true}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("got %v, want %v", rec.calls, want)
	}
}

func TestPointerWithoutSurfaceIsDropped(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(func() (platform.Rect, bool) { return platform.Rect{}, false }, rec, nil)
	n.Handle(&platform.Event{Type: platform.EventMouseMove, ClientX: 1, ClientY: 1})
	if len(rec.calls) != 0 {
		t.Fatalf("expected nothing forwarded, got %v", rec.calls)
	}
}

func TestWheelForwardsRawDeltas(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(0, 0), rec, nil)
	ev := &platform.Event{Type: platform.EventWheel, DeltaX: -1.5, DeltaY: 40}
	n.Handle(ev)
	if !reflect.DeepEqual(rec.calls, []any{Scroll{DX: -1.5, DY: 40}}) {
		t.Fatalf("unexpected calls %v", rec.calls)
	}
	if !ev.DefaultPrevented() {
		t.Fatal("wheel must suppress page scrolling")
	}
}

func TestKeyEvents(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(0, 0), rec, nil)

	down := &platform.Event{Type: platform.EventKeyDown, KeyCode: 37, Shift: true}
	n.Handle(down)
	up := &platform.Event{Type: platform.EventKeyUp, KeyCode: 37}
	n.Handle(up)
	letter := &platform.Event{Type: platform.EventKeyDown, KeyCode: 65}
	n.Handle(letter)

	want := []any{Key{Code: KeyLeft, Pressed: true, Shift: true}, Key{Code: KeyLeft, Pressed: false}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("got %v, want %v", rec.calls, want)
	}
	if !down.DefaultPrevented() {
		t.Fatal("control key down must suppress the default action")
	}
	if up.DefaultPrevented() {
		t.Fatal("key up must keep the default action")
	}
	if letter.DefaultPrevented() {
		t.Fatal("unmapped key must keep the default action")
	}
}

func TestTextEvents(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(0, 0), rec, nil)

	n.Handle(&platform.Event{Type: platform.EventKeyPress, Key: "a"})
	n.Handle(&platform.Event{Type: platform.EventKeyPress, Key: "é"})
	n.Handle(&platform.Event{Type: platform.EventKeyPress, Key: "c", Ctrl: true})
	n.Handle(&platform.Event{Type: platform.EventKeyPress, Key: "v", Meta: true})
	n.Handle(&platform.Event{Type: platform.EventKeyPress, Key: "Enter"})
	n.Handle(&platform.Event{Type: platform.EventKeyPress, Key: ""})

	want := []any{Text{CodePoint: 'a'}, Text{CodePoint: 0xE9}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("got %v, want %v", rec.calls, want)
	}
}

func TestContextMenuSuppressed(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(0, 0), rec, nil)
	ev := &platform.Event{Type: platform.EventContextMenu, ClientX: 5, ClientY: 5}
	n.Handle(ev)
	if !ev.DefaultPrevented() || len(rec.calls) != 0 {
		t.Fatalf("context menu: prevented=%v calls=%v", ev.DefaultPrevented(), rec.calls)
	}
}

func TestEventsForwardInOrder(t *testing.T) {
	rec := &recorder{}
	n := NewNormalizer(fixedBounds(0, 0), rec, nil)
	events := []platform.Event{
		{Type: platform.EventMouseMove, ClientX: 1, ClientY: 2},
		{Type: platform.EventKeyDown, KeyCode: 13},
		{Type: platform.EventKeyPress, Key: "x"},
		{Type: platform.EventWheel, DeltaY: 3},
	}
	for i := range events {
		n.Handle(&events[i])
	}
	want := []any{
		PointerMove{X: 1, Y: 2},
		Key{Code: KeyEnter, Pressed: true},
		Text{CodePoint: 'x'},
		Scroll{DY: 3},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("got %v, want %v", rec.calls, want)
	}
}
