package platform

import "image"

type TargetConfig struct {
	Title string
	// Logical presentation size.
	Width  int
	Height int
	// Backing store size in device pixels.
	PhysicalWidth  int
	PhysicalHeight int
}

type EventType int

const (
	EventUnknown EventType = iota
	EventClose
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventWheel
	EventKeyDown
	EventKeyUp
	EventKeyPress
	EventContextMenu
)

func (t EventType) String() string {
	switch t {
	case EventClose:
		return "close"
	case EventMouseMove:
		return "mousemove"
	case EventMouseDown:
		return "mousedown"
	case EventMouseUp:
		return "mouseup"
	case EventWheel:
		return "wheel"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventKeyPress:
		return "keypress"
	case EventContextMenu:
		return "contextmenu"
	default:
		return "unknown"
	}
}

// Event is a host-native input event. Pointer positions are client
// coordinates of the host window in logical pixels; KeyCode uses the
// browser virtual key numbering (8 = Backspace, 37 = ArrowLeft, 65 = A).
//
// The desktop and headless hosts have no native default actions. Handlers
// still mark prevented events so a host with default actions can skip them;
// the headless host keeps the mark on its delivery log.
type Event struct {
	Type EventType

	ClientX float64
	ClientY float64
	// Button is the changed button (0 primary, 1 middle, 2 secondary).
	Button int
	// Buttons is the held-button mask (1 primary, 2 secondary, 4 middle).
	Buttons int

	DeltaX float64
	DeltaY float64

	KeyCode int
	// Key is the produced text for EventKeyPress.
	Key   string
	Shift bool
	Ctrl  bool
	Meta  bool

	defaultPrevented bool
}

// PreventDefault suppresses the host's default action for the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Handler receives host callbacks on the host's single thread of control.
type Handler interface {
	HandleEvent(ev *Event)
	Frame()
}

type Host interface {
	Name() string
	// DeviceScaleFactor reports physical pixels per logical pixel.
	DeviceScaleFactor() float64
	CreateTarget(cfg TargetConfig) (Target, error)
	Clipboard() Clipboard
	// Run drives h until the host stops.
	Run(h Handler) error
}

// Target is the display element the surface is presented into.
type Target interface {
	// Bounds reports the target rectangle in client coordinates. It is
	// queried anew on every call.
	Bounds() Rect
	Resize(cfg TargetConfig)
	Present(img *image.RGBA) error
	Close()
}

type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}
