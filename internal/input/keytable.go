package input

// KeyCode is the engine's canonical key vocabulary. The numeric values are
// part of the engine ABI.
type KeyCode int

const (
	KeyNone KeyCode = iota
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyEnter
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeySpace
)

// Host virtual key codes.
const (
	VKBackspace = 8
	VKTab       = 9
	VKEnter     = 13
	VKShift     = 16
	VKControl   = 17
	VKAlt       = 18
	VKEscape    = 27
	VKSpace     = 32
	VKEnd       = 35
	VKHome      = 36
	VKLeft      = 37
	VKUp        = 38
	VKRight     = 39
	VKDown      = 40
	VKDelete    = 46
	VK0         = 48
	VKA         = 65
	VKMeta      = 91
	VKF1        = 112
)

var keyTable = map[int]KeyCode{
	VKBackspace: KeyBackspace,
	VKDelete:    KeyDelete,
	VKLeft:      KeyLeft,
	VKRight:     KeyRight,
	VKHome:      KeyHome,
	VKEnd:       KeyEnd,
	VKEnter:     KeyEnter,
	VKTab:       KeyTab,
	VKEscape:    KeyEscape,
	VKUp:        KeyUp,
	VKDown:      KeyDown,
	VKSpace:     KeySpace,
}

// MapKey returns the canonical code for a host key code, or KeyNone.
func MapKey(hostKeyCode int) KeyCode {
	return keyTable[hostKeyCode]
}

// IsControl reports whether k is one of the navigation/control keys whose
// host default action is suppressed on key down.
func (k KeyCode) IsControl() bool {
	return k >= KeyBackspace && k <= KeySpace
}

func (k KeyCode) String() string {
	switch k {
	case KeyBackspace:
		return "backspace"
	case KeyDelete:
		return "delete"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	case KeyEscape:
		return "escape"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeySpace:
		return "space"
	default:
		return "none"
	}
}
