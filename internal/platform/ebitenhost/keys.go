package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	"pixbridge/internal/input"
)

var virtualKeys = map[ebiten.Key]int{
	ebiten.KeyBackspace:    input.VKBackspace,
	ebiten.KeyTab:          input.VKTab,
	ebiten.KeyEnter:        input.VKEnter,
	ebiten.KeyNumpadEnter:  input.VKEnter,
	ebiten.KeyShiftLeft:    input.VKShift,
	ebiten.KeyShiftRight:   input.VKShift,
	ebiten.KeyControlLeft:  input.VKControl,
	ebiten.KeyControlRight: input.VKControl,
	ebiten.KeyAltLeft:      input.VKAlt,
	ebiten.KeyAltRight:     input.VKAlt,
	ebiten.KeyEscape:       input.VKEscape,
	ebiten.KeySpace:        input.VKSpace,
	ebiten.KeyPageUp:       33,
	ebiten.KeyPageDown:     34,
	ebiten.KeyEnd:          input.VKEnd,
	ebiten.KeyHome:         input.VKHome,
	ebiten.KeyArrowLeft:    input.VKLeft,
	ebiten.KeyArrowUp:      input.VKUp,
	ebiten.KeyArrowRight:   input.VKRight,
	ebiten.KeyArrowDown:    input.VKDown,
	ebiten.KeyInsert:       45,
	ebiten.KeyDelete:       input.VKDelete,
	ebiten.KeyMetaLeft:     input.VKMeta,
	ebiten.KeyMetaRight:    92,
}

func init() {
	digits := []ebiten.Key{
		ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
		ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
	for i, k := range digits {
		virtualKeys[k] = input.VK0 + i
	}
	letters := []ebiten.Key{
		ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF, ebiten.KeyG,
		ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL, ebiten.KeyM, ebiten.KeyN,
		ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR, ebiten.KeyS, ebiten.KeyT, ebiten.KeyU,
		ebiten.KeyV, ebiten.KeyW, ebiten.KeyX, ebiten.KeyY, ebiten.KeyZ,
	}
	for i, k := range letters {
		virtualKeys[k] = input.VKA + i
	}
	functions := []ebiten.Key{
		ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4, ebiten.KeyF5, ebiten.KeyF6,
		ebiten.KeyF7, ebiten.KeyF8, ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
	}
	for i, k := range functions {
		virtualKeys[k] = input.VKF1 + i
	}
}

// VirtualKey returns the browser virtual key code for k, or 0 when the key
// has none the bridge cares about.
func VirtualKey(k ebiten.Key) int {
	return virtualKeys[k]
}
