package render

import (
	"encoding/binary"

	"pixbridge/internal/memory"
)

// UnpackARGB splits a 0xAARRGGBB word.
func UnpackARGB(argb uint32) (r, g, b, a uint8) {
	return uint8(argb >> 16), uint8(argb >> 8), uint8(argb), uint8(argb >> 24)
}

// PackARGB is the inverse of UnpackARGB.
func PackARGB(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// ARGBToRGBA transcodes little-endian ARGB words from src into R,G,B,A bytes
// in dst and returns the number of pixels written.
func ARGBToRGBA(dst, src []byte) int {
	n := min(len(dst), len(src)) / 4
	for i := 0; i < n; i++ {
		off := i * 4
		argb := binary.LittleEndian.Uint32(src[off:])
		dst[off+0] = uint8(argb >> 16)
		dst[off+1] = uint8(argb >> 8)
		dst[off+2] = uint8(argb)
		dst[off+3] = uint8(argb >> 24)
	}
	return n
}

// Converter fills the staging buffer from the engine's frame buffer.
type Converter struct{}

// Convert reads count pixels at base through view into dst. It reports false
// without touching dst when base is unset or view is invalid, leaving the
// previous frame in place.
func (Converter) Convert(view memory.View, base uint32, count int, dst *FrameBuffer) (bool, error) {
	if base == 0 || !view.Valid() || count <= 0 {
		return false, nil
	}
	count = min(count, dst.W*dst.H)
	src, err := view.Window(base, uint32(count)*4)
	if err != nil {
		return false, err
	}
	ARGBToRGBA(dst.Pixels[:count*4], src)
	return true, nil
}
