package render

import (
	"image"
	"image/color"
)

// FrameBuffer is a tightly packed RGBA pixel store.
type FrameBuffer struct {
	W      int
	H      int
	Pixels []uint8 // RGBA
}

func NewFrameBuffer(w, h int) *FrameBuffer {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &FrameBuffer{W: w, H: h, Pixels: make([]uint8, w*h*4)}
}

// Image returns an image.RGBA sharing the buffer's pixels.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Pixels,
		Stride: fb.W * 4,
		Rect:   image.Rect(0, 0, fb.W, fb.H),
	}
}

func (fb *FrameBuffer) Clear(c color.RGBA) {
	for i := 0; i < len(fb.Pixels); i += 4 {
		fb.Pixels[i+0] = c.R
		fb.Pixels[i+1] = c.G
		fb.Pixels[i+2] = c.B
		fb.Pixels[i+3] = c.A
	}
}

// CopyFrom copies src when both buffers have the same dimensions.
func (fb *FrameBuffer) CopyFrom(src *FrameBuffer) bool {
	if src == nil || src.W != fb.W || src.H != fb.H {
		return false
	}
	copy(fb.Pixels, src.Pixels)
	return true
}

func (fb *FrameBuffer) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= fb.W || y >= fb.H {
		return color.RGBA{}
	}
	i := (y*fb.W + x) * 4
	return color.RGBA{R: fb.Pixels[i], G: fb.Pixels[i+1], B: fb.Pixels[i+2], A: fb.Pixels[i+3]}
}

func (fb *FrameBuffer) FillRect(x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, fb.W, fb.H))
	if r.Empty() {
		return
	}
	for row := r.Min.Y; row < r.Max.Y; row++ {
		off := (row*fb.W + r.Min.X) * 4
		for col := 0; col < r.Dx(); col++ {
			idx := off + col*4
			fb.Pixels[idx+0] = c.R
			fb.Pixels[idx+1] = c.G
			fb.Pixels[idx+2] = c.B
			fb.Pixels[idx+3] = c.A
		}
	}
}

func (fb *FrameBuffer) StrokeRect(x, y, w, h, line int, c color.RGBA) {
	if line <= 0 {
		line = 1
	}
	fb.FillRect(x, y, w, line, c)
	fb.FillRect(x, y+h-line, w, line, c)
	fb.FillRect(x, y, line, h, c)
	fb.FillRect(x+w-line, y, line, h, c)
}
