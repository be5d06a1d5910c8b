package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Compositor moves the staging buffer into the physical backing store.
type Compositor struct {
	Interpolator xdraw.Interpolator
}

// NewCompositor upscales with Catmull-Rom.
func NewCompositor() *Compositor {
	return &Compositor{Interpolator: xdraw.CatmullRom}
}

func (c *Compositor) Composite(s *Surface) {
	if s == nil {
		return
	}
	if s.Scale == 1 {
		s.Physical.CopyFrom(s.Staging)
		return
	}

	inter := s.intermediateBuffer()
	inter.CopyFrom(s.Staging)

	// The scaled draw is specified in device pixels; the base scale
	// transform must not apply on top of it.
	s.Save()
	defer s.Restore()
	s.SetTransform(Identity)

	dr := s.mapRect(image.Rect(0, 0, s.PW, s.PH))
	src := inter.Image()
	c.Interpolator.Scale(s.Physical.Image(), dr, src, src.Bounds(), draw.Src, nil)
}
