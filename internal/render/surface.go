package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"go.uber.org/zap"
	"golang.org/x/image/math/f64"

	"pixbridge/internal/config"
	"pixbridge/internal/platform"
)

var (
	ErrNoTarget    = errors.New("no renderable target")
	ErrInvalidSize = errors.New("invalid surface size")
)

// Identity is the identity affine transform.
var Identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Surface is the display surface: a physical backing store presented to the
// host and the logical-resolution staging buffer the converter fills.
type Surface struct {
	W     int
	H     int
	Scale float64
	PW    int
	PH    int

	Physical *FrameBuffer
	Staging  *FrameBuffer

	// intermediate is only needed when Scale > 1.
	intermediate *FrameBuffer

	transform f64.Aff3
	saved     []f64.Aff3
}

// PhysicalSize returns floor(w*s) x floor(h*s).
func PhysicalSize(w, h int, s float64) (int, int) {
	return int(math.Floor(float64(w) * s)), int(math.Floor(float64(h) * s))
}

func newSurface(w, h int, s float64) *Surface {
	pw, ph := PhysicalSize(w, h, s)
	return &Surface{
		W:         w,
		H:         h,
		Scale:     s,
		PW:        pw,
		PH:        ph,
		Physical:  NewFrameBuffer(pw, ph),
		Staging:   NewFrameBuffer(w, h),
		transform: f64.Aff3{s, 0, 0, 0, s, 0},
	}
}

func (s *Surface) Transform() f64.Aff3 { return s.transform }

func (s *Surface) SetTransform(m f64.Aff3) { s.transform = m }

func (s *Surface) Save() { s.saved = append(s.saved, s.transform) }

func (s *Surface) Restore() {
	if len(s.saved) == 0 {
		return
	}
	s.transform = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

// mapRect maps r through the current transform into device pixels. Only
// axis-aligned transforms are produced by this package.
func (s *Surface) mapRect(r image.Rectangle) image.Rectangle {
	m := s.transform
	x0 := math.Floor(m[0]*float64(r.Min.X) + m[2])
	y0 := math.Floor(m[4]*float64(r.Min.Y) + m[5])
	x1 := math.Floor(m[0]*float64(r.Max.X) + m[2])
	y1 := math.Floor(m[4]*float64(r.Max.Y) + m[5])
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

// FillRect fills a rectangle given in the current coordinate space.
func (s *Surface) FillRect(x, y, w, h int, c color.RGBA) {
	r := s.mapRect(image.Rect(x, y, x+w, y+h))
	s.Physical.FillRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), c)
}

// StrokeRect outlines a rectangle; line width is in the current space too.
func (s *Surface) StrokeRect(x, y, w, h, line int, c color.RGBA) {
	if line <= 0 {
		line = 1
	}
	s.FillRect(x, y, w, line, c)
	s.FillRect(x, y+h-line, w, line, c)
	s.FillRect(x, y, line, h, c)
	s.FillRect(x+w-line, y, line, h, c)
}

func (s *Surface) intermediateBuffer() *FrameBuffer {
	if s.intermediate == nil {
		s.intermediate = NewFrameBuffer(s.W, s.H)
	}
	return s.intermediate
}

// Manager owns the display surface and the host target it is presented to.
type Manager struct {
	host   platform.Host
	cfg    *config.Config
	log    *zap.Logger
	target platform.Target

	surface *Surface
}

func NewManager(host platform.Host, cfg *config.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{host: host, cfg: cfg, log: log}
}

// Init (re)creates the surface at width x height logical pixels, sampling
// the device scale factor anew. A failed Init drops any previous surface.
func (m *Manager) Init(width, height int) (*Surface, error) {
	s, err := m.init(width, height)
	if err != nil {
		m.surface = nil
		return nil, err
	}
	m.surface = s
	return s, nil
}

func (m *Manager) init(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if m.host == nil {
		return nil, fmt.Errorf("%w: no host", ErrNoTarget)
	}

	scale := m.SampleScale()
	pw, ph := PhysicalSize(width, height, scale)
	tc := platform.TargetConfig{
		Title:          m.cfg.Title,
		Width:          width,
		Height:         height,
		PhysicalWidth:  pw,
		PhysicalHeight: ph,
	}
	if m.target == nil {
		t, err := m.host.CreateTarget(tc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoTarget, err)
		}
		if t == nil {
			return nil, fmt.Errorf("%w: %s returned no target", ErrNoTarget, m.host.Name())
		}
		m.target = t
	} else {
		m.target.Resize(tc)
	}

	s := newSurface(width, height, scale)
	s.FillRect(0, 0, width, height, color.RGBA{A: 0xFF})

	m.log.Info("surface initialized",
		zap.String("host", m.host.Name()),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float64("scale", scale),
		zap.Int("physical_width", pw),
		zap.Int("physical_height", ph),
	)
	return s, nil
}

// SampleScale reports the factor the next Init would use.
func (m *Manager) SampleScale() float64 {
	s := m.cfg.ScaleOverride
	if s <= 0 && m.host != nil {
		s = m.host.DeviceScaleFactor()
	}
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 1 {
		return 1
	}
	return s
}

func (m *Manager) Surface() *Surface { return m.surface }

func (m *Manager) Target() platform.Target { return m.target }

// Present hands the physical backing store to the target.
func (m *Manager) Present() error {
	if m.surface == nil || m.target == nil {
		return ErrNoTarget
	}
	return m.target.Present(m.surface.Physical.Image())
}

// Release drops the surface buffers and closes the target.
func (m *Manager) Release() {
	if m.target != nil {
		m.target.Close()
		m.target = nil
	}
	m.surface = nil
}
