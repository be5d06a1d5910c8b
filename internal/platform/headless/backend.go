// Package headless provides a windowless host. Events are scripted per frame
// and presented frames are kept in memory.
package headless

import (
	"errors"
	"image"
	"sync"

	"pixbridge/internal/platform"
)

var ErrNoDisplay = errors.New("headless: display unavailable")

type Options struct {
	Scale float64
	// Origin is the client position of the target's top-left corner.
	OriginX float64
	OriginY float64
	// Frames bounds Run. 0 runs until Stop.
	Frames int
	// Unavailable makes CreateTarget fail.
	Unavailable bool
}

type Backend struct {
	opts      Options
	target    *target
	clipboard *clipboard

	mu        sync.Mutex
	pending   map[int][]platform.Event
	frame     int
	stopped   bool
	delivered []*platform.Event
}

func New(opts Options) *Backend {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Backend{
		opts:      opts,
		clipboard: &clipboard{},
		pending:   map[int][]platform.Event{},
	}
}

func (b *Backend) Name() string { return "headless" }

func (b *Backend) DeviceScaleFactor() float64 { return b.opts.Scale }

// SetScale changes the factor reported to later target creations.
func (b *Backend) SetScale(s float64) { b.opts.Scale = s }

// Move repositions the target inside the client area.
func (b *Backend) Move(x, y float64) {
	b.opts.OriginX = x
	b.opts.OriginY = y
}

func (b *Backend) CreateTarget(cfg platform.TargetConfig) (platform.Target, error) {
	if b.opts.Unavailable {
		return nil, ErrNoDisplay
	}
	b.target = &target{backend: b, cfg: cfg}
	return b.target, nil
}

func (b *Backend) Clipboard() platform.Clipboard { return b.clipboard }

// Queue schedules ev for delivery before the given frame (0-based).
func (b *Backend) Queue(frame int, ev platform.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[frame] = append(b.pending[frame], ev)
}

func (b *Backend) Stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

// Dispatch delivers ev immediately and returns it with its default-action
// state as left by the handler.
func (b *Backend) Dispatch(h platform.Handler, ev platform.Event) *platform.Event {
	e := ev
	h.HandleEvent(&e)
	return &e
}

func (b *Backend) Run(h platform.Handler) error {
	for {
		b.mu.Lock()
		if b.stopped || (b.opts.Frames > 0 && b.frame >= b.opts.Frames) {
			b.mu.Unlock()
			return nil
		}
		events := b.pending[b.frame]
		delete(b.pending, b.frame)
		b.mu.Unlock()

		for i := range events {
			ev := events[i]
			h.HandleEvent(&ev)
			b.delivered = append(b.delivered, &ev)
		}
		h.Frame()

		b.mu.Lock()
		b.frame++
		b.mu.Unlock()
	}
}

// Delivered returns the events dispatched by Run, in order.
func (b *Backend) Delivered() []*platform.Event { return b.delivered }

// Frames reports how many frames Run has completed.
func (b *Backend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame
}

// Target returns the last created target, or nil.
func (b *Backend) Target() *Target {
	if b.target == nil {
		return nil
	}
	return &Target{t: b.target}
}

type target struct {
	backend  *Backend
	cfg      platform.TargetConfig
	last     *image.RGBA
	presents int
	closed   bool
}

func (t *target) Bounds() platform.Rect {
	return platform.Rect{
		X: t.backend.opts.OriginX,
		Y: t.backend.opts.OriginY,
		W: float64(t.cfg.Width),
		H: float64(t.cfg.Height),
	}
}

func (t *target) Resize(cfg platform.TargetConfig) { t.cfg = cfg }

func (t *target) Present(img *image.RGBA) error {
	if t.closed {
		return errors.New("headless: present on closed target")
	}
	if t.last == nil || t.last.Rect != img.Rect {
		t.last = image.NewRGBA(img.Rect)
	}
	copy(t.last.Pix, img.Pix)
	t.presents++
	return nil
}

func (t *target) Close() { t.closed = true }

// Target is a read-only handle on a headless target for inspection.
type Target struct{ t *target }

func (t *Target) Config() platform.TargetConfig { return t.t.cfg }
func (t *Target) LastFrame() *image.RGBA         { return t.t.last }
func (t *Target) Presents() int                  { return t.t.presents }
func (t *Target) Closed() bool                   { return t.t.closed }

type clipboard struct {
	mu   sync.Mutex
	text string
}

func (c *clipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *clipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}
