// Package app wires the engine to the host: it answers the engine's imports,
// runs the per-frame presentation pipeline and routes host input back.
package app

import (
	"errors"

	"go.uber.org/zap"

	"pixbridge/internal/config"
	"pixbridge/internal/diag"
	"pixbridge/internal/engine"
	"pixbridge/internal/input"
	"pixbridge/internal/memory"
	"pixbridge/internal/platform"
	"pixbridge/internal/render"
)

// Engine is the part of the engine the bridge drives.
type Engine interface {
	input.Sink
	Frame() error
	MemoryAccessors() []memory.Accessor
}

// Bridge implements platform.Handler for the host and engine.Imports for the
// engine. All calls happen on the host's single thread of control.
type Bridge struct {
	cfg  *config.Config
	host platform.Host
	log  *zap.Logger
	diag *diag.Bridge

	surfaces   *render.Manager
	converter  render.Converter
	compositor *render.Compositor

	engine     Engine
	locator    *memory.Locator
	normalizer *input.Normalizer

	base    uint32
	aborted bool
	closed  bool
}

var _ engine.Imports = (*Bridge)(nil)
var _ platform.Handler = (*Bridge)(nil)

func New(cfg *config.Config, host platform.Host, d *diag.Bridge, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	if d == nil {
		d = diag.NewBridge(cfg, nil, log)
	}
	return &Bridge{
		cfg:        cfg,
		host:       host,
		log:        log,
		diag:       d,
		surfaces:   render.NewManager(host, cfg, log.Named("surface")),
		compositor: render.NewCompositor(),
	}
}

// Attach connects the engine whose memory holds the frame buffer and which
// receives normalized input.
func (b *Bridge) Attach(e Engine) {
	b.engine = e
	b.locator = memory.NewLocator(e.MemoryAccessors()...)
	b.normalizer = input.NewNormalizer(b.bounds, e, b.log.Named("input"))
}

func (b *Bridge) bounds() (platform.Rect, bool) {
	if b.surfaces.Surface() == nil || b.surfaces.Target() == nil {
		return platform.Rect{}, false
	}
	return b.surfaces.Target().Bounds(), true
}

// Surface returns the current surface, or nil before a successful Init.
func (b *Bridge) Surface() *render.Surface { return b.surfaces.Surface() }

// Init creates or recreates the surface. Failures are reported and leave
// the bridge without a surface.
func (b *Bridge) Init(width, height int) bool {
	if b.closed {
		return false
	}
	if _, err := b.surfaces.Init(width, height); err != nil {
		b.diag.Errorf("Surface init failed: %v", err)
		return false
	}
	return true
}

func (b *Bridge) SetFrameBufferBase(addr uint32) {
	b.base = addr
}

func (b *Bridge) DeviceScale() float64 {
	if s := b.surfaces.Surface(); s != nil {
		return s.Scale
	}
	return b.surfaces.SampleScale()
}

func (b *Bridge) ClipboardText() string {
	if b.host == nil || b.host.Clipboard() == nil {
		return ""
	}
	text, err := b.host.Clipboard().ReadText()
	if err != nil {
		b.diag.Unhandled(err)
		return ""
	}
	return text
}

func (b *Bridge) SetClipboardText(text string) {
	if b.host == nil || b.host.Clipboard() == nil {
		return
	}
	if err := b.host.Clipboard().WriteText(text); err != nil {
		b.diag.Unhandled(err)
	}
}

// Abort stops the frame pipeline and reports what verbatim.
func (b *Bridge) Abort(what string) {
	if b.aborted {
		return
	}
	b.aborted = true
	b.diag.Abort(what)
}

func (b *Bridge) Aborted() bool { return b.aborted }

// Frame ticks the engine and presents its frame buffer.
func (b *Bridge) Frame() {
	if b.aborted || b.closed {
		return
	}
	if b.engine != nil {
		if err := b.engine.Frame(); err != nil {
			switch {
			case errors.Is(err, engine.ErrAborted):
				b.Abort(err.Error())
				return
			case errors.Is(err, engine.ErrClosed):
			default:
				b.diag.Unhandled(err)
			}
		}
	}
	b.present()
}

func (b *Bridge) present() {
	s := b.surfaces.Surface()
	if s == nil || b.base == 0 || b.locator == nil {
		return
	}

	view, err := b.locator.Resolve()
	if err != nil {
		b.diag.Unavailable(err)
		return
	}
	ok, err := b.converter.Convert(view, b.base, s.W*s.H, s.Staging)
	if err != nil {
		if errors.Is(err, memory.ErrUnavailable) {
			b.diag.Unavailable(err)
		} else {
			b.diag.Unhandled(err)
		}
		return
	}
	if !ok {
		return
	}

	b.compositor.Composite(s)
	if err := b.surfaces.Present(); err != nil {
		b.diag.Unhandled(err)
	}
}

func (b *Bridge) HandleEvent(ev *platform.Event) {
	if b.closed {
		return
	}
	if ev.Type == platform.EventClose {
		b.Close()
		return
	}
	if b.normalizer == nil {
		return
	}
	b.normalizer.Handle(ev)
}

// Close releases the surface and drops the memory accessors.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.surfaces.Release()
	if b.locator != nil {
		b.locator.Close()
	}
	b.base = 0
	b.diag.Flush()
	b.log.Debug("bridge closed")
}
