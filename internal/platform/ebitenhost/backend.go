// Package ebitenhost is the desktop host. It owns the window, runs the frame
// scheduler, polls input devices and presents the surface with ebiten.
package ebitenhost

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"pixbridge/internal/config"
	"pixbridge/internal/diag"
	"pixbridge/internal/platform"
	"pixbridge/internal/ui"
)

type Backend struct {
	cfg    *config.Config
	log    *zap.Logger
	theme  ui.Theme
	chrome ui.Chrome
	// console feeds the diagnostics strip; nil hides it.
	console *diag.Ring

	target    *target
	clipboard *clipboardChain

	mu    sync.Mutex
	fatal string
}

func New(cfg *config.Config, console *diag.Ring, log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{
		cfg:       cfg,
		log:       log,
		theme:     ui.DefaultTheme(),
		chrome:    ui.ChromeFromConfig(cfg),
		console:   console,
		clipboard: newClipboardChain(log),
	}
}

func (b *Backend) Name() string { return "ebiten" }

func (b *Backend) DeviceScaleFactor() float64 {
	m := ebiten.Monitor()
	if m == nil {
		return 1
	}
	return m.DeviceScaleFactor()
}

func (b *Backend) CreateTarget(cfg platform.TargetConfig) (platform.Target, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("ebiten: invalid target size %dx%d", cfg.Width, cfg.Height)
	}
	b.target = &target{backend: b}
	b.target.Resize(cfg)
	return b.target, nil
}

func (b *Backend) Clipboard() platform.Clipboard { return b.clipboard }

// Fatal records an unrecoverable engine failure. The game loop shows it in
// a message box and terminates.
func (b *Backend) Fatal(what string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fatal == "" {
		b.fatal = what
	}
}

func (b *Backend) takeFatal() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fatal
}

func (b *Backend) showFatal(what string) {
	b.log.Error("engine aborted", zap.String("reason", what))
	dialog.Message("%s", what).Title(b.cfg.Title + ": engine aborted").Error()
}

func (b *Backend) Run(h platform.Handler) error {
	ebiten.SetWindowTitle(b.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	if b.target != nil {
		ebiten.SetWindowSize(ui.WindowSize(b.target.cfg.Width, b.target.cfg.Height, b.chrome, b.theme))
	}

	g := newGame(b, h)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

// target is the surface's place inside the window. Its bounds follow the
// window size, so they are computed on every query.
type target struct {
	backend *Backend
	cfg     platform.TargetConfig

	pixels  []byte
	pw, ph  int
	pending bool
	closed  bool

	winW int
	winH int
}

func (t *target) Resize(cfg platform.TargetConfig) {
	t.cfg = cfg
	t.winW, t.winH = ui.WindowSize(cfg.Width, cfg.Height, t.backend.chrome, t.backend.theme)
	ebiten.SetWindowSize(t.winW, t.winH)
}

func (t *target) layout() ui.Layout {
	return ui.ComputeLayout(t.winW, t.winH, t.cfg.Width, t.cfg.Height, t.backend.chrome, t.backend.theme)
}

func (t *target) Bounds() platform.Rect {
	r := t.layout().Surface
	return platform.Rect{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// scale is the device pixels per logical pixel of the presented surface.
func (t *target) scale() float64 {
	if t.cfg.Width <= 0 || t.cfg.PhysicalWidth <= 0 {
		return 1
	}
	return float64(t.cfg.PhysicalWidth) / float64(t.cfg.Width)
}

func (t *target) Present(img *image.RGBA) error {
	if t.closed {
		return errors.New("ebiten: present on closed target")
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if len(t.pixels) != len(img.Pix) {
		t.pixels = make([]byte, len(img.Pix))
	}
	copy(t.pixels, img.Pix)
	t.pw, t.ph = w, h
	t.pending = true
	return nil
}

func (t *target) Close() {
	t.closed = true
	t.pixels = nil
}
