package ebitenhost

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"pixbridge/internal/diag"
	"pixbridge/internal/platform"
	"pixbridge/internal/render"
	"pixbridge/internal/ui"
)

// Wheel notches are reported as pixel deltas, matching what browsers send
// for a line-based wheel.
const wheelStep = 20

// Held keys repeat after keyRepeatDelay ticks, every keyRepeatInterval ticks.
const (
	keyRepeatDelay    = 30
	keyRepeatInterval = 3
)

var mouseButtons = []struct {
	button ebiten.MouseButton
	index  int
	mask   int
}{
	{ebiten.MouseButtonLeft, 0, 1},
	{ebiten.MouseButtonMiddle, 1, 4},
	{ebiten.MouseButtonRight, 2, 2},
}

type game struct {
	backend *Backend
	handler platform.Handler

	chrome  *render.FrameBuffer
	shell   *ebiten.Image
	surface *ebiten.Image

	face      font.Face
	faceScale float64

	lastX, lastY float64
	hasCursor    bool
	keys         []ebiten.Key
	chars        []rune
	done         bool
}

func newGame(b *Backend, h platform.Handler) *game {
	return &game{backend: b, handler: h}
}

func (g *game) scale() float64 {
	if t := g.backend.target; t != nil {
		return t.scale()
	}
	return g.backend.DeviceScaleFactor()
}

func (g *game) dispatch(ev platform.Event) {
	g.handler.HandleEvent(&ev)
}

func modifiers() (shift, ctrl, meta bool) {
	return ebiten.IsKeyPressed(ebiten.KeyShift),
		ebiten.IsKeyPressed(ebiten.KeyControl),
		ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *game) Update() error {
	if g.done {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() {
		g.dispatch(platform.Event{Type: platform.EventClose})
		g.done = true
		return ebiten.Termination
	}

	g.pollPointer()
	g.pollKeys()
	g.handler.Frame()

	if what := g.backend.takeFatal(); what != "" {
		g.backend.showFatal(what)
		g.done = true
		return ebiten.Termination
	}
	return nil
}

func (g *game) heldButtons() int {
	mask := 0
	for _, mb := range mouseButtons {
		if ebiten.IsMouseButtonPressed(mb.button) {
			mask |= mb.mask
		}
	}
	return mask
}

func (g *game) pollPointer() {
	cx, cy := ebiten.CursorPosition()
	s := g.scale()
	x, y := float64(cx)/s, float64(cy)/s
	buttons := g.heldButtons()
	shift, ctrl, meta := modifiers()

	if !g.hasCursor || x != g.lastX || y != g.lastY {
		g.lastX, g.lastY, g.hasCursor = x, y, true
		g.dispatch(platform.Event{Type: platform.EventMouseMove, ClientX: x, ClientY: y, Buttons: buttons})
	}

	for _, mb := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(mb.button) {
			g.dispatch(platform.Event{
				Type: platform.EventMouseDown, ClientX: x, ClientY: y,
				Button: mb.index, Buttons: buttons, Shift: shift, Ctrl: ctrl, Meta: meta,
			})
			if mb.button == ebiten.MouseButtonRight {
				g.dispatch(platform.Event{Type: platform.EventContextMenu, ClientX: x, ClientY: y, Button: mb.index})
			}
		}
		if inpututil.IsMouseButtonJustReleased(mb.button) {
			g.dispatch(platform.Event{
				Type: platform.EventMouseUp, ClientX: x, ClientY: y,
				Button: mb.index, Buttons: buttons, Shift: shift, Ctrl: ctrl, Meta: meta,
			})
		}
	}

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		g.dispatch(platform.Event{
			Type: platform.EventWheel, ClientX: x, ClientY: y,
			DeltaX: wx * wheelStep, DeltaY: -wy * wheelStep,
		})
	}
}

func (g *game) pollKeys() {
	shift, ctrl, meta := modifiers()

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if vk := VirtualKey(k); vk != 0 {
			g.dispatch(platform.Event{Type: platform.EventKeyDown, KeyCode: vk, Shift: shift, Ctrl: ctrl, Meta: meta})
		}
	}
	g.keys = inpututil.AppendPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		d := inpututil.KeyPressDuration(k)
		if d <= keyRepeatDelay || (d-keyRepeatDelay)%keyRepeatInterval != 0 {
			continue
		}
		if vk := VirtualKey(k); vk != 0 {
			g.dispatch(platform.Event{Type: platform.EventKeyDown, KeyCode: vk, Shift: shift, Ctrl: ctrl, Meta: meta})
		}
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		if vk := VirtualKey(k); vk != 0 {
			g.dispatch(platform.Event{Type: platform.EventKeyUp, KeyCode: vk, Shift: shift, Ctrl: ctrl, Meta: meta})
		}
	}

	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		g.dispatch(platform.Event{Type: platform.EventKeyPress, Key: string(r), Shift: shift, Ctrl: ctrl, Meta: meta})
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	t := g.backend.target
	if t == nil {
		ebitenutil.DebugPrint(screen, "waiting for the engine surface")
		return
	}
	s := g.scale()
	layout := t.layout()

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if g.chrome == nil || g.chrome.W != w || g.chrome.H != h {
		g.chrome = render.NewFrameBuffer(w, h)
		g.shell = ebiten.NewImage(w, h)
	}
	ui.DrawShell(g.chrome, layout, g.backend.theme, s)
	g.shell.WritePixels(g.chrome.Pixels)
	screen.DrawImage(g.shell, nil)

	if t.pw > 0 && t.ph > 0 && t.pixels != nil {
		if g.surface == nil || g.surface.Bounds().Dx() != t.pw || g.surface.Bounds().Dy() != t.ph {
			g.surface = ebiten.NewImage(t.pw, t.ph)
			t.pending = true
		}
		if t.pending {
			g.surface.WritePixels(t.pixels)
			t.pending = false
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(math.Floor(float64(layout.Surface.Min.X)*s), math.Floor(float64(layout.Surface.Min.Y)*s))
		screen.DrawImage(g.surface, op)
	}

	g.drawConsole(screen, layout, s)
}

func (g *game) consoleFace(s float64) font.Face {
	if g.face != nil && g.faceScale == s {
		return g.face
	}
	g.face, g.faceScale = basicfont.Face7x13, s
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return g.face
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 11 * s, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return g.face
	}
	g.face = face
	return face
}

func (g *game) drawConsole(screen *ebiten.Image, layout ui.Layout, s float64) {
	if layout.Console.Empty() || g.backend.console == nil {
		return
	}
	theme := g.backend.theme
	face := g.consoleFace(s)
	lines := g.backend.console.Lines()
	if n := g.backend.chrome.ConsoleLines; len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		clr := theme.ConsoleText
		if l.Severity == diag.SeverityError {
			clr = theme.ConsoleError
		}
		p := layout.ConsoleBaseline(i, theme)
		text.Draw(screen, l.Text, face, int(float64(p.X)*s), int(float64(p.Y)*s), clr)
	}
}

// Layout keeps the screen in device pixels at the surface's scale so the
// presented surface maps 1:1 onto screen pixels.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if t := g.backend.target; t != nil {
		t.winW, t.winH = outsideWidth, outsideHeight
	}
	s := g.scale()
	return max(1, int(math.Floor(float64(outsideWidth)*s))), max(1, int(math.Floor(float64(outsideHeight)*s)))
}
