// Package ui lays out and draws the window chrome around the engine surface.
// Layouts are in logical pixels; drawing happens in device pixels.
package ui

import (
	"image"
	"math"

	"pixbridge/internal/config"
	"pixbridge/internal/render"
)

// Chrome is the space reserved around the surface.
type Chrome struct {
	Margin int
	// ConsoleLines is the number of diagnostics lines shown below the
	// surface. 0 hides the console strip.
	ConsoleLines int
}

func ChromeFromConfig(cfg *config.Config) Chrome {
	c := Chrome{Margin: cfg.MarginPx}
	if cfg.ShowConsole {
		c.ConsoleLines = cfg.ConsoleLines
	}
	return c
}

type Layout struct {
	Window  image.Rectangle
	Surface image.Rectangle
	// Console is empty when the console strip is hidden.
	Console image.Rectangle
}

func consoleHeight(chrome Chrome, theme Theme) int {
	if chrome.ConsoleLines <= 0 {
		return 0
	}
	return chrome.ConsoleLines*theme.ConsoleLineDp + theme.ConsolePadDp*2
}

// WindowSize is the window that fits a surfW x surfH surface and its chrome.
func WindowSize(surfW, surfH int, chrome Chrome, theme Theme) (int, int) {
	return surfW + chrome.Margin*2, surfH + chrome.Margin*2 + consoleHeight(chrome, theme)
}

// ComputeLayout centers the surface in the part of the window above the
// console strip. A window smaller than the surface clips it at the
// bottom-right.
func ComputeLayout(winW, winH, surfW, surfH int, chrome Chrome, theme Theme) Layout {
	consoleH := consoleHeight(chrome, theme)
	areaH := winH - consoleH
	if areaH < 0 {
		areaH = 0
	}

	x := (winW - surfW) / 2
	if x < 0 {
		x = 0
	}
	y := (areaH - surfH) / 2
	if y < 0 {
		y = 0
	}

	l := Layout{
		Window:  image.Rect(0, 0, winW, winH),
		Surface: image.Rect(x, y, x+surfW, y+surfH),
	}
	if consoleH > 0 {
		l.Console = image.Rect(0, areaH, winW, winH)
	}
	return l
}

// ConsoleBaseline returns the logical text origin of console line i.
func (l Layout) ConsoleBaseline(i int, theme Theme) image.Point {
	return image.Point{
		X: l.Console.Min.X + theme.ConsolePadDp,
		Y: l.Console.Min.Y + theme.ConsolePadDp + (i+1)*theme.ConsoleLineDp - theme.ConsoleLineDp/4,
	}
}

func scaled(r image.Rectangle, scale float64) image.Rectangle {
	f := func(v int) int { return int(math.Floor(float64(v) * scale)) }
	return image.Rect(f(r.Min.X), f(r.Min.Y), f(r.Max.X), f(r.Max.Y))
}

// DrawShell paints the chrome for layout into fb, which holds the whole
// window at scale device pixels per logical pixel. The surface area itself
// is left for the caller.
func DrawShell(fb *render.FrameBuffer, layout Layout, theme Theme, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	fb.Clear(theme.Background)

	line := int(math.Floor(float64(theme.BorderDp) * scale))
	if line < 1 {
		line = 1
	}
	s := scaled(layout.Surface, scale)
	fb.StrokeRect(s.Min.X-line, s.Min.Y-line, s.Dx()+line*2, s.Dy()+line*2, line, theme.Border)

	if layout.Console.Empty() {
		return
	}
	c := scaled(layout.Console, scale)
	fb.FillRect(c.Min.X, c.Min.Y, c.Dx(), c.Dy(), theme.Console)
	fb.FillRect(c.Min.X, c.Min.Y, c.Dx(), line, theme.ConsoleRule)
}
