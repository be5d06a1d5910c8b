// Package config holds the bridge configuration. A single Config is built at
// startup and handed by pointer to every component that needs it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"time"
)

type Config struct {
	// EnginePath is the WebAssembly module implementing the engine.
	EnginePath string
	Title      string

	// MemoryExport names the exported linear memory holding the frame buffer.
	MemoryExport string
	// MemoryLimitPages caps the engine's linear memory (64KiB pages). 0 keeps
	// the runtime default.
	MemoryLimitPages uint32

	// ScaleOverride forces the device scale factor when > 0.
	ScaleOverride float64

	// UnavailableInterval is the minimum spacing between two
	// "memory unavailable" diagnostics.
	UnavailableInterval time.Duration

	// Window chrome around the surface, in logical pixels.
	MarginPx     int
	ShowConsole  bool
	ConsoleLines int

	Headless bool
	// Frames bounds a headless run. 0 runs until the engine aborts.
	Frames   int
	Snapshot string

	LogLevel string
	LogJSON  bool
}

func Default() Config {
	return Config{
		Title:               "pixbridge",
		MemoryExport:        "memory",
		UnavailableInterval: time.Second,
		MarginPx:            0,
		ShowConsole:         false,
		ConsoleLines:        4,
		Frames:              1,
		LogLevel:            "",
	}
}

// BindFlags registers every field on fs. Defaults come from c.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.EnginePath, "wasm", c.EnginePath, "Path to the engine wasm module")
	fs.StringVar(&c.Title, "title", c.Title, "Window title")
	fs.StringVar(&c.MemoryExport, "memory-export", c.MemoryExport, "Name of the exported linear memory")
	fs.Func("memory-limit-pages", "Maximum engine memory in 64KiB pages (0 = runtime default)", func(s string) error {
		var v uint32
		if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
			return fmt.Errorf("memory-limit-pages: %w", err)
		}
		c.MemoryLimitPages = v
		return nil
	})
	fs.Float64Var(&c.ScaleOverride, "scale", c.ScaleOverride, "Force the device scale factor (0 = ask the host)")
	fs.DurationVar(&c.UnavailableInterval, "unavailable-interval", c.UnavailableInterval, "Minimum spacing of memory-unavailable diagnostics")
	fs.IntVar(&c.MarginPx, "margin", c.MarginPx, "Window margin around the surface in logical pixels")
	fs.BoolVar(&c.ShowConsole, "console", c.ShowConsole, "Show recent diagnostics below the surface")
	fs.IntVar(&c.ConsoleLines, "console-lines", c.ConsoleLines, "Diagnostics lines kept for the console strip")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "Run without a window")
	fs.IntVar(&c.Frames, "frames", c.Frames, "Frames to run in headless mode (0 = until abort)")
	fs.StringVar(&c.Snapshot, "snapshot", c.Snapshot, "Write the last presented frame as PNG (headless)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Process log level (debug, info, warn, error; empty disables)")
	fs.BoolVar(&c.LogJSON, "log-json", c.LogJSON, "Emit process logs as JSON")
}

func (c *Config) Validate() error {
	if c.EnginePath == "" {
		return errors.New("engine wasm path is required")
	}
	if c.MemoryExport == "" {
		return errors.New("memory export name cannot be empty")
	}
	if c.ScaleOverride < 0 || math.IsNaN(c.ScaleOverride) || math.IsInf(c.ScaleOverride, 0) {
		return fmt.Errorf("invalid scale override %v", c.ScaleOverride)
	}
	if c.UnavailableInterval < 0 {
		return fmt.Errorf("invalid unavailable interval %v", c.UnavailableInterval)
	}
	if c.MarginPx < 0 {
		return fmt.Errorf("invalid margin %d", c.MarginPx)
	}
	if c.ConsoleLines < 1 {
		return fmt.Errorf("invalid console line count %d", c.ConsoleLines)
	}
	if c.Frames < 0 {
		return fmt.Errorf("invalid frame count %d", c.Frames)
	}
	if c.Snapshot != "" && !c.Headless {
		return errors.New("snapshot requires headless mode")
	}
	return nil
}
