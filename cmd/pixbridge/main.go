package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"pixbridge/internal/app"
	"pixbridge/internal/config"
	"pixbridge/internal/diag"
	"pixbridge/internal/engine"
	"pixbridge/internal/platform"
	"pixbridge/internal/platform/ebitenhost"
	"pixbridge/internal/platform/headless"
)

func main() {
	cfg := config.Default()
	fs := flag.NewFlagSet("pixbridge", flag.ExitOnError)
	cfg.BindFlags(fs)
	_ = fs.Parse(os.Args[1:])
	if cfg.EnginePath == "" && fs.NArg() > 0 {
		cfg.EnginePath = fs.Arg(0)
	}

	if err := run(context.Background(), &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pixbridge failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogLevel == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	if cfg.LogJSON {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ring := diag.NewRing(cfg.ConsoleLines)
	console := diag.NewConsole(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
	d := diag.NewBridge(cfg, diag.Tee(console, ring), log.Named("diag"))

	var host platform.Host
	var hb *headless.Backend
	if cfg.Headless {
		hb = headless.New(headless.Options{
			Scale:   cfg.ScaleOverride,
			OriginX: float64(cfg.MarginPx),
			OriginY: float64(cfg.MarginPx),
			Frames:  cfg.Frames,
		})
		d.OnAbort(func(string) { hb.Stop() })
		host = hb
	} else {
		eh := ebitenhost.New(cfg, ring, log.Named("ebiten"))
		d.OnAbort(eh.Fatal)
		host = eh
	}

	bridge := app.New(cfg, host, d, log.Named("bridge"))

	wasm, err := os.ReadFile(cfg.EnginePath)
	if err != nil {
		return fmt.Errorf("read engine: %w", err)
	}
	eng, err := engine.Load(ctx, wasm, bridge, engine.Config{
		Name:             "engine",
		MemoryExport:     cfg.MemoryExport,
		MemoryLimitPages: cfg.MemoryLimitPages,
		Stdout:           d.Stdout(),
		Stderr:           d.Stderr(),
		Logger:           log.Named("engine"),
	})
	if err != nil {
		return err
	}
	defer eng.Close(ctx)
	bridge.Attach(eng)

	log.Info("engine starting", zap.String("path", cfg.EnginePath), zap.String("host", host.Name()))
	if err := eng.Start(); err != nil && !errors.Is(err, engine.ErrAborted) && !errors.Is(err, engine.ErrClosed) {
		return fmt.Errorf("start engine: %w", err)
	}

	// An abort during start has already stopped the headless host; the
	// ebiten host still runs once to show the fatal dialog.
	if err := host.Run(bridge); err != nil {
		return err
	}
	bridge.Close()

	if hb != nil && cfg.Snapshot != "" {
		if err := writeSnapshot(hb, cfg.Snapshot); err != nil {
			return err
		}
	}
	if bridge.Aborted() {
		return errors.New("engine aborted")
	}
	return nil
}

func writeSnapshot(hb *headless.Backend, path string) error {
	t := hb.Target()
	if t == nil || t.LastFrame() == nil {
		return errors.New("snapshot: nothing was presented")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(f, t.LastFrame()); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: %w", err)
	}
	return f.Close()
}
