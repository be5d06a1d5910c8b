package config

import (
	"flag"
	"testing"
	"time"
)

func TestBindFlagsOverridesDefaults(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)

	err := fs.Parse([]string{
		"-wasm", "engine.wasm",
		"-scale", "2",
		"-memory-limit-pages", "512",
		"-unavailable-interval", "250ms",
		"-headless",
		"-frames", "3",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnginePath != "engine.wasm" {
		t.Fatalf("unexpected engine path %q", cfg.EnginePath)
	}
	if cfg.ScaleOverride != 2 {
		t.Fatalf("unexpected scale %v", cfg.ScaleOverride)
	}
	if cfg.MemoryLimitPages != 512 {
		t.Fatalf("unexpected memory limit %d", cfg.MemoryLimitPages)
	}
	if cfg.UnavailableInterval != 250*time.Millisecond {
		t.Fatalf("unexpected interval %v", cfg.UnavailableInterval)
	}
	if !cfg.Headless || cfg.Frames != 3 {
		t.Fatalf("unexpected headless settings: %v %d", cfg.Headless, cfg.Frames)
	}
	if cfg.MemoryExport != "memory" {
		t.Fatalf("default memory export lost: %q", cfg.MemoryExport)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"missing wasm":   func(c *Config) { c.EnginePath = "" },
		"empty export":   func(c *Config) { c.MemoryExport = "" },
		"negative scale": func(c *Config) { c.ScaleOverride = -1 },
		"negative frame": func(c *Config) { c.Frames = -2 },
		"no console":     func(c *Config) { c.ConsoleLines = 0 },
		"windowed snap":  func(c *Config) { c.Snapshot = "out.png"; c.Headless = false },
	}
	for name, mutate := range cases {
		cfg := Default()
		cfg.EnginePath = "engine.wasm"
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
