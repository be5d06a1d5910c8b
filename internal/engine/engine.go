// Package engine runs the sandboxed rendering engine on wazero and exposes
// its entry points to the bridge.
//
// The engine imports a small host module ("env") for surface setup,
// clipboard access and abort reporting, and exports the event ingestion
// functions the input normalizer forwards to. Engine stdout and stderr are
// routed through WASI.
package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"pixbridge/internal/memory"
)

var (
	ErrAborted  = errors.New("engine aborted")
	ErrNoExport = errors.New("engine export missing")
	ErrClosed   = errors.New("engine closed")
)

// Imports is what the engine can call on the host.
type Imports interface {
	Init(width, height int) bool
	SetFrameBufferBase(addr uint32)
	DeviceScale() float64
	ClipboardText() string
	SetClipboardText(text string)
	// Abort reports an unrecoverable engine failure verbatim.
	Abort(reason string)
}

type Config struct {
	// Name is the module instance name.
	Name         string
	MemoryExport string
	// MemoryLimitPages caps linear memory growth (64KiB pages).
	MemoryLimitPages uint32
	Stdout           io.Writer
	Stderr           io.Writer
	Logger           *zap.Logger
}

type Engine struct {
	ctx      context.Context
	cfg      Config
	log      *zap.Logger
	imports  Imports
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	mod      api.Module
	digest   string

	missing     map[string]bool
	abortReason string
	aborted     bool
	exited      bool
}

// Load compiles and instantiates wasmBytes without running its start
// function; call Start once the host is ready for Init calls.
func Load(ctx context.Context, wasmBytes []byte, imports Imports, cfg Config) (*Engine, error) {
	if imports == nil {
		return nil, errors.New("engine: imports are required")
	}
	if cfg.Name == "" {
		cfg.Name = "engine"
	}
	if cfg.MemoryExport == "" {
		cfg.MemoryExport = "memory"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	e := &Engine{
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		imports: imports,
		runtime: runtime,
		missing: make(map[string]bool),
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}
	if err := e.instantiateHost(ctx); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate host module: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName(cfg.Name).
		WithStartFunctions()
	if cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(cfg.Stderr)
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}
	e.compiled = compiled
	e.mod = mod
	sum := blake2b.Sum256(wasmBytes)
	e.digest = hex.EncodeToString(sum[:])

	log.Info("engine loaded",
		zap.String("name", cfg.Name),
		zap.String("digest", e.digest),
		zap.Int("exported_functions", len(compiled.ExportedFunctions())),
		zap.Int("exported_memories", len(compiled.ExportedMemories())),
	)
	return e, nil
}

// Start runs the engine's entry point, _start or iui_wasm_main, whichever
// is exported first. Engines without one are driven by frames alone.
func (e *Engine) Start() error {
	for _, name := range []string{exportStart, exportMain} {
		if e.mod != nil && e.mod.ExportedFunction(name) != nil {
			return e.call(name)
		}
	}
	e.log.Debug("engine has no entry point")
	return nil
}

// Frame runs one engine frame tick when the engine exports one.
func (e *Engine) Frame() error {
	err := e.call(exportFrame)
	if errors.Is(err, ErrNoExport) {
		return nil
	}
	return err
}

func (e *Engine) Aborted() bool { return e.aborted }

// Digest is the BLAKE2b-256 of the loaded module, hex encoded.
func (e *Engine) Digest() string { return e.digest }

// MemoryAccessors lists the ways to reach the engine's linear memory in
// priority order.
func (e *Engine) MemoryAccessors() []memory.Accessor {
	return []memory.Accessor{
		memory.AccessorFunc("export:"+e.cfg.MemoryExport, func() (memory.Region, bool) {
			if e.mod == nil {
				return nil, false
			}
			m := e.mod.ExportedMemory(e.cfg.MemoryExport)
			if m == nil {
				return nil, false
			}
			return m, true
		}),
		memory.AccessorFunc("exported-memory", func() (memory.Region, bool) {
			if e.mod == nil || e.compiled == nil {
				return nil, false
			}
			defs := e.compiled.ExportedMemories()
			names := make([]string, 0, len(defs))
			for name := range defs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if m := e.mod.ExportedMemory(name); m != nil {
					return m, true
				}
			}
			return nil, false
		}),
		memory.AccessorFunc("module-memory", func() (memory.Region, bool) {
			if e.mod == nil {
				return nil, false
			}
			m := e.mod.Memory()
			if m == nil {
				return nil, false
			}
			return m, true
		}),
	}
}

func (e *Engine) call(name string, params ...uint64) error {
	if e.aborted {
		return ErrAborted
	}
	if e.mod == nil || e.exited {
		return ErrClosed
	}
	fn := e.mod.ExportedFunction(name)
	if fn == nil {
		if !e.missing[name] {
			e.missing[name] = true
			e.log.Warn("engine export missing", zap.String("export", name))
		}
		return fmt.Errorf("%w: %s", ErrNoExport, name)
	}

	if _, err := fn.Call(e.ctx, params...); err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
			e.exited = true
			e.log.Info("engine exited", zap.String("export", name))
			return ErrClosed
		}
		reason := e.abortReason
		if reason == "" {
			reason = err.Error()
		}
		e.aborted = true
		e.log.Error("engine trapped", zap.String("export", name), zap.Error(err))
		e.imports.Abort(reason)
		return fmt.Errorf("%w: %s", ErrAborted, reason)
	}
	return nil
}

// Close releases the runtime and every module in it.
func (e *Engine) Close(ctx context.Context) error {
	e.mod = nil
	e.compiled = nil
	if e.runtime == nil {
		return nil
	}
	err := e.runtime.Close(ctx)
	e.runtime = nil
	return err
}
