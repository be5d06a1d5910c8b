package engine

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/blake2b"

	"pixbridge/internal/memory"
)

// testModule exports a one-page memory, iui_wasm_key storing its first
// argument at address 0, and iui_wasm_frame that traps.
var testModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// types: (i32 i32 i32) -> (), () -> ()
	0x01, 0x0a, 0x02, 0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x00, 0x60, 0x00, 0x00,
	// functions
	0x03, 0x03, 0x02, 0x00, 0x01,
	// memory: min 1 page
	0x05, 0x03, 0x01, 0x00, 0x01,
	// exports
	0x07, 0x2a, 0x03,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x0c, 'i', 'u', 'i', '_', 'w', 'a', 's', 'm', '_', 'k', 'e', 'y', 0x00, 0x00,
	0x0e, 'i', 'u', 'i', '_', 'w', 'a', 's', 'm', '_', 'f', 'r', 'a', 'm', 'e', 0x00, 0x01,
	// code
	0x0a, 0x0e, 0x02,
	0x08, 0x00, 0x41, 0x00, 0x20, 0x00, 0x36, 0x02, 0x00, 0x0b,
	0x03, 0x00, 0x00, 0x0b,
}

type fakeImports struct {
	inits     [][2]int
	base      uint32
	clipboard string
	aborts    []string
}

func (f *fakeImports) Init(w, h int) bool {
	f.inits = append(f.inits, [2]int{w, h})
	return true
}
func (f *fakeImports) SetFrameBufferBase(addr uint32) { f.base = addr }
func (f *fakeImports) DeviceScale() float64           { return 2 }
func (f *fakeImports) ClipboardText() string          { return f.clipboard }
func (f *fakeImports) SetClipboardText(text string)   { f.clipboard = text }
func (f *fakeImports) Abort(reason string)            { f.aborts = append(f.aborts, reason) }

func loadTestEngine(t *testing.T) (*Engine, *fakeImports) {
	t.Helper()
	imports := &fakeImports{}
	e, err := Load(context.Background(), testModule, imports, Config{
		Name:   "test",
		Logger: zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { e.Close(context.Background()) })
	return e, imports
}

func TestKeyReachesEngine(t *testing.T) {
	e, _ := loadTestEngine(t)
	e.OnKey(7, true, false)

	view, err := memory.NewLocator(e.MemoryAccessors()...).Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Source != "export:memory" {
		t.Fatalf("resolved through %q", view.Source)
	}
	b, err := view.Window(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(b); got != 7 {
		t.Fatalf("engine stored %d, want 7", got)
	}
}

func TestMemoryReresolvedAfterGrowth(t *testing.T) {
	e, _ := loadTestEngine(t)
	loc := memory.NewLocator(e.MemoryAccessors()...)

	before, err := loc.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if before.Region.Size() != 65536 {
		t.Fatalf("unexpected initial size %d", before.Region.Size())
	}
	if _, ok := e.mod.Memory().Grow(1); !ok {
		t.Fatal("grow failed")
	}
	after, err := loc.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if after.Region.Size() != 2*65536 {
		t.Fatalf("size after growth %d", after.Region.Size())
	}
	if _, err := after.Window(65536, 4); err != nil {
		t.Fatalf("new page not reachable: %v", err)
	}
}

func TestAccessorFallback(t *testing.T) {
	imports := &fakeImports{}
	e, err := Load(context.Background(), testModule, imports, Config{MemoryExport: "heap"})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close(context.Background())

	view, err := memory.NewLocator(e.MemoryAccessors()...).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if view.Source != "exported-memory" {
		t.Fatalf("expected fallback accessor, got %q", view.Source)
	}
}

func TestMissingExportIgnored(t *testing.T) {
	e, imports := loadTestEngine(t)
	e.OnChar('a')
	e.OnScroll(0, -20)
	if err := e.call(exportChar, 97); !errors.Is(err, ErrNoExport) {
		t.Fatalf("expected ErrNoExport, got %v", err)
	}
	if len(imports.aborts) != 0 || e.Aborted() {
		t.Fatal("a missing export must not abort")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("start without entry point: %v", err)
	}
}

func TestTrapAborts(t *testing.T) {
	e, imports := loadTestEngine(t)
	err := e.Frame()
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(imports.aborts) != 1 || !strings.Contains(imports.aborts[0], "unreachable") {
		t.Fatalf("unexpected abort reports %q", imports.aborts)
	}

	// Later calls are dropped without reporting again.
	e.OnKey(1, true, false)
	if err := e.Frame(); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted after abort, got %v", err)
	}
	if len(imports.aborts) != 1 {
		t.Fatalf("abort reported %d times", len(imports.aborts))
	}
}

func TestClosedEngineUnavailable(t *testing.T) {
	e, _ := loadTestEngine(t)
	if err := e.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := memory.NewLocator(e.MemoryAccessors()...).Resolve(); !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := e.Frame(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestDigestIdentifiesModule(t *testing.T) {
	e, _ := loadTestEngine(t)
	sum := blake2b.Sum256(testModule)
	if e.Digest() != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected digest %s", e.Digest())
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(context.Background(), []byte("not wasm"), &fakeImports{}, Config{}); err == nil {
		t.Fatal("expected compile error")
	}
}
