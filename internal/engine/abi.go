package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

const importModule = "env"

// Host functions imported by the engine.
const (
	importInit           = "iui_canvas_init"
	importSetFramebuffer = "iui_canvas_set_framebuffer"
	importScale          = "iui_canvas_scale"
	importClipboardGet   = "iui_clipboard_get"
	importClipboardSet   = "iui_clipboard_set"
	importAbort          = "iui_abort"
)

// Functions exported by the engine.
const (
	exportStart       = "_start"
	exportMain        = "iui_wasm_main"
	exportFrame       = "iui_wasm_frame"
	exportMouseMotion = "iui_wasm_mouse_motion"
	exportMouseButton = "iui_wasm_mouse_button"
	exportScroll      = "iui_wasm_scroll"
	exportKey         = "iui_wasm_key"
	exportChar        = "iui_wasm_char"
)

func (e *Engine) instantiateHost(ctx context.Context) error {
	_, err := e.runtime.NewHostModuleBuilder(importModule).
		NewFunctionBuilder().WithFunc(e.hostInit).Export(importInit).
		NewFunctionBuilder().WithFunc(e.hostSetFramebuffer).Export(importSetFramebuffer).
		NewFunctionBuilder().WithFunc(e.hostScale).Export(importScale).
		NewFunctionBuilder().WithFunc(e.hostClipboardGet).Export(importClipboardGet).
		NewFunctionBuilder().WithFunc(e.hostClipboardSet).Export(importClipboardSet).
		NewFunctionBuilder().WithFunc(e.hostAbort).Export(importAbort).
		Instantiate(ctx)
	return err
}

func (e *Engine) hostInit(_ context.Context, width, height int32) int32 {
	if e.imports.Init(int(width), int(height)) {
		return 1
	}
	return 0
}

func (e *Engine) hostSetFramebuffer(_ context.Context, addr uint32) {
	e.imports.SetFrameBufferBase(addr)
}

func (e *Engine) hostScale(context.Context) float32 {
	return float32(e.imports.DeviceScale())
}

// hostClipboardGet copies up to capacity bytes of clipboard text to ptr and
// returns the full text length, so a short buffer can be retried.
func (e *Engine) hostClipboardGet(_ context.Context, m api.Module, ptr, capacity uint32) uint32 {
	text := []byte(e.imports.ClipboardText())
	n := min(uint32(len(text)), capacity)
	if n > 0 && !m.Memory().Write(ptr, text[:n]) {
		e.log.Warn("clipboard copy out of bounds", zap.Uint32("ptr", ptr), zap.Uint32("len", n))
		return 0
	}
	return uint32(len(text))
}

func (e *Engine) hostClipboardSet(_ context.Context, m api.Module, ptr, length uint32) {
	b, ok := m.Memory().Read(ptr, length)
	if !ok {
		e.log.Warn("clipboard read out of bounds", zap.Uint32("ptr", ptr), zap.Uint32("len", length))
		return
	}
	e.imports.SetClipboardText(string(b))
}

// hostAbort records the engine's reason and traps the current call.
func (e *Engine) hostAbort(_ context.Context, m api.Module, ptr, length uint32) {
	reason := "abort"
	if b, ok := m.Memory().Read(ptr, length); ok && len(b) > 0 {
		reason = string(b)
	}
	e.abortReason = reason
	panic(fmt.Errorf("%s: %s", importAbort, reason))
}

func boolParam(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (e *Engine) OnPointerMove(x, y, buttonMask int) {
	_ = e.call(exportMouseMotion, api.EncodeI32(int32(x)), api.EncodeI32(int32(y)), api.EncodeI32(int32(buttonMask)))
}

func (e *Engine) OnPointerButton(x, y, button int, down bool) {
	_ = e.call(exportMouseButton, api.EncodeI32(int32(x)), api.EncodeI32(int32(y)), api.EncodeI32(int32(button)), boolParam(down))
}

func (e *Engine) OnScroll(dx, dy float64) {
	_ = e.call(exportScroll, api.EncodeF32(float32(dx)), api.EncodeF32(float32(dy)))
}

func (e *Engine) OnKey(code int, down, shift bool) {
	_ = e.call(exportKey, api.EncodeI32(int32(code)), boolParam(down), boolParam(shift))
}

func (e *Engine) OnChar(codePoint int) {
	_ = e.call(exportChar, api.EncodeI32(int32(codePoint)))
}
