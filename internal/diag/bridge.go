// Package diag forwards engine and runtime diagnostics to a Sink.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pixbridge/internal/config"
)

// Bridge is the single funnel for diagnostics. Only the memory-unavailable
// condition is throttled.
type Bridge struct {
	sink    Sink
	log     *zap.Logger
	limiter *Limiter
	onAbort func(string)

	stdout *lineWriter
	stderr *lineWriter
}

func NewBridge(cfg *config.Config, sink Sink, log *zap.Logger) *Bridge {
	if sink == nil {
		sink = SinkFunc(func(Line) {})
	}
	if log == nil {
		log = zap.NewNop()
	}
	interval := time.Second
	if cfg != nil {
		interval = cfg.UnavailableInterval
	}
	b := &Bridge{
		sink:    sink,
		log:     log,
		limiter: NewLimiter(interval, nil),
	}
	b.stdout = &lineWriter{emit: func(s string) { b.emit(SeverityInfo, "[engine] "+s) }}
	b.stderr = &lineWriter{emit: func(s string) { b.emit(SeverityError, "[engine err] "+s) }}
	return b
}

// SetClock replaces the limiter's time source.
func (b *Bridge) SetClock(now func() time.Time) {
	b.limiter.now = now
}

// OnAbort registers fn to run after an abort line is written.
func (b *Bridge) OnAbort(fn func(string)) { b.onAbort = fn }

func (b *Bridge) emit(sev Severity, text string) {
	b.log.Debug("diagnostic", zap.Stringer("severity", sev), zap.String("text", text))
	b.sink.WriteLine(Line{Severity: sev, Text: text})
}

func (b *Bridge) Info(text string)  { b.emit(SeverityInfo, text) }
func (b *Bridge) Error(text string) { b.emit(SeverityError, text) }

func (b *Bridge) Infof(format string, args ...any) {
	b.emit(SeverityInfo, fmt.Sprintf(format, args...))
}

func (b *Bridge) Errorf(format string, args ...any) {
	b.emit(SeverityError, fmt.Sprintf(format, args...))
}

// Abort reports a fatal runtime abort verbatim.
func (b *Bridge) Abort(what string) {
	b.emit(SeverityError, "ABORT: "+what)
	if b.onAbort != nil {
		b.onAbort(what)
	}
}

// Unhandled reports a failure from work outside the frame pipeline.
func (b *Bridge) Unhandled(err error) {
	if err == nil {
		return
	}
	b.emit(SeverityError, "Unhandled failure: "+err.Error())
}

// Unavailable reports that the engine memory could not be resolved. It
// returns whether a line was written.
func (b *Bridge) Unavailable(err error) bool {
	if !b.limiter.Allow() {
		return false
	}
	b.emit(SeverityError, "Cannot access engine memory: "+err.Error())
	return true
}

// Stdout receives the engine's standard output.
func (b *Bridge) Stdout() io.Writer { return b.stdout }

// Stderr receives the engine's standard error.
func (b *Bridge) Stderr() io.Writer { return b.stderr }

// Flush emits any partial output lines.
func (b *Bridge) Flush() {
	b.stdout.flush()
	b.stderr.flush()
}

// lineWriter splits a byte stream into lines.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() == 0 {
		return
	}
	line := w.buf.String()
	w.buf.Reset()
	w.emit(line)
}
