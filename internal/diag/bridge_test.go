package diag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pixbridge/internal/config"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBridge() (*Bridge, *Ring, *clock) {
	cfg := config.Default()
	ring := NewRing(64)
	b := NewBridge(&cfg, ring, nil)
	c := &clock{t: time.Unix(1700000000, 0)}
	b.SetClock(c.now)
	return b, ring, c
}

func TestUnavailableRateLimited(t *testing.T) {
	b, ring, c := newTestBridge()
	errMem := errors.New("linear memory unavailable")

	emitted := 0
	for i := 0; i < 10; i++ {
		if b.Unavailable(errMem) {
			emitted++
		}
		c.advance(90 * time.Millisecond)
	}
	if emitted != 1 || len(ring.Lines()) != 1 {
		t.Fatalf("expected a single line within one second, got %d (%d lines)", emitted, len(ring.Lines()))
	}

	c.advance(time.Second)
	if !b.Unavailable(errMem) {
		t.Fatal("expected a new line once the window elapsed")
	}
	lines := ring.Lines()
	if len(lines) != 2 || lines[1].Severity != SeverityError {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if !strings.Contains(lines[1].Text, "linear memory unavailable") {
		t.Fatalf("line lost the cause: %q", lines[1].Text)
	}
}

func TestUnavailableIntervalFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UnavailableInterval = 10 * time.Millisecond
	ring := NewRing(8)
	b := NewBridge(&cfg, ring, nil)
	c := &clock{t: time.Unix(0, 0)}
	b.SetClock(c.now)

	b.Unavailable(errors.New("x"))
	c.advance(10 * time.Millisecond)
	b.Unavailable(errors.New("x"))
	if len(ring.Lines()) != 2 {
		t.Fatalf("expected two lines with a 10ms window, got %d", len(ring.Lines()))
	}
}

func TestOtherDiagnosticsUnthrottled(t *testing.T) {
	b, ring, _ := newTestBridge()
	for i := 0; i < 5; i++ {
		b.Error("boom")
		b.Infof("frame %d", i)
		b.Unhandled(fmt.Errorf("async %d", i))
	}
	if got := len(ring.Lines()); got != 15 {
		t.Fatalf("expected 15 lines, got %d", got)
	}
}

func TestAbortVerbatimAndNotifies(t *testing.T) {
	b, ring, _ := newTestBridge()
	var notified string
	b.OnAbort(func(what string) { notified = what })

	b.Abort("unreachable executed")
	lines := ring.Lines()
	if len(lines) != 1 || lines[0].Text != "ABORT: unreachable executed" || lines[0].Severity != SeverityError {
		t.Fatalf("unexpected abort line %+v", lines)
	}
	if notified != "unreachable executed" {
		t.Fatalf("abort notifier got %q", notified)
	}
}

func TestEngineOutputSplitsLines(t *testing.T) {
	b, ring, _ := newTestBridge()
	fmt.Fprint(b.Stdout(), "hello\nwor")
	fmt.Fprint(b.Stdout(), "ld\r\n")
	fmt.Fprint(b.Stderr(), "bad thing\npartial")
	b.Flush()

	want := []Line{
		{SeverityInfo, "[engine] hello"},
		{SeverityInfo, "[engine] world"},
		{SeverityError, "[engine err] bad thing"},
		{SeverityError, "[engine err] partial"},
	}
	got := ring.Lines()
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRing(2)
	for _, s := range []string{"a", "b", "c"} {
		r.WriteLine(Line{Text: s})
	}
	lines := r.Lines()
	if len(lines) != 2 || lines[0].Text != "b" || lines[1].Text != "c" {
		t.Fatalf("unexpected ring contents %+v", lines)
	}
}

func TestConsolePlainAndTee(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRing(4)
	sink := Tee(NewConsole(&buf, false), nil, ring)
	sink.WriteLine(Line{Severity: SeverityInfo, Text: "ready"})
	sink.WriteLine(Line{Severity: SeverityError, Text: "failed"})

	if buf.String() != "INF ready\nERR failed\n" {
		t.Fatalf("unexpected console output %q", buf.String())
	}
	if len(ring.Lines()) != 2 {
		t.Fatal("tee did not reach every sink")
	}
}

func TestBridgeLogsDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Default()
	b := NewBridge(&cfg, nil, zap.New(core))
	b.Error("surface lost")

	entries := logs.FilterMessage("diagnostic").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["text"] != "surface lost" {
		t.Fatalf("unexpected fields %v", entries[0].ContextMap())
	}
}
