package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// Line is one diagnostics line.
type Line struct {
	Severity Severity
	Text     string
}

type Sink interface {
	WriteLine(l Line)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Line)

func (f SinkFunc) WriteLine(l Line) { f(l) }

type multiSink []Sink

func (m multiSink) WriteLine(l Line) {
	for _, s := range m {
		s.WriteLine(l)
	}
}

// Tee writes every line to all sinks in order.
func Tee(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Ring keeps the most recent lines.
type Ring struct {
	mu    sync.Mutex
	lines []Line
	limit int
}

func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{limit: size}
}

func (r *Ring) WriteLine(l Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, l)
	if len(r.lines) > r.limit {
		r.lines = append(r.lines[:0], r.lines[len(r.lines)-r.limit:]...)
	}
}

// Lines returns a copy, oldest first.
func (r *Ring) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Line(nil), r.lines...)
}

var (
	infoTag  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true).Render("INF")
	errorTag = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("ERR")
	errText  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Console writes lines to w, one per line, with colored severity tags when
// styled is set.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

func NewConsole(w io.Writer, styled bool) *Console {
	return &Console{w: w, styled: styled}
}

func (c *Console) WriteLine(l Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.styled {
		tag := "INF"
		if l.Severity == SeverityError {
			tag = "ERR"
		}
		fmt.Fprintf(c.w, "%s %s\n", tag, l.Text)
		return
	}
	if l.Severity == SeverityError {
		fmt.Fprintf(c.w, "%s %s\n", errorTag, errText.Render(l.Text))
		return
	}
	fmt.Fprintf(c.w, "%s %s\n", infoTag, l.Text)
}
