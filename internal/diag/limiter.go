package diag

import "time"

// Limiter lets at most one event through per window.
type Limiter struct {
	window time.Duration
	now    func() time.Time
	last   time.Time
	primed bool
}

func NewLimiter(window time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{window: window, now: now}
}

// Allow reports whether an event may be emitted now.
func (l *Limiter) Allow() bool {
	t := l.now()
	if l.primed && t.Sub(l.last) < l.window {
		return false
	}
	l.last = t
	l.primed = true
	return true
}
