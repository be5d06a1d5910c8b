// Package memory resolves the engine's linear memory for the frame pipeline.
//
// The linear memory may be grown, and therefore relocated, between frames.
// A View is only valid for the pass that resolved it: callers resolve again
// on every frame and never keep a View or the slices read through it.
package memory

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnavailable = errors.New("linear memory unavailable")

// Region is a byte-addressable linear memory. wazero's api.Memory satisfies it.
type Region interface {
	Size() uint32
	// Read returns a view of byteCount bytes at offset, or false when the
	// range is out of bounds. The returned slice aliases the memory.
	Read(offset, byteCount uint32) ([]byte, bool)
}

// Accessor is one way of reaching the linear memory.
type Accessor interface {
	Name() string
	Region() (Region, bool)
}

type accessorFunc struct {
	name string
	fn   func() (Region, bool)
}

func (a accessorFunc) Name() string           { return a.name }
func (a accessorFunc) Region() (Region, bool) { return a.fn() }

// AccessorFunc adapts fn to an Accessor.
func AccessorFunc(name string, fn func() (Region, bool)) Accessor {
	return accessorFunc{name: name, fn: fn}
}

// View is a borrowed handle on the memory for one conversion pass.
type View struct {
	Region Region
	Source string
}

func (v View) Valid() bool { return v.Region != nil }

// Window returns byteCount bytes at offset.
func (v View) Window(offset, byteCount uint32) ([]byte, error) {
	if v.Region == nil {
		return nil, ErrUnavailable
	}
	b, ok := v.Region.Read(offset, byteCount)
	if !ok {
		return nil, fmt.Errorf("%w: window [%d, %d) outside %d byte region from %s",
			ErrUnavailable, offset, uint64(offset)+uint64(byteCount), v.Region.Size(), v.Source)
	}
	return b, nil
}

// Locator tries its accessors in priority order.
type Locator struct {
	accessors []Accessor
}

func NewLocator(accessors ...Accessor) *Locator {
	return &Locator{accessors: accessors}
}

// Resolve returns a view from the first accessor that succeeds.
func (l *Locator) Resolve() (View, error) {
	if len(l.accessors) == 0 {
		return View{}, fmt.Errorf("%w: no accessors", ErrUnavailable)
	}
	tried := make([]string, 0, len(l.accessors))
	for _, a := range l.accessors {
		if r, ok := a.Region(); ok && r != nil {
			return View{Region: r, Source: a.Name()}, nil
		}
		tried = append(tried, a.Name())
	}
	return View{}, fmt.Errorf("%w: tried %s", ErrUnavailable, strings.Join(tried, ", "))
}

// Close drops every accessor; later Resolve calls report ErrUnavailable.
func (l *Locator) Close() {
	l.accessors = nil
}
