// Package props provides the typed annotation model shared by every WCET
// analysis: a property list attached to CFGs, blocks, edges, and processes,
// through which independently-run analyses publish results (categories,
// times, ILP variables, loop info) for later passes to read.
//
// Each analysis registers one Identifier[T] per kind of fact it produces.
// The identifier pins the value's type at compile time, so props.Get/Put
// never need a runtime type assertion at the call site.
package props

import "sync/atomic"

var nextSlot uint64

// Identifier names one (owner-type, value-type) annotation slot. Analyses
// declare their identifiers as package-level vars, the way the original
// declares a static Identifier<T> per feature.
type Identifier[T any] struct {
	name string
	slot uint64
}

// NewIdentifier registers a new annotation slot with the given diagnostic
// name. Call once per fact kind, typically from a package-level var
// initializer.
func NewIdentifier[T any](name string) *Identifier[T] {
	return &Identifier[T]{
		name: name,
		slot: atomic.AddUint64(&nextSlot, 1),
	}
}

// Name returns the identifier's diagnostic name.
func (id *Identifier[T]) Name() string {
	return id.name
}

func (id *Identifier[T]) key() uint64 {
	return id.slot
}
