// Package hai implements the half-abstract-interpretation engine: a
// worklist-scheduled, generic fixpoint solver over a CFGCollection,
// parameterized by a caller-supplied abstract Domain (spec.md §4.2).
// Grounded on original_source/include/otawa/dfa/hai/HalfAbsInt.h and
// src/prog/ai.cpp/ai.h: the engine here keeps HalfAbsInt's core shape (a
// worklist of blocks, loop-header re-entry via
// EnterContext/LeaveContext, interprocedural call/return through a
// callee's entry/exit) but schedules as a standard Kildall-style
// monotone worklist (repropagate on every OUT change) rather than
// HalfAbsInt's single-visit-per-edge bookkeeping (FIRST_ITER/FIXED/
// isEdgeDone). That trade gives up some propagation efficiency for a
// much simpler, easier-to-verify implementation; it requires every
// Domain to have finite height, since nothing here widens.
package hai

import "github.com/sarchlab/owcet/cfg"

// ContextKind distinguishes the two nesting constructs a Domain may need to
// special-case on entry/exit: loop iteration and function call (spec.md
// §4.2's CTX_LOOP/CTX_FUNC).
type ContextKind int

const (
	// CtxLoop marks entry into, or exit out of, a loop body.
	CtxLoop ContextKind = iota
	// CtxFunc marks entry into, or exit out of, a called function.
	CtxFunc
)

// Domain is the abstract-interpretation policy the engine is generic over:
// a bounded join-semilattice (Bottom/Top/Join/Equal) plus the block
// transfer function and the two context hooks HalfAbsInt calls at loop and
// call boundaries. D should be finite-height for Solve to terminate.
type Domain[D any] interface {
	// Bottom returns the semilattice's least element (spec.md §4.2:
	// "unreached" state).
	Bottom() D
	// Top returns the semilattice's greatest element, used when the engine
	// cannot resolve a successor (an unknown-successor block, an
	// unresolved or recursive call).
	Top() D
	// Join computes the least upper bound of a and b.
	Join(a, b D) D
	// Equal reports whether a and b are the same abstract value, used to
	// detect a loop header's fixpoint.
	Equal(a, b D) bool
	// Transfer computes the OUT state of a block given its IN state. It is
	// never called for a KindSynth block; the engine computes a
	// KindSynth's OUT from its callee's exit state instead.
	Transfer(in D, b *cfg.Block) D
	// EnterContext is applied to the value flowing into a loop header (on
	// every (re)computation of its IN, kind == CtxLoop) or into a callee's
	// entry block (kind == CtxFunc).
	EnterContext(d D, kind ContextKind) D
	// LeaveContext is applied to the value flowing out of a loop, along
	// each edge that leaves the loop body (kind == CtxLoop), or out of a
	// callee, at its call site's resuming edge (kind == CtxFunc).
	LeaveContext(d D, kind ContextKind) D
}
