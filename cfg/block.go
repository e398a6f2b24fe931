// Package cfg implements the control-flow graph model: Block, Edge, CFG,
// and CFGCollection, built by dedicated builder passes and made immutable
// once built (spec §3 "CFG model"). Virtualizer produces new CFGs; the
// other transformers in transform.go rewrite their input CFGs in place.
package cfg

import (
	"github.com/sarchlab/owcet/prog"
	"github.com/sarchlab/owcet/props"
)

// BlockKind distinguishes the four kinds of block spec §3 defines.
type BlockKind uint8

const (
	// KindEntry is the distinguished, instruction-less entry sentinel.
	KindEntry BlockKind = iota
	// KindExit is the distinguished, instruction-less exit sentinel.
	KindExit
	// KindBasic is a non-empty, straight-line instruction sequence.
	KindBasic
	// KindSynth is a placeholder for a function call, referring to a
	// callee CFG.
	KindSynth
)

// Index identifies a Block within its owning CFG's block slice. It is a
// weak reference: stable as long as the CFG isn't rebuilt, never itself
// owning the pointed-to Block (spec §9, "arena-owned blocks; cross-CFG
// references are weak indices").
type Index int

// CalleeRef weakly references another CFG inside the same CFGCollection, by
// collection index, avoiding a owning-pointer cycle between caller and
// callee CFGs (spec §9).
type CalleeRef int

// Block is one node of a CFG. Exactly one of its Kind-specific fields is
// meaningful for any given Kind.
type Block struct {
	Index Index
	Kind  BlockKind

	// Insts is populated only for KindBasic: a non-empty, contiguous
	// instruction sequence (spec §3 invariant).
	Insts []*prog.Instruction

	// Callee is populated only for KindSynth: the called CFG, by
	// CFGCollection index. Recursive is set when the callee is the CFG
	// currently being built (a back-reference), per SPEC_FULL.md's
	// supplemented recursive-call detection.
	Callee    CalleeRef
	Recursive bool

	// GuardedInsts holds the indices into Insts of instructions predicated
	// on a condition the decoder exposes separately from control-flow
	// instructions (spec §4.1, ConditionalRestructurer). The ARM64 subset
	// this repo decodes has no such instructions today, so builders never
	// populate this; it exists so ConditionalRestructurer has a concrete
	// input to operate on when a richer decoder does.
	GuardedInsts []int

	preds []Index
	succs []Index

	Props props.List
}

// Addr returns the address of a KindBasic block's first instruction, or 0
// for sentinels/synth blocks.
func (b *Block) Addr() uint64 {
	if len(b.Insts) == 0 {
		return 0
	}
	return b.Insts[0].Addr()
}

// EndAddr returns the address immediately following a KindBasic block's
// last instruction.
func (b *Block) EndAddr() uint64 {
	if len(b.Insts) == 0 {
		return 0
	}
	return b.Insts[len(b.Insts)-1].Next()
}

// Preds returns the indices of predecessor blocks.
func (b *Block) Preds() []Index { return b.preds }

// Succs returns the indices of successor blocks.
func (b *Block) Succs() []Index { return b.succs }
