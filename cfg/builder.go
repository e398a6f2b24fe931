package cfg

import (
	"fmt"

	"github.com/sarchlab/owcet/prog"
	"github.com/sarchlab/owcet/props"
)

// UnknownTargets maps the address of an unresolved computed branch (BR with
// no statically-known target) to the possible targets a flow fact supplies.
// Absent entries leave the branch in the unknown-successor state spec §4.1
// describes.
type UnknownTargets map[uint64][]uint64

// Builder reconstructs a CFGCollection from a process and a task-entry
// address (spec §4.1). Reconstruction starts from the task entry; calls
// create SynthBlocks linked to callee CFGs, built lazily and shared across
// call sites; a call whose target is already being built (an ancestor on
// the current build stack) is marked recursive rather than re-entered.
type Builder struct {
	proc    *prog.Process
	col     *Collection
	unknown UnknownTargets
	stack   []uint64
}

// Build runs the builder and returns the resulting CFGCollection, whose
// entry CFG (index 0) corresponds to entry.
func Build(p *prog.Process, entry uint64, unknown UnknownTargets) (*Collection, error) {
	if unknown == nil {
		unknown = UnknownTargets{}
	}
	b := &Builder{proc: p, col: NewCollection(), unknown: unknown}
	if _, err := b.buildFunc(entry); err != nil {
		return nil, err
	}
	return b.col, nil
}

func (b *Builder) nameFor(entry uint64) string {
	if sym, ok := b.proc.SymbolAt(entry); ok {
		return sym.Name
	}
	return fmt.Sprintf("func_0x%x", entry)
}

func (b *Builder) onStack(addr uint64) bool {
	for _, a := range b.stack {
		if a == addr {
			return true
		}
	}
	return false
}

func (b *Builder) buildFunc(entry uint64) (CFGIndex, error) {
	if idx, ok := b.col.Lookup(entry); ok {
		return idx, nil
	}

	g := &CFG{Name: b.nameFor(entry), Entry: entry}
	idx := b.col.Add(g) // reserved before the body is built: recursion-safe

	g.entryIdx = g.AddBlock(&Block{Kind: KindEntry})
	g.exitIdx = g.AddBlock(&Block{Kind: KindExit})

	fb := &funcBuilder{Builder: b, g: g, starts: make(map[uint64]Index)}

	b.stack = append(b.stack, entry)
	firstIdx := fb.blockAt(entry)
	g.AddEdge(g.entryIdx, firstIdx, EdgeTaken)
	if err := fb.run(); err != nil {
		b.stack = b.stack[:len(b.stack)-1]
		return 0, err
	}
	b.stack = b.stack[:len(b.stack)-1]

	return idx, nil
}

// funcBuilder holds the per-CFG reconstruction state: the lazily-grown
// worklist of block-start addresses not yet decoded, and the map from
// address to the (possibly still-empty) block starting there.
type funcBuilder struct {
	*Builder
	g        *CFG
	starts   map[uint64]Index
	worklist []uint64
}

// blockAt returns the index of the block that starts at addr, creating an
// empty one (and splitting an existing block in two) as needed.
func (fb *funcBuilder) blockAt(addr uint64) Index {
	if idx, ok := fb.starts[addr]; ok {
		return idx
	}
	for _, blk := range fb.g.blocks {
		if blk.Kind != KindBasic || len(blk.Insts) == 0 {
			continue
		}
		if addr > blk.Addr() && addr < blk.EndAddr() {
			return fb.split(blk, addr)
		}
	}
	idx := fb.g.AddBlock(&Block{Kind: KindBasic})
	fb.starts[addr] = idx
	fb.worklist = append(fb.worklist, addr)
	return idx
}

// split carves blk into two basic blocks at addr, moving blk's successor
// edges onto the new tail block and linking blk to it by fall-through.
func (fb *funcBuilder) split(blk *Block, addr uint64) Index {
	cut := 0
	for i, inst := range blk.Insts {
		if inst.Addr() == addr {
			cut = i
			break
		}
	}
	tail := &Block{Kind: KindBasic, Insts: append([]*prog.Instruction(nil), blk.Insts[cut:]...)}
	blk.Insts = blk.Insts[:cut]

	tailIdx := fb.g.AddBlock(tail)
	fb.starts[addr] = tailIdx

	// Re-home blk's outgoing edges onto tail.
	for _, e := range fb.g.edges {
		if e.Source == blk.Index {
			e.Source = tailIdx
			tail.succs = append(tail.succs, e.Target)
			fb.g.blocks[e.Target].preds = append(fb.g.blocks[e.Target].preds, tailIdx)
		}
	}
	blk.succs = nil
	for _, target := range tail.succs {
		preds := fb.g.blocks[target].preds
		for i, p := range preds {
			if p == blk.Index {
				preds[i] = tailIdx
			}
		}
	}
	fb.g.AddEdge(blk.Index, tailIdx, EdgeTaken)
	return tailIdx
}

// run drains the worklist, decoding each undecoded block until it reaches a
// control-flow instruction, a previously-discovered leader, or a decode
// error.
func (fb *funcBuilder) run() error {
	for len(fb.worklist) > 0 {
		addr := fb.worklist[0]
		fb.worklist = fb.worklist[1:]
		idx := fb.starts[addr]
		blk := fb.g.blocks[idx]
		if len(blk.Insts) > 0 {
			continue // filled by a split after being queued
		}
		if err := fb.fill(idx, addr); err != nil {
			return err
		}
	}
	return nil
}

func (fb *funcBuilder) fill(idx Index, addr uint64) error {
	pc := addr
	for {
		inst, err := fb.proc.InstAt(pc)
		if err != nil {
			return fmt.Errorf("cfg: %w", err)
		}
		blk := fb.g.blocks[idx]
		blk.Insts = append(blk.Insts, inst)
		pc = inst.Next()

		k := inst.Kind()
		switch {
		case k.Has(prog.KindCall):
			return fb.endCall(idx, inst, pc)
		case k.Has(prog.KindReturn):
			fb.g.AddEdge(idx, fb.g.exitIdx, EdgeTaken)
			return nil
		case k.Has(prog.KindConditional):
			return fb.endConditional(idx, inst, pc)
		case k.Has(prog.KindControl):
			return fb.endJump(idx, inst, pc)
		}

		if _, isLeader := fb.starts[pc]; isLeader {
			fb.g.AddEdge(idx, fb.blockAt(pc), EdgeTaken)
			return nil
		}
	}
}

func (fb *funcBuilder) endCall(idx Index, inst *prog.Instruction, fallthroughAddr uint64) error {
	synth := &Block{Kind: KindSynth, Callee: -1}
	synthIdx := fb.g.AddBlock(synth)
	fb.g.AddEdge(idx, synthIdx, EdgeTaken)

	if target, ok := inst.Target(); ok {
		if fb.onStack(target) {
			synth.Recursive = true
		}
		calleeIdx, err := fb.buildFunc(target)
		if err != nil {
			return err
		}
		synth.Callee = CalleeRef(calleeIdx)
	}

	retIdx := fb.blockAt(fallthroughAddr)
	fb.g.AddEdge(synthIdx, retIdx, EdgeReturn)
	return nil
}

func (fb *funcBuilder) endConditional(idx Index, inst *prog.Instruction, fallthroughAddr uint64) error {
	fb.g.AddEdge(idx, fb.blockAt(fallthroughAddr), EdgeNotTaken)
	if target, ok := inst.Target(); ok {
		fb.g.AddEdge(idx, fb.blockAt(target), EdgeTaken)
		return nil
	}
	if targets, ok := fb.unknown[inst.Addr()]; ok {
		for _, t := range targets {
			fb.g.AddEdge(idx, fb.blockAt(t), EdgeTaken)
		}
		return nil
	}
	props.Put(&fb.g.blocks[idx].Props, UnknownSuccessorID, true)
	return nil
}

func (fb *funcBuilder) endJump(idx Index, inst *prog.Instruction, fallthroughAddr uint64) error {
	if target, ok := inst.Target(); ok {
		fb.g.AddEdge(idx, fb.blockAt(target), EdgeTaken)
		return nil
	}
	if targets, ok := fb.unknown[inst.Addr()]; ok {
		for _, t := range targets {
			fb.g.AddEdge(idx, fb.blockAt(t), EdgeTaken)
		}
		return nil
	}
	props.Put(&fb.g.blocks[idx].Props, UnknownSuccessorID, true)
	_ = fallthroughAddr // computed jumps do not fall through
	return nil
}
