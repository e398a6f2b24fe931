package cfg

import "github.com/sarchlab/owcet/prog"

// Transformer is a functor CFGCollection → CFGCollection (spec §4.1).
// Virtualizer produces a new Collection; Normalizer, ConditionalRestructurer
// and LoopUnroller rewrite the CFGs of their input in place and return it.
type Transformer func(*Collection) *Collection

// Normalizer ensures single-entry/single-exit per CFG and that every
// BasicBlock has at least one instruction (spec §4.1). The builder already
// establishes both invariants, so Normalizer's only real job is defensive:
// it drops any zero-instruction BasicBlock a future builder change might
// produce, splicing its single predecessor chain directly to its successor.
func Normalizer(col *Collection) *Collection {
	for _, g := range col.All() {
		changed := false
		for _, b := range g.Blocks() {
			if b.Kind != KindBasic || len(b.Insts) > 0 {
				continue
			}
			if splice(g, b.Index) {
				changed = true
			}
		}
		if changed {
			g.rebuildAdjacency()
		}
	}
	return col
}

// splice removes an empty block with exactly one successor by redirecting
// every edge that targeted it onto that successor instead.
func splice(g *CFG, idx Index) bool {
	b := g.Block(idx)
	if len(b.Succs()) != 1 {
		return false
	}
	succ := b.Succs()[0]
	for _, e := range g.edges {
		if e.Target == idx {
			e.Target = succ
		}
	}
	return true
}

// DefaultInlineDepth bounds Virtualizer's recursion so that recursive
// call chains don't explode the inlined CFG.
const DefaultInlineDepth = 4

// Virtualizer replaces SynthBlocks by a cloned copy of their callee,
// substituting the clone's entry/exit for the SynthBlock's predecessor/
// successor edges, up to maxDepth levels of nesting (spec §4.1: "applied
// only when a configuration flag is set and depth-bounded to avoid
// explosion on recursion"). Recursive SynthBlocks (Block.Recursive) and
// SynthBlocks with an unresolved callee are left untouched. The result is a
// fresh Collection whose entry CFG is the inlined task CFG; it is never
// safe to mix blocks between the input and output collections.
func Virtualizer(maxDepth int) Transformer {
	return func(col *Collection) *Collection {
		out := NewCollection()
		inlineInto(out, col, col.EntryCFG(), maxDepth)
		return out
	}
}

func inlineInto(out, src *Collection, g *CFG, depth int) CFGIndex {
	clone := &CFG{Name: g.Name, Entry: g.Entry}
	idx := out.Add(clone)

	for _, b := range g.Blocks() {
		nb := &Block{Kind: b.Kind, Insts: b.Insts, Callee: b.Callee, Recursive: b.Recursive}
		clone.AddBlock(nb)
	}
	clone.entryIdx = g.entryIdx
	clone.exitIdx = g.exitIdx
	for _, e := range g.Edges() {
		clone.AddEdge(e.Source, e.Target, e.Kind)
	}

	if depth > 0 {
		// Snapshot before inlining: inlineCall appends new blocks to
		// clone.blocks, which would otherwise extend this range mid-loop.
		synths := make([]Index, 0)
		for _, b := range clone.Blocks() {
			if b.Kind == KindSynth && !b.Recursive && b.Callee >= 0 {
				synths = append(synths, b.Index)
			}
		}
		for _, synthIdx := range synths {
			b := clone.Block(synthIdx)
			callee := src.CFG(CFGIndex(b.Callee))
			calleeOutIdx := inlineInto(out, src, callee, depth-1)
			inlineCall(clone, synthIdx, out.CFG(calleeOutIdx))
		}
	}
	return idx
}

// inlineCall splices a cloned callee body in place of the SynthBlock synthIdx:
// edges that targeted the synth now target the callee's entry, and the
// synth's single return edge now leaves the callee's exit instead.
func inlineCall(g *CFG, synthIdx Index, callee *CFG) {
	synth := g.Block(synthIdx)
	var retTarget Index = -1
	for _, e := range g.edges {
		if e.Source == synthIdx && e.Kind == EdgeReturn {
			retTarget = e.Target
		}
	}
	if retTarget < 0 {
		return
	}

	base := Index(len(g.blocks))
	offset := func(i Index) Index { return base + i }
	for _, b := range callee.Blocks() {
		nb := &Block{Kind: b.Kind, Insts: b.Insts, Callee: b.Callee, Recursive: b.Recursive}
		g.AddBlock(nb)
	}
	for _, e := range callee.Edges() {
		g.edges = append(g.edges, &Edge{Source: offset(e.Source), Target: offset(e.Target), Kind: EdgeVirtual})
	}

	calleeEntry := offset(callee.EntryIndex())
	calleeExit := offset(callee.ExitIndex())

	var kept []*Edge
	for _, e := range g.edges {
		switch {
		case e.Target == synthIdx:
			e.Target = calleeEntry
			kept = append(kept, e)
		case e.Source == synthIdx && e.Target == retTarget && e.Kind == EdgeReturn:
			e.Source = calleeExit
			kept = append(kept, e)
		default:
			kept = append(kept, e)
		}
	}
	g.edges = kept
	synth.Kind = KindExit // unreachable now; kept only to hold its Index stable
	g.rebuildAdjacency()
}

// ConditionalRestructurer splits a BasicBlock carrying guarded instructions
// into a guard-taken and a guard-ignored variant (spec §4.1), so later
// passes see unambiguous instruction sequences. The ARM64 subset this repo
// decodes has no predicated (non-branch) instructions, so Block.GuardedInsts
// is normally empty and this pass is a no-op; it is written generically
// against that field so a richer ISA decoder can populate it without
// touching this pass.
//
// Open question (spec §9): in the guard-ignored variant, a guarded
// instruction is left out of the block's Insts, so
// event.StandardEventBuilder sees no instruction there and emits no fetch or
// branch event for it — see DESIGN.md.
func ConditionalRestructurer(col *Collection) *Collection {
	for _, g := range col.All() {
		changed := false
		for _, b := range g.Blocks() {
			if b.Kind != KindBasic || len(b.GuardedInsts) == 0 {
				continue
			}
			restructureGuards(g, b)
			changed = true
		}
		if changed {
			g.rebuildAdjacency()
		}
	}
	return col
}

// restructureGuards replaces b with two successor blocks carrying identical
// non-guarded instructions: taken keeps every guarded instruction, ignored
// lowers each to a no-op by omission (its Insts simply excludes them, since
// this repo has no explicit no-op instruction encoding to substitute).
// Both converge back on b's original successors.
func restructureGuards(g *CFG, b *Block) {
	guarded := make(map[int]bool, len(b.GuardedInsts))
	for _, i := range b.GuardedInsts {
		guarded[i] = true
	}

	taken := &Block{Kind: KindBasic, Insts: append([]*prog.Instruction(nil), b.Insts...)}
	var ignoredInsts []*prog.Instruction
	for i, inst := range b.Insts {
		if !guarded[i] {
			ignoredInsts = append(ignoredInsts, inst)
		}
	}
	ignored := &Block{Kind: KindBasic, Insts: ignoredInsts}

	takenIdx := g.AddBlock(taken)
	ignoredIdx := g.AddBlock(ignored)

	for _, succ := range b.succs {
		g.edges = append(g.edges, &Edge{Source: takenIdx, Target: succ, Kind: EdgeVirtual})
		g.edges = append(g.edges, &Edge{Source: ignoredIdx, Target: succ, Kind: EdgeVirtual})
	}

	var kept []*Edge
	for _, e := range g.edges {
		if e.Target == b.Index {
			kept = append(kept, &Edge{Source: e.Source, Target: takenIdx, Kind: e.Kind})
			kept = append(kept, &Edge{Source: e.Source, Target: ignoredIdx, Kind: e.Kind})
			continue
		}
		if e.Source == b.Index {
			continue // replaced above with taken/ignored-sourced edges
		}
		kept = append(kept, e)
	}
	g.edges = kept
	b.Kind = KindSynth // neutralize the original block; Callee stays -1 (zero value)
	b.Callee = -1
}

// LoopUnroller duplicates each top-level loop's body once, peeling its
// first iteration (spec §4.1): the pre-header edge into a loop's header is
// redirected to a clone of the loop body, the clone's back edge re-enters
// the original body (so the second and subsequent iterations run
// unduplicated code), and the clone's exit edges leave the loop exactly
// where the original's did. Nested loops are unrolled implicitly, since
// peeling an outer loop clones its inner loops along with it; LoopUnroller
// does not additionally peel inner loops on their own.
func LoopUnroller(col *Collection) *Collection {
	for _, g := range col.All() {
		dom := ComputeDominance(g)
		forest := IdentifyLoops(g, dom)
		for _, l := range forest.Roots {
			unrollOnce(g, forest, l)
		}
		g.rebuildAdjacency()
	}
	return col
}

func unrollOnce(g *CFG, forest *Forest, l *Loop) {
	base := Index(len(g.blocks))
	cloneOf := make(map[Index]Index, len(l.Blocks))
	for orig := range l.Blocks {
		b := g.Block(orig)
		nb := &Block{Kind: b.Kind, Insts: b.Insts, Callee: b.Callee, Recursive: b.Recursive, GuardedInsts: b.GuardedInsts}
		g.AddBlock(nb)
		cloneOf[orig] = base + Index(len(cloneOf))
	}

	var added []*Edge
	for _, e := range g.edges {
		srcIn, srcOK := cloneOf[e.Source]
		_, tgtIn := cloneOf[e.Target]

		switch {
		case e.Target == l.Header && !l.Blocks[e.Source]:
			// Pre-header edge: the first iteration enters the clone.
			e.Target = cloneOf[l.Header]
		case forest.IsBackEdge(e) && srcOK:
			// Cloned back edge re-enters the original body for iteration 2+.
			added = append(added, &Edge{Source: srcIn, Target: l.Header, Kind: e.Kind})
		case srcOK && tgtIn:
			added = append(added, &Edge{Source: srcIn, Target: cloneOf[e.Target], Kind: e.Kind})
		case srcOK && !tgtIn:
			// Loop-exit edge: the clone exits to the same target.
			added = append(added, &Edge{Source: srcIn, Target: e.Target, Kind: e.Kind})
		}
	}
	g.edges = append(g.edges, added...)
}
