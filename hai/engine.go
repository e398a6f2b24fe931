package hai

import "github.com/sarchlab/owcet/cfg"

// blockKey addresses one block across an entire CFGCollection.
type blockKey struct {
	cfg cfg.CFGIndex
	idx cfg.Index
}

// Engine holds the CFGCollection structure (dominance, loop forests, and
// the call-site map) the solver needs, computed once and reused across
// Solve calls — mirroring HalfAbsInt's constructor, which takes the
// WorkSpace once and is solved possibly more than once.
type Engine[D any] struct {
	fp     Domain[D]
	col    *cfg.Collection
	dom    map[cfg.CFGIndex]*cfg.Dominance
	forest map[cfg.CFGIndex]*cfg.Forest
	// callSites maps a callee CFG to every KindSynth block that calls it,
	// across the whole collection — the interprocedural edges HalfAbsInt
	// walks via its call stack.
	callSites map[cfg.CFGIndex][]blockKey
}

// NewEngine precomputes dominance, loop identification, and the call-site
// map for every CFG in col.
func NewEngine[D any](col *cfg.Collection, fp Domain[D]) *Engine[D] {
	e := &Engine[D]{
		fp:        fp,
		col:       col,
		dom:       make(map[cfg.CFGIndex]*cfg.Dominance),
		forest:    make(map[cfg.CFGIndex]*cfg.Forest),
		callSites: make(map[cfg.CFGIndex][]blockKey),
	}
	for i, g := range col.All() {
		ci := cfg.CFGIndex(i)
		d := cfg.ComputeDominance(g)
		e.dom[ci] = d
		e.forest[ci] = cfg.IdentifyLoops(g, d)
		for _, b := range g.Blocks() {
			if b.Kind == cfg.KindSynth && !b.Recursive && b.Callee >= 0 {
				callee := cfg.CFGIndex(b.Callee)
				e.callSites[callee] = append(e.callSites[callee], blockKey{ci, b.Index})
			}
		}
	}
	return e
}

// Result is the solved IN and OUT state of every block the engine reached.
type Result[D any] struct {
	in         map[blockKey]D
	out        map[blockKey]D
	iterations int
}

// BlockOut returns the solved OUT state of the given block, or (the zero
// value of D, false) if the engine never reached it (dead code, e.g. downstream of an
// always-false flow fact no analysis ever proved statically).
func (r *Result[D]) BlockOut(cfgIdx cfg.CFGIndex, idx cfg.Index) (D, bool) {
	d, ok := r.out[blockKey{cfgIdx, idx}]
	return d, ok
}

// BlockIn returns the solved IN state of the given block — the value its
// own Transfer was last applied to. Cache/branch classification (packages
// cache, branch) needs this, not BlockOut: a block's category depends on
// what was known before its own accesses ran.
func (r *Result[D]) BlockIn(cfgIdx cfg.CFGIndex, idx cfg.Index) (D, bool) {
	d, ok := r.in[blockKey{cfgIdx, idx}]
	return d, ok
}

// Iterations returns the number of worklist pops Solve performed.
func (r *Result[D]) Iterations() int { return r.iterations }

// Solve runs the fixpoint to completion starting from the collection's
// entry CFG's entry block, with entryState as its IN value (spec.md §4.2).
func (e *Engine[D]) Solve(entryState D) *Result[D] {
	in := make(map[blockKey]D)
	out := make(map[blockKey]D)
	// synthIn records each Synth block's IN (the state at the call site,
	// before the call) separately from its OUT (the callee's exit state):
	// a callee's entry IN must join the former, never the latter — the
	// latter is itself derived from the callee and would make entry depend
	// on its own result.
	synthIn := make(map[blockKey]D)
	root := blockKey{0, e.col.EntryCFG().EntryIndex()}

	worklist := []blockKey{root}
	queued := map[blockKey]bool{root: true}
	iterations := 0

	for len(worklist) > 0 {
		bk := worklist[0]
		worklist = worklist[1:]
		delete(queued, bk)
		iterations++

		var bkIn D
		if bk == root {
			bkIn = entryState
		} else {
			bkIn = e.computeIn(bk, out, synthIn)
		}
		in[bk] = bkIn
		if e.col.CFG(bk.cfg).Block(bk.idx).Kind == cfg.KindSynth {
			synthIn[bk] = bkIn
		}
		newOut := e.transfer(bk, bkIn, out)

		old, had := out[bk]
		if had && e.fp.Equal(old, newOut) {
			continue
		}
		out[bk] = newOut

		for _, dep := range e.dependents(bk) {
			if !queued[dep] {
				queued[dep] = true
				worklist = append(worklist, dep)
			}
		}
	}

	return &Result[D]{in: in, out: out, iterations: iterations}
}

// computeIn joins every in-edge's current OUT value for bk, wrapping loop-
// entry and loop-exit crossings with EnterContext/LeaveContext(CtxLoop).
// Call-entry blocks (a CFG's KindEntry, reached only through call sites)
// join their call sites' IN states instead of in-CFG predecessors.
func (e *Engine[D]) computeIn(bk blockKey, out, synthIn map[blockKey]D) D {
	g := e.col.CFG(bk.cfg)
	if bk.idx == g.EntryIndex() {
		return e.computeCallEntryIn(bk, synthIn)
	}

	forest := e.forest[bk.cfg]
	isHeader := forest.IsHeader(bk.idx)
	result := e.fp.Bottom()
	for _, edge := range g.InEdges(bk.idx) {
		src := blockKey{bk.cfg, edge.Source}
		val, ok := out[src]
		if !ok {
			continue // predecessor not yet reached; Bottom is the identity for Join
		}
		switch {
		case isHeader && !forest.IsBackEdge(edge):
			// External entry into the loop: wrap once per entry. A back
			// edge carries a value that already entered on some earlier
			// pass through this same header, so it must NOT be wrapped
			// again here — doing so would push another context level
			// (for a stack-shaped Domain like cache.Persistence) on every
			// worklist revisit of the header and never reach a fixpoint.
			val = e.fp.EnterContext(val, CtxLoop)
		case forest.LoopOf(edge.Source) != nil && !loopContains(forest, bk.idx, forest.LoopOf(edge.Source)):
			val = e.fp.LeaveContext(val, CtxLoop)
		}
		result = e.fp.Join(result, val)
	}
	return result
}

// loopContains reports whether idx is inside the same loop as l (used to
// detect a loop-exit edge: l contains the edge's source but not its
// target).
func loopContains(forest *cfg.Forest, idx cfg.Index, l *cfg.Loop) bool {
	return l.Blocks[idx]
}

// computeCallEntryIn joins the call-site IN states (the state just before
// each call, not the call's own OUT) of every Synth block that calls bk's
// CFG, wrapping each with EnterContext(CtxFunc).
func (e *Engine[D]) computeCallEntryIn(bk blockKey, synthIn map[blockKey]D) D {
	result := e.fp.Bottom()
	for _, site := range e.callSites[bk.cfg] {
		val, ok := synthIn[site]
		if !ok {
			continue
		}
		result = e.fp.Join(result, e.fp.EnterContext(val, CtxFunc))
	}
	return result
}

// transfer computes bk's OUT from its IN, special-casing KindSynth blocks:
// their OUT is their callee's exit state (LeaveContext-wrapped), not a
// policy-defined transfer over their own IN.
func (e *Engine[D]) transfer(bk blockKey, in D, out map[blockKey]D) D {
	g := e.col.CFG(bk.cfg)
	b := g.Block(bk.idx)
	if cfg.IsUnknownSuccessor(b) {
		return e.fp.Top()
	}
	if b.Kind != cfg.KindSynth {
		return e.fp.Transfer(in, b)
	}
	if b.Recursive || b.Callee < 0 {
		return e.fp.Top()
	}
	callee := e.col.CFG(cfg.CFGIndex(b.Callee))
	exitVal, ok := out[blockKey{cfg.CFGIndex(b.Callee), callee.ExitIndex()}]
	if !ok {
		return e.fp.Bottom()
	}
	return e.fp.LeaveContext(exitVal, CtxFunc)
}

// dependents returns every block whose IN depends on bk's OUT: its normal
// CFG successors, plus (if bk is a CFG's exit block) every call site of
// that CFG, plus (if bk is a Synth block) its callee's entry block.
func (e *Engine[D]) dependents(bk blockKey) []blockKey {
	g := e.col.CFG(bk.cfg)
	var deps []blockKey
	for _, succ := range g.Block(bk.idx).Succs() {
		deps = append(deps, blockKey{bk.cfg, succ})
	}
	if bk.idx == g.ExitIndex() {
		deps = append(deps, e.callSites[bk.cfg]...)
	}
	b := g.Block(bk.idx)
	if b.Kind == cfg.KindSynth && !b.Recursive && b.Callee >= 0 {
		calleeIdx := cfg.CFGIndex(b.Callee)
		deps = append(deps, blockKey{calleeIdx, e.col.CFG(calleeIdx).EntryIndex()})
	}
	return deps
}

// Solve builds an Engine for col and runs it once — the common case when a
// Domain is only ever solved over one collection.
func Solve[D any](col *cfg.Collection, fp Domain[D], entryState D) *Result[D] {
	return NewEngine(col, fp).Solve(entryState)
}
