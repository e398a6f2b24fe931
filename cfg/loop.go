package cfg

// Loop is a header block plus the set of blocks dominated-by-header with a
// path back to header through back edges (spec §3). Loops form a tree
// rooted at the CFG entry.
type Loop struct {
	Header    Index
	Blocks    map[Index]bool
	BackEdges []*Edge
	Parent    *Loop
	Children  []*Loop

	// Irreducible marks a loop entered through more than one edge not all
	// dominated by Header (spec §4.1 "supports irreducible CFGs by tagging
	// re-entry edges").
	Irreducible bool
}

// Depth returns the loop's nesting depth; a top-level loop has depth 1.
func (l *Loop) Depth() int {
	d := 1
	for p := l.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Forest is the loop nest of one CFG: every identified Loop plus, for every
// block, the innermost loop containing it (nil if the block is not in any
// loop). Built using the Wei/Mao/Zou-style single dominance-backed DFS pass
// spec §4.1 calls for: O(|V| + k·|E|) in the number of back edges k.
type Forest struct {
	g         *CFG
	dom       *Dominance
	Loops     []*Loop // all loops, any nesting depth
	Roots     []*Loop // top-level loops
	innermost []*Loop // per-block index
	backEdge  map[*Edge]bool
	reEntry   map[*Edge]bool
	header    map[Index]bool
}

// IdentifyLoops builds a CFG's loop forest. dom must have been computed for
// the same g (ComputeDominance).
func IdentifyLoops(g *CFG, dom *Dominance) *Forest {
	f := &Forest{
		g:         g,
		dom:       dom,
		innermost: make([]*Loop, g.NumBlocks()),
		backEdge:  make(map[*Edge]bool),
		reEntry:   make(map[*Edge]bool),
		header:    make(map[Index]bool),
	}

	byHeader := make(map[Index]*Loop)
	onStack := make([]bool, g.NumBlocks())
	visited := make([]bool, g.NumBlocks())

	var dfs func(Index)
	dfs = func(b Index) {
		visited[b] = true
		onStack[b] = true
		for _, e := range g.OutEdges(b) {
			t := e.Target
			if !visited[t] {
				dfs(t)
				continue
			}
			if !onStack[t] {
				continue // forward or cross edge
			}
			// Retreating edge: target is an ancestor in the DFS tree.
			if dom.Dominates(t, b) {
				f.backEdge[e] = true
				f.header[t] = true
				l, ok := byHeader[t]
				if !ok {
					l = &Loop{Header: t, Blocks: map[Index]bool{t: true}}
					byHeader[t] = l
					f.Loops = append(f.Loops, l)
				}
				l.BackEdges = append(l.BackEdges, e)
			} else {
				// Re-entry into an irreducible region: t is reached by a
				// retreating edge it does not dominate.
				f.reEntry[e] = true
				f.header[t] = true
				l, ok := byHeader[t]
				if !ok {
					l = &Loop{Header: t, Blocks: map[Index]bool{t: true}, Irreducible: true}
					byHeader[t] = l
					f.Loops = append(f.Loops, l)
				}
				l.Irreducible = true
				l.BackEdges = append(l.BackEdges, e)
			}
		}
		onStack[b] = false
	}
	dfs(g.EntryIndex())

	for _, l := range f.Loops {
		f.growBody(l)
	}
	f.nest()
	for _, l := range f.Loops {
		for b := range l.Blocks {
			if f.innermost[b] == nil || l.Depth() > f.innermost[b].Depth() {
				f.innermost[b] = l
			}
		}
	}
	return f
}

// growBody walks predecessors backward from each back-edge source, adding
// every block that reaches the source without passing through the header —
// the standard natural-loop body computation.
func (f *Forest) growBody(l *Loop) {
	var work []Index
	for _, e := range l.BackEdges {
		if e.Source != l.Header {
			work = append(work, e.Source)
		}
		l.Blocks[e.Source] = true
	}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		for _, p := range f.g.Block(b).Preds() {
			if l.Blocks[p] {
				continue
			}
			l.Blocks[p] = true
			work = append(work, p)
		}
	}
}

// nest assigns Parent/Children by containment of block sets: the smallest
// loop whose Blocks strictly contains another loop's Header becomes that
// loop's parent.
func (f *Forest) nest() {
	for _, inner := range f.Loops {
		var parent *Loop
		for _, outer := range f.Loops {
			if outer == inner || !outer.Blocks[inner.Header] {
				continue
			}
			if len(outer.Blocks) >= len(inner.Blocks) &&
				(parent == nil || len(outer.Blocks) < len(parent.Blocks)) {
				parent = outer
			}
		}
		inner.Parent = parent
		if parent != nil {
			parent.Children = append(parent.Children, inner)
		} else {
			f.Roots = append(f.Roots, inner)
		}
	}
}

// IsHeader reports whether b is a loop header.
func (f *Forest) IsHeader(b Index) bool { return f.header[b] }

// IsBackEdge reports whether e is a (reducible) back edge.
func (f *Forest) IsBackEdge(e *Edge) bool { return f.backEdge[e] }

// IsReEntry reports whether e is a re-entry edge into an irreducible region.
func (f *Forest) IsReEntry(e *Edge) bool { return f.reEntry[e] }

// LoopOf returns the innermost loop containing b, or nil if b is not in any
// loop — the "immediate-loop back-pointer" spec §4.1 names.
func (f *Forest) LoopOf(b Index) *Loop { return f.innermost[b] }

// LoopByHeader returns the loop headed by b, if any.
func (f *Forest) LoopByHeader(b Index) (*Loop, bool) {
	l := f.innermost[b]
	if l != nil && l.Header == b {
		return l, true
	}
	for _, l := range f.Loops {
		if l.Header == b {
			return l, true
		}
	}
	return nil, false
}
