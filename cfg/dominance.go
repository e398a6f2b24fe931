package cfg

// Dominance exposes a CFG's dominator tree, computed once per CFG with the
// standard iterative algorithm (spec §4.1) and reused by loop identification
// and any later pass that needs dominates/idom/is-back-edge queries.
type Dominance struct {
	g     *CFG
	idoms []Index // idoms[i] == i for the entry block
	order []Index // reverse-postorder, entry first
}

// ComputeDominance runs the standard iterative dominator algorithm (Cooper,
// Harvey, Kennedy) over g, starting from its entry block.
func ComputeDominance(g *CFG) *Dominance {
	n := g.NumBlocks()
	d := &Dominance{g: g, idoms: make([]Index, n)}
	for i := range d.idoms {
		d.idoms[i] = -1
	}

	d.order = reversePostorder(g)
	rpoNum := make([]int, n)
	for i, idx := range d.order {
		rpoNum[idx] = i
	}

	entry := g.EntryIndex()
	d.idoms[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range d.order {
			if b == entry {
				continue
			}
			var newIdom Index = -1
			for _, p := range g.Block(b).Preds() {
				if d.idoms[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p
					continue
				}
				newIdom = intersect(d.idoms, rpoNum, newIdom, p)
			}
			if newIdom != -1 && d.idoms[b] != newIdom {
				d.idoms[b] = newIdom
				changed = true
			}
		}
	}
	return d
}

func intersect(idoms []Index, rpoNum []int, a, b Index) Index {
	for a != b {
		for rpoNum[a] > rpoNum[b] {
			a = idoms[a]
		}
		for rpoNum[b] > rpoNum[a] {
			b = idoms[b]
		}
	}
	return a
}

func reversePostorder(g *CFG) []Index {
	n := g.NumBlocks()
	visited := make([]bool, n)
	var post []Index
	var visit func(Index)
	visit = func(b Index) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range g.Block(b).Succs() {
			visit(s)
		}
		post = append(post, b)
	}
	visit(g.EntryIndex())
	// Any block unreachable from entry (shouldn't happen post-build, but
	// defensive) is appended at the end so every index has an RPO number.
	for i := Index(0); i < Index(n); i++ {
		if !visited[i] {
			visit(i)
		}
	}
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// Idom returns b's immediate dominator. Idom(entry) == entry.
func (d *Dominance) Idom(b Index) Index { return d.idoms[b] }

// Dominates reports whether a dominates b (every path from entry to b
// passes through a). A block always dominates itself.
func (d *Dominance) Dominates(a, b Index) bool {
	for b != d.g.EntryIndex() {
		if a == b {
			return true
		}
		b = d.idoms[b]
	}
	return a == b
}

// IsBackEdge reports whether e's target dominates its source — the
// standard definition of a back edge relative to a dominator tree.
func (d *Dominance) IsBackEdge(e *Edge) bool {
	return d.Dominates(e.Target, e.Source)
}
