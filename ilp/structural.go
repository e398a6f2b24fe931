package ilp

import (
	"strconv"

	"github.com/sarchlab/owcet/cfg"
)

// Variables holds the x_b (per-block) and x_{u,v} (per-edge) execution-count
// variables built for one CFG, so callers (event contributions, objective
// assembly) can look a block or edge variable back up by index.
type Variables struct {
	Block map[cfg.Index]*Var
	Edge  map[*cfg.Edge]*Var
}

// BuildStructural creates x_b/x_{u,v} variables for every block/edge of g
// and adds the structural constraints of spec.md §4.6: the entry's count is
// fixed at 1, and every non-entry block's in-flow and out-flow both equal
// its own count. Grounded on original_source/src/prog/ilp_System.cpp's
// variable/constraint shape and spec.md §4.6 "Structural constraints".
func BuildStructural(s *System, g *cfg.CFG) Variables {
	vars := Variables{
		Block: make(map[cfg.Index]*Var, g.NumBlocks()),
		Edge:  make(map[*cfg.Edge]*Var, len(g.Edges())),
	}

	for _, b := range g.Blocks() {
		vars.Block[b.Index] = s.NewVar(blockVarName(g, b.Index), true)
	}
	for _, e := range g.Edges() {
		vars.Edge[e] = s.NewVar(edgeVarName(g, e), true)
	}

	entry := s.NewConstraint("entry", EQ, 1)
	entry.AddTerm(1, vars.Block[g.EntryIndex()])

	for _, b := range g.Blocks() {
		if b.Index == g.EntryIndex() {
			continue
		}
		in := s.NewConstraint("in-flow:"+blockVarName(g, b.Index), EQ, 0)
		in.AddTerm(1, vars.Block[b.Index])
		for _, e := range g.InEdges(b.Index) {
			in.AddTerm(-1, vars.Edge[e])
		}

		out := s.NewConstraint("out-flow:"+blockVarName(g, b.Index), EQ, 0)
		out.AddTerm(1, vars.Block[b.Index])
		for _, e := range g.OutEdges(b.Index) {
			out.AddTerm(-1, vars.Edge[e])
		}
	}

	return vars
}

// BuildLoopBounds adds spec.md §4.6's "x_header ≤ N · x_{preheader→header}"
// constraint for every loop header that has a recorded flow-fact bound,
// using forest to find the header's non-back in-edges (its preheader
// entries) the same way hai's computeIn does.
func BuildLoopBounds(s *System, g *cfg.CFG, forest *cfg.Forest, cfgIdx cfg.CFGIndex, vars Variables, facts *cfg.FlowFacts) {
	for _, l := range forest.Loops {
		bound, ok := facts.Bound(cfgIdx, l.Header)
		if !ok {
			continue
		}
		c := s.NewConstraint("loop-bound:"+blockVarName(g, l.Header), LE, 0)
		c.AddTerm(1, vars.Block[l.Header])
		for _, e := range g.InEdges(l.Header) {
			if forest.IsBackEdge(e) {
				continue
			}
			c.AddTerm(-float64(bound), vars.Edge[e])
		}
	}
}

func blockVarName(g *cfg.CFG, idx cfg.Index) string {
	return g.Name + "_b" + strconv.Itoa(int(idx))
}

func edgeVarName(g *cfg.CFG, e *cfg.Edge) string {
	return g.Name + "_e" + strconv.Itoa(int(e.Source)) + "_" + strconv.Itoa(int(e.Target))
}
