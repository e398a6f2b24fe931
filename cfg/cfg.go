package cfg

import "github.com/sarchlab/owcet/props"

// CFG is an ordered sequence of Blocks with a distinguished entry and exit,
// corresponding to one function (spec §3). A CFG exclusively owns its
// blocks and edges.
type CFG struct {
	// Name is the function's symbol name, if known, else a synthetic
	// "func_0x<addr>" label.
	Name string
	// Entry is the address the function was reconstructed from.
	Entry uint64

	blocks []*Block
	edges  []*Edge

	entryIdx Index
	exitIdx  Index

	Props props.List
}

// NewCFG creates an empty CFG. Callers add blocks with AddBlock, add edges
// with AddEdge, then call MarkEntryExit once the sentinel blocks exist.
// Builder is the normal way to populate a CFG from a Process; NewCFG exists
// for other frontends (and tests) that construct CFGs directly.
func NewCFG(name string, entry uint64) *CFG {
	return &CFG{Name: name, Entry: entry}
}

// MarkEntryExit records which of c's blocks are the distinguished entry and
// exit sentinels.
func (c *CFG) MarkEntryExit(entryIdx, exitIdx Index) {
	c.entryIdx = entryIdx
	c.exitIdx = exitIdx
}

// EntryIndex returns the index of the distinguished entry block.
func (c *CFG) EntryIndex() Index { return c.entryIdx }

// ExitIndex returns the index of the distinguished exit block.
func (c *CFG) ExitIndex() Index { return c.exitIdx }

// EntryBlock returns the distinguished entry block.
func (c *CFG) EntryBlock() *Block { return c.blocks[c.entryIdx] }

// ExitBlock returns the distinguished exit block.
func (c *CFG) ExitBlock() *Block { return c.blocks[c.exitIdx] }

// Block returns the block at idx.
func (c *CFG) Block(idx Index) *Block { return c.blocks[idx] }

// Blocks returns a view over every block, entry and exit included.
func (c *CFG) Blocks() []*Block { return c.blocks }

// NumBlocks returns the number of blocks in the CFG.
func (c *CFG) NumBlocks() int { return len(c.blocks) }

// Edges returns a view over every edge.
func (c *CFG) Edges() []*Edge { return c.edges }

// OutEdges returns the edges leaving b.
func (c *CFG) OutEdges(idx Index) []*Edge {
	var out []*Edge
	for _, e := range c.edges {
		if e.Source == idx {
			out = append(out, e)
		}
	}
	return out
}

// InEdges returns the edges entering b.
func (c *CFG) InEdges(idx Index) []*Edge {
	var in []*Edge
	for _, e := range c.edges {
		if e.Target == idx {
			in = append(in, e)
		}
	}
	return in
}

// AddBlock appends b, assigns its Index, and returns it. Exported for
// frontends other than the ARM64/ELF Builder (and for tests) that need to
// construct a CFG directly; Builder itself uses it too.
func (c *CFG) AddBlock(b *Block) Index {
	idx := Index(len(c.blocks))
	b.Index = idx
	c.blocks = append(c.blocks, b)
	return idx
}

// AddEdge links source to target with the given kind, updating both
// blocks' adjacency lists.
func (c *CFG) AddEdge(source, target Index, kind EdgeKind) *Edge {
	e := &Edge{Source: source, Target: target, Kind: kind}
	c.edges = append(c.edges, e)
	c.blocks[source].succs = append(c.blocks[source].succs, target)
	c.blocks[target].preds = append(c.blocks[target].preds, source)
	return e
}

// rebuildAdjacency recomputes every block's preds/succs from c.edges. Passes
// that rewrite c.edges in place (rather than through AddEdge)
// must call this before anything relies on Block.Preds/Succs again.
func (c *CFG) rebuildAdjacency() {
	for _, b := range c.blocks {
		b.preds = nil
		b.succs = nil
	}
	for _, e := range c.edges {
		c.blocks[e.Source].succs = append(c.blocks[e.Source].succs, e.Target)
		c.blocks[e.Target].preds = append(c.blocks[e.Target].preds, e.Source)
	}
}
