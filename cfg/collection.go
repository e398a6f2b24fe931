package cfg

// CFGIndex identifies a CFG within a CFGCollection.
type CFGIndex int

// Collection is the set of CFGs reachable from a task entry; position 0 is
// always the entry CFG (spec §3 "CFGCollection"). A CFGCollection
// exclusively owns its CFGs.
type Collection struct {
	cfgs    []*CFG
	byEntry map[uint64]CFGIndex
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{byEntry: make(map[uint64]CFGIndex)}
}

// EntryCFG returns the collection's entry CFG (index 0).
func (c *Collection) EntryCFG() *CFG { return c.cfgs[0] }

// CFG returns the CFG at idx.
func (c *Collection) CFG(idx CFGIndex) *CFG { return c.cfgs[idx] }

// Len returns the number of CFGs in the collection.
func (c *Collection) Len() int { return len(c.cfgs) }

// All returns every CFG, entry CFG first.
func (c *Collection) All() []*CFG { return c.cfgs }

// Lookup returns the CFG index built from the given entry address, if any.
func (c *Collection) Lookup(entry uint64) (CFGIndex, bool) {
	idx, ok := c.byEntry[entry]
	return idx, ok
}

// Add appends g and indexes it by entry address. Exported so frontends
// other than Builder (and tests) can assemble a Collection directly.
func (c *Collection) Add(g *CFG) CFGIndex {
	idx := CFGIndex(len(c.cfgs))
	c.cfgs = append(c.cfgs, g)
	c.byEntry[g.Entry] = idx
	return idx
}
