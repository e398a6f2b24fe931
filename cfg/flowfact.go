package cfg

// FlowFact is a user- or tool-provided inequality on execution counts (spec
// GLOSSARY); this repo only models the common case spec §3/§4.6 need: a
// loop bound "x_header ≤ N · x_preheader→header". SPEC_FULL.md supplements
// the distilled spec with this as a first-class type, grounded on
// original_source/src/oipet/oipet.cpp's flow-fact handling.
type FlowFact struct {
	// CFG identifies which function this bound applies to.
	CFG CFGIndex
	// Header is the loop header block the bound constrains.
	Header Index
	// Bound is the maximum number of times Header may execute per entry
	// into the enclosing function (N in spec §4.6).
	Bound uint64
}

// FlowFacts is a registry of loop bounds keyed by (CFG, header), the way
// the original manager keeps a per-CFG flow-fact table. Neither hai nor ilp
// owns this registry: it is populated by the driver (from CLI input or a
// loader-provided default) and read by both.
type FlowFacts struct {
	bounds map[CFGIndex]map[Index]uint64
}

// NewFlowFacts creates an empty registry.
func NewFlowFacts() *FlowFacts {
	return &FlowFacts{bounds: make(map[CFGIndex]map[Index]uint64)}
}

// Add records a loop bound, overwriting any previous bound for the same
// header.
func (f *FlowFacts) Add(fact FlowFact) {
	m, ok := f.bounds[fact.CFG]
	if !ok {
		m = make(map[Index]uint64)
		f.bounds[fact.CFG] = m
	}
	m[fact.Header] = fact.Bound
}

// Bound returns the recorded bound for (cfgIdx, header), if any.
func (f *FlowFacts) Bound(cfgIdx CFGIndex, header Index) (uint64, bool) {
	m, ok := f.bounds[cfgIdx]
	if !ok {
		return 0, false
	}
	n, ok := m[header]
	return n, ok
}

// MissingBounds returns every loop header reachable in col that has no
// recorded bound — the set spec §7's "flow-fact errors" and SPEC_FULL.md's
// `owcet flow-facts` subcommand report.
func (f *FlowFacts) MissingBounds(col *Collection) []FlowFact {
	var missing []FlowFact
	for i, g := range col.All() {
		dom := ComputeDominance(g)
		forest := IdentifyLoops(g, dom)
		for _, l := range forest.Loops {
			if _, ok := f.Bound(CFGIndex(i), l.Header); !ok {
				missing = append(missing, FlowFact{CFG: CFGIndex(i), Header: l.Header})
			}
		}
	}
	return missing
}
