package cache

import (
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/hai"
)

// May is the MAY domain over one row (spec.md §4.3): age[i] is an upper
// bound on block i's age if it is present at all; block i may be present
// iff age[i] < Associativity. Join is pointwise min — on a control-flow
// merge, a block may be present (at the better of the two ages) if either
// path could have it present. Implements hai.Domain[Ages].
//
// MAY reuses the same LRU-stack-distance inject update as Must: Ferdinand's
// cache analysis tracks MUST and MAY with the identical per-access aging
// rule, differing only in their join operator and initial/absorbing values.
type May struct {
	N, Associativity int
	Access           Mapper
}

func (m May) Bottom() Ages { return newAges(m.N, m.Associativity) }
func (m May) Top() Ages    { return newAges(m.N, 0) }

func (m May) Join(a, b Ages) Ages {
	out := make(Ages, m.N)
	for i := range out {
		if a[i] < b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

func (m May) Equal(a, b Ages) bool { return a.equal(b) }

func (m May) Transfer(in Ages, b *cfg.Block) Ages {
	out := in.clone()
	for _, i := range m.Access.AccessesFor(b) {
		inject(out, i, m.Associativity, m.Associativity)
	}
	return out
}

func (m May) EnterContext(d Ages, _ hai.ContextKind) Ages { return d }
func (m May) LeaveContext(d Ages, _ hai.ContextKind) Ages { return d }

// MayBePresent reports whether block index i could be present in in.
func (m May) MayBePresent(in Ages, i int) bool { return in[i] < m.Associativity }
