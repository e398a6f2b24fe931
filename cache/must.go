package cache

import (
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/hai"
)

// Must is the MUST domain over one row (spec.md §4.3): age[i] = Associativity
// means block i is not guaranteed present; otherwise block i is guaranteed
// present with age at most age[i]. Join is pointwise max — on a control-flow
// merge, a block is only still guaranteed present if both paths guarantee
// it, with the worse (larger) of the two ages. Implements hai.Domain[Ages].
type Must struct {
	N, Associativity int
	Access           Mapper
}

// Bottom is only the Join identity (all-0 is the least element under
// pointwise max); it never occurs as a real reached cache state other than
// as a placeholder for "not yet reached". The real pre-analysis state —
// nothing guaranteed present — is Top (spec.md §4.3: "Initial top = all A").
func (m Must) Bottom() Ages { return newAges(m.N, 0) }
func (m Must) Top() Ages    { return newAges(m.N, m.Associativity) }

func (m Must) Join(a, b Ages) Ages {
	out := make(Ages, m.N)
	for i := range out {
		if a[i] > b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

func (m Must) Equal(a, b Ages) bool { return a.equal(b) }

func (m Must) Transfer(in Ages, b *cfg.Block) Ages {
	out := in.clone()
	for _, i := range m.Access.AccessesFor(b) {
		inject(out, i, m.Associativity, m.Associativity)
	}
	return out
}

func (m Must) EnterContext(d Ages, _ hai.ContextKind) Ages { return d }
func (m Must) LeaveContext(d Ages, _ hai.ContextKind) Ages { return d }

// Present reports whether block index i is guaranteed present in in.
func (m Must) Present(in Ages, i int) bool { return in[i] < m.Associativity }
