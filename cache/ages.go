package cache

import "github.com/sarchlab/owcet/cfg"

// Ages is the MUST/MAY abstract state of one row: one age per line-block
// tracked in the row's conflict set, in [0, Associativity]. For MUST, value
// Associativity means "not guaranteed present"; for MAY, it means "not
// possibly present" (spec.md §4.3).
type Ages []int

func newAges(n, fill int) Ages {
	a := make(Ages, n)
	for i := range a {
		a[i] = fill
	}
	return a
}

func (a Ages) clone() Ages {
	out := make(Ages, len(a))
	copy(out, a)
	return out
}

func (a Ages) equal(b Ages) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Mapper assigns each instruction fetch (or data access) inside a block to
// an index into one row's conflict set, in program order. A block with no
// access into this row returns nil. The caller builds one Mapper per row
// from a concrete CacheConfig (package hardware) — this package is
// address-agnostic by design, so it can be unit-tested without one.
type Mapper interface {
	AccessesFor(b *cfg.Block) []int
}

// MapperFunc adapts a plain function to a Mapper.
type MapperFunc func(*cfg.Block) []int

func (f MapperFunc) AccessesFor(b *cfg.Block) []int { return f(b) }

// inject applies Ferdinand's LRU-stack-distance update for accessing block
// index i in a row of associativity assoc (spec.md §4.3): if i was already
// tracked (age != floor and age < assoc), every tracked block strictly
// younger than it ages by one; otherwise every tracked block ages by one.
// Either way i becomes age 0. floor is the sentinel meaning "not tracked in
// this state" — assoc itself for MUST/MAY, -1 for PERSISTENCE's ⊥.
func inject(a Ages, i, assoc, floor int) {
	cur := a[i]
	tracked := cur != floor && cur < assoc
	for j := range a {
		if j == i || a[j] == floor {
			continue
		}
		if tracked && a[j] >= cur {
			continue
		}
		if a[j] < assoc {
			a[j]++
		}
	}
	a[i] = 0
}
