package cache

import (
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/hai"
)

// Item is one level of a Persist stack: one value per tracked block, in
// {-1} ∪ [0, Associativity]. -1 is ⊥ ("never touched since this context was
// entered"); Associativity means "evicted at least once since entry"; any
// other value is the current age (spec.md §4.3).
type Item []int

func newItem(n int) Item {
	it := make(Item, n)
	for i := range it {
		it[i] = -1
	}
	return it
}

func (it Item) clone() Item {
	out := make(Item, len(it))
	copy(out, it)
	return out
}

func (it Item) equal(o Item) bool {
	if len(it) != len(o) {
		return false
	}
	for i := range it {
		if it[i] != o[i] {
			return false
		}
	}
	return true
}

// joinItem combines two Item values the way Persist.Join combines stack
// levels: ⊥ yields to whatever the other path has (a block untouched on one
// path is exactly as persistent as the other path says), and otherwise the
// worse (larger) age wins, matching Must's conservatism — persistence is a
// guarantee, so it must hold on every path reaching the merge.
func joinItem(a, b Item) Item {
	out := make(Item, len(a))
	for i := range out {
		switch {
		case a[i] == -1:
			out[i] = b[i]
		case b[i] == -1:
			out[i] = a[i]
		case a[i] > b[i]:
			out[i] = a[i]
		default:
			out[i] = b[i]
		}
	}
	return out
}

// Persist is one row's PERSISTENCE state: a stack of Items, one per
// currently-entered loop context plus, at index 0, the "whole" item that is
// never popped (spec.md §4.3). Implements hai.Domain[Persist] via the
// Persistence wrapper below.
type Persist struct {
	top   bool
	stack []Item
}

// NewPersistState returns the real starting state for a fresh analysis: a
// one-level stack (the "whole" item), all blocks untouched. Use this as the
// entryState passed to hai.Solve — Persistence.Bottom is a join-identity
// placeholder, not a valid starting point.
func NewPersistState(n int) Persist {
	return Persist{stack: []Item{newItem(n)}}
}

// Persistence is the PERSISTENCE domain over one row. Implements
// hai.Domain[Persist].
type Persistence struct {
	N, Associativity int
	Access           Mapper
}

func (p Persistence) Bottom() Persist { return Persist{} }
func (p Persistence) Top() Persist    { return Persist{top: true} }

func (p Persistence) Join(a, b Persist) Persist {
	if a.top || b.top {
		return Persist{top: true}
	}
	if len(a.stack) == 0 {
		return b
	}
	if len(b.stack) == 0 {
		return a
	}
	out := make([]Item, len(a.stack))
	for i := range out {
		if i < len(b.stack) {
			out[i] = joinItem(a.stack[i], b.stack[i])
		} else {
			out[i] = a.stack[i].clone()
		}
	}
	return Persist{stack: out}
}

func (p Persistence) Equal(a, b Persist) bool {
	if a.top != b.top || len(a.stack) != len(b.stack) {
		return false
	}
	for i := range a.stack {
		if !a.stack[i].equal(b.stack[i]) {
			return false
		}
	}
	return true
}

func (p Persistence) Transfer(in Persist, b *cfg.Block) Persist {
	if in.top {
		return in
	}
	out := Persist{stack: make([]Item, len(in.stack))}
	for i, it := range in.stack {
		out.stack[i] = it.clone()
	}
	for _, i := range p.Access.AccessesFor(b) {
		for _, it := range out.stack {
			inject(Ages(it), i, p.Associativity, -1)
		}
	}
	return out
}

// EnterContext pushes a fresh ⊥ item for CtxLoop (a new loop nesting level
// begins tracking from scratch); CtxFunc is a no-op, since persistence
// tracks loop nesting, not call nesting (spec.md §4.3 names only loop
// contexts; this repo's context-insensitive call handling in package hai
// never nests function-call state here — an explicit scope decision, see
// DESIGN.md).
func (p Persistence) EnterContext(d Persist, kind hai.ContextKind) Persist {
	if d.top || kind != hai.CtxLoop {
		return d
	}
	stack := make([]Item, len(d.stack)+1)
	copy(stack, d.stack)
	stack[len(d.stack)] = newItem(p.N)
	return Persist{stack: stack}
}

// LeaveContext pops the innermost item on CtxLoop exit.
func (p Persistence) LeaveContext(d Persist, kind hai.ContextKind) Persist {
	if d.top || kind != hai.CtxLoop || len(d.stack) == 0 {
		return d
	}
	stack := make([]Item, len(d.stack)-1)
	copy(stack, d.stack[:len(d.stack)-1])
	return Persist{stack: stack}
}

// PersistentAt reports whether block index i is persistent at stack level
// level (0 = whole-program, increasing with loop nesting depth): its age at
// that level is bound (tracked and not evicted).
func (p Persistence) PersistentAt(in Persist, level, i int) bool {
	if in.top || level < 0 || level >= len(in.stack) {
		return false
	}
	age := in.stack[level][i]
	return age >= 0 && age < p.Associativity
}

// Depth returns the number of stack levels currently tracked in in
// (0 if Top).
func (p Persistence) Depth(in Persist) int {
	if in.top {
		return 0
	}
	return len(in.stack)
}
