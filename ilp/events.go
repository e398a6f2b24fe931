package ilp

import (
	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cache"
)

// EventCategory is the shape of the bound an event's auxiliary count
// variable gets, independent of which package (cache or branch) produced
// the underlying categorization (spec.md §4.6).
type EventCategory int

const (
	// EventAlwaysOccurs: the event fires on every execution of its block
	// — aux = x_b.
	EventAlwaysOccurs EventCategory = iota
	// EventNeverOccurs: the event never fires — aux = 0.
	EventNeverOccurs
	// EventFirstPerEntry: the event fires at most once per entry into the
	// enclosing loop — aux ≤ ∑ entries-of-loop.
	EventFirstPerEntry
	// EventUnbounded: no better bound than "at most once per execution of
	// the block" — aux ≤ x_b.
	EventUnbounded
)

// CacheEventCategory maps a package cache categorization onto the ILP bound
// shape it implies.
func CacheEventCategory(c cache.Category) EventCategory {
	switch c {
	case cache.AlwaysHit:
		return EventNeverOccurs
	case cache.AlwaysMiss:
		return EventAlwaysOccurs
	case cache.FirstMiss:
		return EventFirstPerEntry
	default: // cache.NotClassified
		return EventUnbounded
	}
}

// BranchEventCategory maps a package branch categorization onto the ILP
// bound shape it implies.
func BranchEventCategory(c branch.Category) EventCategory {
	switch c {
	case branch.AlwaysHistory, branch.StaticTaken, branch.StaticNotTaken:
		return EventNeverOccurs
	case branch.AlwaysDefault:
		return EventAlwaysOccurs
	case branch.FirstUnknown:
		return EventFirstPerEntry
	default: // branch.NotClassified
		return EventUnbounded
	}
}

// AddEventContribution adds the constraint bounding aux from above per
// spec.md §4.6: "for an always-miss fetch: miss_b = x_b; for a first-miss
// at level L: miss_b ≤ ∑ entries-of-L-loop; for not-classified: miss_b ≤
// x_b." loopEntryVars is the set of x_{u,v} variables for edges entering
// the loop at the relevant level (ilp.BuildLoopBounds's non-back in-edges),
// needed only for EventFirstPerEntry.
func AddEventContribution(s *System, label string, aux, blockVar *Var, evCat EventCategory, loopEntryVars []*Var) {
	switch evCat {
	case EventNeverOccurs:
		c := s.NewConstraint(label, EQ, 0)
		c.AddTerm(1, aux)
	case EventAlwaysOccurs:
		c := s.NewConstraint(label, EQ, 0)
		c.AddTerm(1, aux)
		c.AddTerm(-1, blockVar)
	case EventFirstPerEntry:
		c := s.NewConstraint(label, LE, 0)
		c.AddTerm(1, aux)
		for _, v := range loopEntryVars {
			c.AddTerm(-1, v)
		}
	case EventUnbounded:
		c := s.NewConstraint(label, LE, 0)
		c.AddTerm(1, aux)
		c.AddTerm(-1, blockVar)
	}
}
