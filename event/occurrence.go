package event

import (
	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/exegraph"
)

// CacheOccurrence maps a package cache categorization onto the event
// occurrence it implies: an AlwaysHit block never pays the miss cost
// (Never), an AlwaysMiss block always pays it (Always), and FirstMiss/
// NotClassified may or may not, within any single graph instance
// (Sometimes) — the ILP generator (package ilp) is what distinguishes
// "once per loop entry" from "possibly every access" at the constraint
// level; the execution graph only needs the per-instance shape.
func CacheOccurrence(c cache.Category) exegraph.Occurrence {
	switch c {
	case cache.AlwaysHit:
		return exegraph.Never
	case cache.AlwaysMiss:
		return exegraph.Always
	default: // cache.FirstMiss, cache.NotClassified
		return exegraph.Sometimes
	}
}

// BranchOccurrence maps a package branch categorization onto the
// misprediction event's occurrence: AlwaysHistory/StaticTaken/
// StaticNotTaken never mispredict (a resolved static direction or a
// reliably-tracked history row means the predictor is always right by
// construction here), AlwaysDefault's static fallback may or may not match
// the branch's actual direction so it's conservatively Sometimes, and
// FirstUnknown/NotClassified are Sometimes for the same per-instance reason
// as the cache side.
func BranchOccurrence(c branch.Category) exegraph.Occurrence {
	switch c {
	case branch.AlwaysHistory, branch.StaticTaken, branch.StaticNotTaken:
		return exegraph.Never
	default: // branch.AlwaysDefault, branch.FirstUnknown, branch.NotClassified
		return exegraph.Sometimes
	}
}
