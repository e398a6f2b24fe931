package branch

import (
	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/cfg"
)

// Category is a conditional branch's predictor category (spec.md §4.3).
type Category int

const (
	// NotClassified: the analysis cannot bound the misprediction count for
	// this branch any better than "every evaluation might mispredict".
	NotClassified Category = iota
	// AlwaysDefault: MAY guarantees the BHT row never holds this branch's
	// history, so the predictor always falls back to its static default.
	AlwaysDefault
	// AlwaysHistory: MUST guarantees the BHT row always holds this
	// branch's recorded history, so the predictor always uses it.
	AlwaysHistory
	// FirstUnknown: PERSISTENCE guarantees at most one misprediction per
	// entry into the loop at Level — every later iteration within the same
	// entry reuses the row's history from the previous iteration.
	FirstUnknown
	// StaticTaken and StaticNotTaken bypass BHT reasoning entirely: a flow
	// fact proves this branch always goes one way, so there is no
	// misprediction to model (this repo's resolution of spec.md §9's
	// open question on guarded-instruction interaction — see DESIGN.md).
	StaticTaken
	StaticNotTaken
)

// Classification is the outcome of classifying one branch at one program
// point.
type Classification struct {
	Category Category
	Level    int // meaningful only for FirstUnknown
}

// StaticDirections records, per conditional branch block, a direction
// known statically from a flow fact outside this package's scope (e.g.
// spec.md §8 scenario 4's "x_then >= 1, x_else <= 0") — populated by
// whichever caller owns that flow fact (package driver), not computed
// here.
type StaticDirections map[cfg.CFGIndex]map[cfg.Index]bool // true = always taken

// Direction reports a recorded static direction for block b in cfgIdx, if
// any.
func (s StaticDirections) Direction(cfgIdx cfg.CFGIndex, b cfg.Index) (taken, ok bool) {
	m, has := s[cfgIdx]
	if !has {
		return false, false
	}
	taken, ok = m[b]
	return taken, ok
}

// Classify maps package cache's generic MUST/MAY/PERSISTENCE decision onto
// the branch-specific category names, unless static already settled the
// question.
func Classify(static StaticDirections, cfgIdx cfg.CFGIndex, b cfg.Index,
	must cache.Must, may cache.May, persist cache.Persistence,
	mustIn, mayIn cache.Ages, persistIn cache.Persist, i int,
) Classification {
	if taken, ok := static.Direction(cfgIdx, b); ok {
		if taken {
			return Classification{Category: StaticTaken}
		}
		return Classification{Category: StaticNotTaken}
	}

	switch c := cache.Classify(must, may, persist, mustIn, mayIn, persistIn, i); c.Category {
	case cache.AlwaysHit:
		return Classification{Category: AlwaysHistory}
	case cache.AlwaysMiss:
		return Classification{Category: AlwaysDefault}
	case cache.FirstMiss:
		return Classification{Category: FirstUnknown, Level: c.Level}
	default:
		return Classification{Category: NotClassified}
	}
}
