package cache

// Category is a fetched block's (or data access's) cache category (spec.md
// §4.3).
type Category int

const (
	// NotClassified is neither always-hit, always-miss, nor persistent at
	// any tracked level: the analysis must assume a miss on every access
	// but cannot charge it as a single amortized cost.
	NotClassified Category = iota
	// AlwaysHit: MUST guarantees the block is present on entry to every
	// access.
	AlwaysHit
	// AlwaysMiss: MAY guarantees the block can never be present.
	AlwaysMiss
	// FirstMiss: PERSISTENCE guarantees at most one miss per entry into
	// the loop at Level.
	FirstMiss
)

// Classification is the outcome of classifying one block index at one
// program point, given that point's MUST/MAY/PERSISTENCE IN-states.
type Classification struct {
	Category Category
	// Level is meaningful only for FirstMiss: the PERSISTENCE stack level
	// (0 = whole-program, increasing with loop nesting) at which the block
	// is persistent.
	Level int
}

// Classify applies spec.md §4.3's decision procedure: MUST first (always
// hit), then MAY (always miss), then PERSISTENCE from the innermost level
// outward (first miss for the first level found persistent), else
// not-classified.
func Classify(must Must, may May, persist Persistence, mustIn, mayIn Ages, persistIn Persist, i int) Classification {
	if must.Present(mustIn, i) {
		return Classification{Category: AlwaysHit}
	}
	if !may.MayBePresent(mayIn, i) {
		return Classification{Category: AlwaysMiss}
	}
	for level := persist.Depth(persistIn) - 1; level >= 0; level-- {
		if persist.PersistentAt(persistIn, level, i) {
			return Classification{Category: FirstMiss, Level: level}
		}
	}
	return Classification{Category: NotClassified}
}
