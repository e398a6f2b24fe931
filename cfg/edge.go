package cfg

import "github.com/sarchlab/owcet/props"

// EdgeKind is the directed-edge type spec §3 requires.
type EdgeKind uint8

const (
	// EdgeTaken marks the taken side of a conditional branch (or the only
	// successor of an unconditional jump/fall-through).
	EdgeTaken EdgeKind = iota
	// EdgeNotTaken marks the fall-through side of a conditional branch.
	EdgeNotTaken
	// EdgeCall marks a SynthBlock's link to its callee's entry.
	EdgeCall
	// EdgeReturn marks a SynthBlock's single outgoing edge to the return
	// point in the caller (spec §3 invariant: exactly one such edge).
	EdgeReturn
	// EdgeVirtual marks an edge introduced by a transformer (e.g. the
	// inliner's substituted entry/exit edges) rather than by reconstruction.
	EdgeVirtual
)

// Edge is a directed, typed connection between two blocks of the same CFG.
type Edge struct {
	Source Index
	Target Index
	Kind   EdgeKind
	Props  props.List
}
