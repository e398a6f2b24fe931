package cfg

import "github.com/sarchlab/owcet/props"

// UnknownSuccessorID marks a block whose last instruction is a computed
// branch with no statically-known target and no flow-fact mapping (spec
// §4.1): "callers must either provide a flow-fact mapping or accept
// worst-case behavior." Downstream passes that see this set must treat the
// block as flowing to an unconstrained set of successors.
var UnknownSuccessorID = props.NewIdentifier[bool]("cfg.unknown-successor")

// IsUnknownSuccessor reports whether b was left with an unresolved branch
// target during construction.
func IsUnknownSuccessor(b *Block) bool {
	return props.MustGet(&b.Props, UnknownSuccessorID)
}
