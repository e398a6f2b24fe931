// Package errkind names the WCET driver's error taxonomy (spec.md §7): load,
// configuration, analysis-prerequisite, unsupported-feature, solver,
// flow-fact, and internal-assertion errors. Kept as its own small package,
// the way the teacher keeps an ISA-wide Op/Format/Cond enum in insts
// separate from the instructions that use it, so driver.Error can be
// imported without pulling in the whole driver package.
package errkind

// Kind classifies a driver.Error by which part of spec.md §7's taxonomy it
// belongs to.
type Kind int

const (
	// Load: missing file, wrong architecture, truncated binary. Fatal.
	Load Kind = iota
	// Configuration: missing/invalid hardware XML, incompatible processor
	// model. Fatal at processor setup.
	Configuration
	// AnalysisPrerequisite: a requested feature was not provided by any
	// registered processor in this session. Fatal; names the feature.
	AnalysisPrerequisite
	// UnsupportedFeature: an operation was called on an instruction not
	// produced by a loader that supports it. Reported; caller may fall
	// back.
	UnsupportedFeature
	// Solver: infeasible, unbounded, or numerical ILP solver failure.
	// Reported with the solver's message; analysis yields no WCET.
	Solver
	// FlowFact: a loop reachable from the task entry has no recorded
	// bound. The ILP is unbounded; reported with the enclosing function
	// and header address.
	FlowFact
	// Internal: a monotonicity or graph-well-formedness assertion failed.
	// Intended only for debugging builds.
	Internal
)

// String names the Kind for diagnostics and driver.Error's message.
func (k Kind) String() string {
	switch k {
	case Load:
		return "load"
	case Configuration:
		return "configuration"
	case AnalysisPrerequisite:
		return "analysis-prerequisite"
	case UnsupportedFeature:
		return "unsupported-feature"
	case Solver:
		return "solver"
	case FlowFact:
		return "flow-fact"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}
