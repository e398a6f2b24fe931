package driver

import (
	"github.com/sarchlab/owcet/driver/errkind"
)

// Processor is one named, composable analysis step (spec.md §4.7/§5):
// "the system is organized as a set of Processors, each of which requires
// certain features and provides others." Requires/Provides name abstract
// feature identifiers (e.g. "dominance", "icache-categorization"); Run reads
// and mutates the shared Context.
type Processor interface {
	Name() string
	Requires() []string
	Provides() []string
	Run(ctx *Context) error
}

// Session runs a fixed, ordered list of Processors (spec.md §5: the pipeline
// order is fixed rather than dynamically feature-driven, so "a requirement
// that is unmet triggers the processor that provides it" collapses here to a
// static check that every Requires() name was already Provides()-declared by
// an earlier step). Feature identifiers are mutually exclusive within a
// session: the same Provides() name may not be declared twice.
type Session struct {
	procs []Processor
}

// NewSession builds a Session that will run procs in the given order.
func NewSession(procs ...Processor) *Session {
	return &Session{procs: procs}
}

// Run executes every processor in order, checking Requires/Provides and
// Context.Cancelled before each step (spec.md §5's cooperative
// cancellation). The first processor error or unmet/duplicate feature stops
// the session and is returned.
func (s *Session) Run(ctx *Context) error {
	provided := make(map[string]bool)
	for _, p := range s.procs {
		if ctx.Cancelled() {
			return nil
		}
		for _, need := range p.Requires() {
			if !provided[need] {
				return newError(errkind.AnalysisPrerequisite,
					p.Name()+" requires "+need+", which no earlier processor in this session provides", nil)
			}
		}
		for _, give := range p.Provides() {
			if provided[give] {
				return newError(errkind.Internal,
					give+" is provided by more than one processor in this session", nil)
			}
		}
		if err := p.Run(ctx); err != nil {
			return err
		}
		for _, give := range p.Provides() {
			provided[give] = true
		}
	}
	return nil
}
