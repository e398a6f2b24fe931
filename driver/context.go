package driver

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/hardware"
	"github.com/sarchlab/owcet/ilp"
)

// Context is the threaded state of one WCET analysis session (spec.md §9:
// "a threaded Context instead of global singletons"): the CFG collection
// under analysis, the hardware model it's analyzed against, the flow facts
// supplied for it, and the results each pipeline stage accumulates. No
// package-level global holds any of this — every Processor receives the
// Context it should read and mutate.
//
// cfg.FlowFacts already implements the manager-level, CFG-keyed flow-fact
// registry SPEC_FULL.md's supplemented features section describes; Context
// simply owns one instance rather than this package redeclaring the type.
type Context struct {
	Collection       *cfg.Collection
	FlowFacts        *cfg.FlowFacts
	StaticDirections branch.StaticDirections

	Proc      *hardware.Processor
	ICache    *hardware.CacheConfig
	DCache    *hardware.CacheConfig
	Latencies *hardware.InstructionLatencies
	BHTSize   uint32

	Virtualize  bool
	InlineDepth int
	Unroll      bool

	TargetCFG cfg.CFGIndex
	Solver    ilp.Solver

	Log zerolog.Logger

	cancelled bool

	// Populated by the pipeline's processors, in order.
	Forests       map[cfg.CFGIndex]*cfg.Forest
	ICacheResults []AccessResult
	DCacheResults []AccessResult
	BranchResults []BranchResult
	BlockTimes    map[cfg.Index]BlockTiming
	System        *ilp.System
	Vars          ilp.Variables
	Solution      ilp.Solution

	// MissingBounds collects spec.md §7 flow-fact errors found while
	// assembling loop-bound constraints: loops in any CFG of the collection
	// with no recorded bound, each named by its function and header address. Non-fatal by itself (the resulting ILP
	// may simply be unbounded, which the solve step reports as a Solver
	// error); retained here so a caller can report every missing bound at
	// once rather than failing at the first.
	MissingBounds []*Error
}

// NewContext creates a Context with spec.md §8 scenario defaults: the
// scalar 5-stage DefaultProcessor, no caches configured (flat memory
// latency), default instruction latencies, and the default BHT sizing.
// Callers override whichever fields their scenario needs before running a
// Session.
func NewContext(col *cfg.Collection, log zerolog.Logger) *Context {
	return &Context{
		Collection:  col,
		FlowFacts:   cfg.NewFlowFacts(),
		Proc:        hardware.DefaultProcessor(),
		Latencies:   hardware.DefaultInstructionLatencies(),
		BHTSize:     hardware.DefaultBranchSimConfig().BHTSize,
		InlineDepth: cfg.DefaultInlineDepth,
		Log:         log,
	}
}

// Cancel sets the cooperative cancellation flag (spec.md §5): observed at
// each Session processor boundary.
func (c *Context) Cancel() { c.cancelled = true }

// Cancelled reports whether Cancel has been called.
func (c *Context) Cancelled() bool { return c.cancelled }
