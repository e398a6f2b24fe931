package driver

import (
	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/event"
	"github.com/sarchlab/owcet/exegraph"
	"github.com/sarchlab/owcet/hardware"
	"github.com/sarchlab/owcet/ilp"
	"github.com/sarchlab/owcet/insts"
	"github.com/sarchlab/owcet/prog"
)

// EventThreshold caps the number of independently-toggled Sometimes events
// exegraph.Configurations enumerates per block (spec.md §4.4: "a
// configurable threshold"). Kept small since the enumeration is 2^threshold;
// a block with more Sometimes events than this has its excess, lowest-weight
// ones merged.
const EventThreshold = 6

// BlockEvent is one instruction access's categorization, carried alongside
// BlockTiming.Time so the ILP assembly step (spec.md §4.6) can add its own
// event-count variable without re-deriving the categorization from the
// execution graph.
type BlockEvent struct {
	Label    string
	Category ilp.EventCategory
	Penalty  uint64
	// LoopCFG/LoopHeader identify the innermost loop enclosing the
	// instruction this event belongs to, needed only for an
	// EventFirstPerEntry bound (ilp.AddEventContribution's loopEntryVars).
	// LoopHeader is -1 when the instruction is not inside any loop.
	LoopCFG    cfg.CFGIndex
	LoopHeader cfg.Index
}

// BlockTiming is one basic block's worst-case local contribution: the
// execution-graph-derived TIME(b) (spec.md §4.4) plus every event that fed
// into it, for the ILP assembly step to add as its own constrained
// auxiliary variable.
type BlockTiming struct {
	Time   uint64
	Events []BlockEvent
	// Graph is the execution graph BuildBlockTiming solved, retained so a
	// caller can render it (e.g. cmd/owcet's --dump-graph) without
	// rebuilding it. Nil for a block with no instructions.
	Graph *exegraph.Graph
}

// blockInputs bundles the per-instruction categorizations BuildBlockTiming
// needs, each keyed by instruction index within the block.
type blockInputs struct {
	fetch  map[int]cache.Classification
	data   map[int]cache.Classification
	branch map[int]branch.Classification
}

// isMultiply reports whether inst is a vector multiply — the only multiply
// this ISA subset's decoder produces (insts.decoder has no scalar
// OpMUL/OpSDIV/OpUDIV; see insts.Op).
func isMultiply(inst *prog.Instruction) bool {
	dec := inst.Decoded()
	if dec == nil {
		return false
	}
	return dec.Op == insts.OpVMUL || dec.Op == insts.OpVFMUL
}

func isSyscall(inst *prog.Instruction) bool {
	dec := inst.Decoded()
	return dec != nil && dec.Op == insts.OpSVC
}

// executeExtra is the delta above the execute stage's own baseline ALU
// latency that a multiply or syscall instruction adds (spec.md §4.5: event
// costs are deltas, since the node's stage Latency already bakes in the
// common-case baseline).
func executeExtra(inst *prog.Instruction, lat *hardware.InstructionLatencies) uint64 {
	switch {
	case isMultiply(inst):
		if lat.Multiply > lat.ALU {
			return lat.Multiply - lat.ALU
		}
	case isSyscall(inst):
		if lat.Syscall > lat.ALU {
			return lat.Syscall - lat.ALU
		}
	}
	return 0
}

func toInts(regs []uint8) []int {
	out := make([]int, len(regs))
	for i, r := range regs {
		out[i] = int(r)
	}
	return out
}

// nodeFor scans g for the node belonging to (inst, stage) — exegraph.Build
// keeps this mapping internal (nodeAt), so any caller that needs a specific
// node after construction (rather than threading Build's own loop) looks it
// up by its two exported fields.
func nodeFor(g *exegraph.Graph, inst int, stage string) int {
	for _, n := range g.Nodes {
		if n.Inst == inst && n.Stage == stage {
			return n.Index
		}
	}
	return -1
}

// cacheCategoryFor maps a classification onto its ILP event shape, except
// when no cache is modeled at that level at all: then the access costs the
// flat memory latency on every execution, regardless of what the
// classification (computed only when hasCache is true upstream) says.
func cacheCategoryFor(hasCache bool, class cache.Classification) ilp.EventCategory {
	if !hasCache {
		return ilp.EventAlwaysOccurs
	}
	return ilp.CacheEventCategory(class.Category)
}

// BuildBlockTiming computes one block's worst-case local time and event list
// (spec.md §4.4/§4.5). stages is the processor's pipeline; lat the
// instruction-class latency table; icache/dcache nil means that level isn't
// modeled (flat memory.Latency charged instead); inputs carries this block's
// per-instruction cache/branch categorizations, keyed by index into
// b.Insts; loopOf resolves the innermost loop enclosing b (nil if none), for
// stamping each event's LoopCFG/LoopHeader. b with no instructions (the
// entry/exit sentinels) short-circuits to a zero BlockTiming rather than
// building a degenerate empty execution graph.
func BuildBlockTiming(
	cfgIdx cfg.CFGIndex,
	b *cfg.Block,
	stages []exegraph.Stage,
	lat *hardware.InstructionLatencies,
	icache, dcache *hardware.CacheConfig,
	mem hardware.Memory,
	inputs blockInputs,
	loopOf *cfg.Loop,
) BlockTiming {
	insts := b.Insts
	if len(insts) == 0 {
		return BlockTiming{}
	}
	infos := make([]exegraph.InstInfo, len(insts))
	for i, inst := range insts {
		reads, _ := inst.ReadRegs()
		writes, _ := inst.WriteRegs()
		info := exegraph.InstInfo{Reads: toInts(reads), Writes: toInts(writes)}
		if isMultiply(inst) {
			info.ContendGroup = "mul"
		}
		infos[i] = info
	}

	g := exegraph.Build(stages, infos)
	executeStage := "execute"

	builder := event.StandardEventBuilder{Latencies: lat, ICache: icache, DCache: dcache, Memory: mem}

	var events []exegraph.Event
	var blockEvents []BlockEvent

	loopCFG := cfgIdx
	loopHeader := cfg.Index(-1)
	if loopOf != nil {
		loopHeader = loopOf.Header
	}

	for i, inst := range insts {
		if extra := executeExtra(inst, lat); extra > 0 {
			events = append(events, exegraph.Event{
				Node: nodeFor(g, i, executeStage), Related: -1,
				Cost: extra, Occurs: exegraph.Always, Label: "execute-extra",
			})
		}

		fetchClass := inputs.fetch[i]
		fetchEv := builder.Fetch(event.FetchAccess{
			Node: nodeFor(g, i, "fetch"), HasCache: icache != nil, Class: fetchClass,
		})
		events = append(events, fetchEv)
		blockEvents = append(blockEvents, BlockEvent{
			Label: fetchEv.Label, Category: cacheCategoryFor(icache != nil, fetchClass),
			Penalty: fetchEv.Cost, LoopCFG: loopCFG, LoopHeader: loopHeader,
		})

		if inst.Kind().Has(prog.KindMemLoad) || inst.Kind().Has(prog.KindMemStore) {
			dataClass := inputs.data[i]
			access, purge := builder.DataAccess(event.DataAccess{
				Node: nodeFor(g, i, "mem"), HasCache: dcache != nil,
				WriteBack: dcache != nil, IsWrite: inst.Kind().Has(prog.KindMemStore),
				Class: dataClass,
			})
			events = append(events, access)
			blockEvents = append(blockEvents, BlockEvent{
				Label: access.Label, Category: cacheCategoryFor(dcache != nil, dataClass),
				Penalty: access.Cost, LoopCFG: loopCFG, LoopHeader: loopHeader,
			})
			if purge != nil {
				events = append(events, *purge)
				blockEvents = append(blockEvents, BlockEvent{
					Label: purge.Label, Category: cacheCategoryFor(dcache != nil, dataClass),
					Penalty: purge.Cost, LoopCFG: loopCFG, LoopHeader: loopHeader,
				})
			}
		}

		if inst.Kind().Has(prog.KindConditional) {
			branchClass := inputs.branch[i]
			predEv := builder.BranchPrediction(event.BranchAccess{
				Node: nodeFor(g, i, executeStage), Class: branchClass,
			})
			events = append(events, predEv)
			blockEvents = append(blockEvents, BlockEvent{
				Label: predEv.Label, Category: ilp.BranchEventCategory(branchClass.Category),
				Penalty: predEv.Cost, LoopCFG: loopCFG, LoopHeader: loopHeader,
			})
		}
	}

	lastNode := nodeFor(g, len(insts)-1, stages[len(stages)-1].Name)
	configs, _ := exegraph.Configurations(g, events, lastNode, -1, EventThreshold)
	return BlockTiming{Time: exegraph.MaxTime(configs), Events: blockEvents, Graph: g}
}
