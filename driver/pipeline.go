package driver

import (
	"strconv"

	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/driver/errkind"
	"github.com/sarchlab/owcet/ilp"
)

// DefaultPipeline builds the fixed processor ordering spec.md §4.7
// describes, fused where two of its finer-grained steps share one pass over
// the collection (cache/branch categorization fuses classification into the
// analysis itself, since cache.Classify/branch.Classify are called inline
// per access rather than as a separate pass — see DESIGN.md).
func DefaultPipeline() []Processor {
	return []Processor{
		normalizeProcessor{},
		virtualizeProcessor{},
		conditionalRestructureProcessor{},
		unrollProcessor{},
		loopDominanceProcessor{},
		cacheAnalysisProcessor{},
		branchAnalysisProcessor{},
		timingProcessor{},
		ilpAssemblyProcessor{},
		solveProcessor{},
	}
}

// Analyze runs DefaultPipeline against ctx and returns its error, if any.
func Analyze(ctx *Context) error {
	return NewSession(DefaultPipeline()...).Run(ctx)
}

type normalizeProcessor struct{}

func (normalizeProcessor) Name() string       { return "normalize" }
func (normalizeProcessor) Requires() []string { return nil }
func (normalizeProcessor) Provides() []string { return []string{"normalized"} }
func (normalizeProcessor) Run(ctx *Context) error {
	ctx.Collection = cfg.Normalizer(ctx.Collection)
	return nil
}

// virtualizeProcessor inlines synthetic call blocks up to ctx.InlineDepth
// (spec.md §4.1) when ctx.Virtualize is set; a no-op pass-through otherwise,
// still declaring "virtualized" so later steps have one name to require
// regardless of whether inlining actually ran.
type virtualizeProcessor struct{}

func (virtualizeProcessor) Name() string       { return "virtualize" }
func (virtualizeProcessor) Requires() []string { return []string{"normalized"} }
func (virtualizeProcessor) Provides() []string { return []string{"virtualized"} }
func (virtualizeProcessor) Run(ctx *Context) error {
	if ctx.Virtualize {
		ctx.Collection = cfg.Virtualizer(ctx.InlineDepth)(ctx.Collection)
	}
	return nil
}

type conditionalRestructureProcessor struct{}

func (conditionalRestructureProcessor) Name() string       { return "conditional-restructure" }
func (conditionalRestructureProcessor) Requires() []string { return []string{"virtualized"} }
func (conditionalRestructureProcessor) Provides() []string { return []string{"restructured"} }
func (conditionalRestructureProcessor) Run(ctx *Context) error {
	ctx.Collection = cfg.ConditionalRestructurer(ctx.Collection)
	return nil
}

// unrollProcessor applies cfg.LoopUnroller once (spec.md §9's open question
// on loop unrolling, supplemented per original_source's `-u` flag) when
// ctx.Unroll is set; a no-op pass-through otherwise. LoopUnroller recomputes
// its own dominance/loop forest internally, so this step needs nothing from
// "restructured" beyond ordering after it and before loopDominanceProcessor
// builds the forest the rest of the pipeline actually uses.
type unrollProcessor struct{}

func (unrollProcessor) Name() string       { return "unroll" }
func (unrollProcessor) Requires() []string { return []string{"restructured"} }
func (unrollProcessor) Provides() []string { return []string{"unrolled"} }
func (unrollProcessor) Run(ctx *Context) error {
	if ctx.Unroll {
		ctx.Collection = cfg.LoopUnroller(ctx.Collection)
	}
	return nil
}

// loopDominanceProcessor computes dominance and the loop forest for every
// CFG in the collection (spec.md §4.1), the prerequisite every categorization
// and ILP loop-bound step depends on.
type loopDominanceProcessor struct{}

func (loopDominanceProcessor) Name() string       { return "loop-dominance" }
func (loopDominanceProcessor) Requires() []string { return []string{"restructured"} }
func (loopDominanceProcessor) Provides() []string { return []string{"dominance"} }
func (loopDominanceProcessor) Run(ctx *Context) error {
	ctx.Forests = make(map[cfg.CFGIndex]*cfg.Forest, ctx.Collection.Len())
	for i, g := range ctx.Collection.All() {
		dom := cfg.ComputeDominance(g)
		ctx.Forests[cfg.CFGIndex(i)] = cfg.IdentifyLoops(g, dom)
	}
	return nil
}

type cacheAnalysisProcessor struct{}

func (cacheAnalysisProcessor) Name() string       { return "cache-analysis" }
func (cacheAnalysisProcessor) Requires() []string { return []string{"dominance"} }
func (cacheAnalysisProcessor) Provides() []string { return []string{"cache-categorization"} }
func (cacheAnalysisProcessor) Run(ctx *Context) error {
	if ctx.ICache != nil {
		ctx.ICacheResults = AnalyzeCache(ctx.Collection, *ctx.ICache, false)
	}
	if ctx.DCache != nil {
		ctx.DCacheResults = AnalyzeCache(ctx.Collection, *ctx.DCache, true)
	}
	return nil
}

type branchAnalysisProcessor struct{}

func (branchAnalysisProcessor) Name() string       { return "branch-analysis" }
func (branchAnalysisProcessor) Requires() []string { return []string{"dominance"} }
func (branchAnalysisProcessor) Provides() []string { return []string{"branch-categorization"} }
func (branchAnalysisProcessor) Run(ctx *Context) error {
	ctx.BranchResults = AnalyzeBranches(ctx.Collection, ctx.BHTSize, ctx.StaticDirections)
	return nil
}

// cacheIndex reshapes a flat []AccessResult into the per-(cfg,block)
// instruction map BuildBlockTiming expects.
type cacheIndex map[cfg.CFGIndex]map[cfg.Index]map[int]cache.Classification

func indexCache(results []AccessResult) cacheIndex {
	idx := make(cacheIndex)
	for _, r := range results {
		byBlock, ok := idx[r.CFG]
		if !ok {
			byBlock = make(map[cfg.Index]map[int]cache.Classification)
			idx[r.CFG] = byBlock
		}
		byInst, ok := byBlock[r.Block]
		if !ok {
			byInst = make(map[int]cache.Classification)
			byBlock[r.Block] = byInst
		}
		byInst[r.InstIdx] = r.Class
	}
	return idx
}

func (idx cacheIndex) forBlock(cfgIdx cfg.CFGIndex, b cfg.Index) map[int]cache.Classification {
	if byBlock, ok := idx[cfgIdx]; ok {
		return byBlock[b]
	}
	return nil
}

// branchIndex is cacheIndex's counterpart for branch.Classification.
type branchIndex map[cfg.CFGIndex]map[cfg.Index]map[int]branch.Classification

func indexBranch(results []BranchResult) branchIndex {
	idx := make(branchIndex)
	for _, r := range results {
		byBlock, ok := idx[r.CFG]
		if !ok {
			byBlock = make(map[cfg.Index]map[int]branch.Classification)
			idx[r.CFG] = byBlock
		}
		byInst, ok := byBlock[r.Block]
		if !ok {
			byInst = make(map[int]branch.Classification)
			byBlock[r.Block] = byInst
		}
		byInst[r.InstIdx] = r.Class
	}
	return idx
}

func (idx branchIndex) forBlock(cfgIdx cfg.CFGIndex, b cfg.Index) map[int]branch.Classification {
	if byBlock, ok := idx[cfgIdx]; ok {
		return byBlock[b]
	}
	return nil
}

// timingProcessor builds BlockTiming for every block of TargetCFG.
type timingProcessor struct{}

func (timingProcessor) Name() string { return "timing" }
func (timingProcessor) Requires() []string {
	return []string{"cache-categorization", "branch-categorization"}
}
func (timingProcessor) Provides() []string { return []string{"block-timing"} }
func (timingProcessor) Run(ctx *Context) error {
	icacheIdx := indexCache(ctx.ICacheResults)
	dcacheIdx := indexCache(ctx.DCacheResults)
	branchIdx := indexBranch(ctx.BranchResults)

	stages := ctx.Proc.Pipeline()
	ctx.BlockTimes = make(map[cfg.Index]BlockTiming)

	g := ctx.Collection.CFG(ctx.TargetCFG)
	forest := ctx.Forests[ctx.TargetCFG]

	for _, b := range g.Blocks() {
		inputs := blockInputs{
			fetch:  icacheIdx.forBlock(ctx.TargetCFG, b.Index),
			data:   dcacheIdx.forBlock(ctx.TargetCFG, b.Index),
			branch: branchIdx.forBlock(ctx.TargetCFG, b.Index),
		}
		var loopOf *cfg.Loop
		if forest != nil {
			loopOf = forest.LoopOf(b.Index)
		}
		ctx.BlockTimes[b.Index] = BuildBlockTiming(
			ctx.TargetCFG, b, stages, ctx.Latencies, ctx.ICache, ctx.DCache, ctx.Proc.Memory, inputs, loopOf)
	}
	return nil
}

// ilpAssemblyProcessor builds the ILP system: structural flow constraints,
// loop-bound constraints, and one event-count auxiliary variable per
// BlockEvent that can occur (an EventNeverOccurs event gets none) (spec.md
// §4.6).
type ilpAssemblyProcessor struct{}

func (ilpAssemblyProcessor) Name() string       { return "ilp-assembly" }
func (ilpAssemblyProcessor) Requires() []string { return []string{"block-timing"} }
func (ilpAssemblyProcessor) Provides() []string { return []string{"ilp-system"} }
func (ilpAssemblyProcessor) Run(ctx *Context) error {
	g := ctx.Collection.CFG(ctx.TargetCFG)
	forest := ctx.Forests[ctx.TargetCFG]

	sys := ilp.NewSystem()
	vars := ilp.BuildStructural(sys, g)
	if forest != nil {
		ilp.BuildLoopBounds(sys, g, forest, ctx.TargetCFG, vars, ctx.FlowFacts)
	}

	for _, f := range ctx.FlowFacts.MissingBounds(ctx.Collection) {
		fn := ctx.Collection.CFG(f.CFG)
		ctx.MissingBounds = append(ctx.MissingBounds, newError(errkind.FlowFact,
			fn.Name+": loop header at 0x"+strconv.FormatUint(fn.Block(f.Header).Addr(), 16)+" has no recorded bound", nil))
		ctx.Log.Warn().Msg("unbounded loop: ILP may be infeasible without a recorded bound")
	}

	eventSeq := 0
	for idx, bt := range ctx.BlockTimes {
		blockVar := vars.Block[idx]
		if blockVar == nil {
			continue
		}
		ilp.AddBlockTime(sys, blockVar, bt.Time)
		for _, ev := range bt.Events {
			if ev.Category == ilp.EventNeverOccurs {
				continue
			}
			eventSeq++
			label := eventVarName(g.Name, idx, ev.Label, eventSeq)
			aux := sys.NewVar(label, true)
			var loopEntryVars []*ilp.Var
			if ev.Category == ilp.EventFirstPerEntry && forest != nil {
				loopEntryVars = nonBackInEdgeVars(g, forest, ev.LoopHeader, vars)
			}
			ilp.AddEventContribution(sys, label, aux, blockVar, ev.Category, loopEntryVars)
			ilp.AddEventPenalty(sys, aux, ev.Penalty)
		}
	}

	ctx.System = sys
	ctx.Vars = vars
	return nil
}

func eventVarName(cfgName string, b cfg.Index, label string, seq int) string {
	return cfgName + "_ev" + strconv.Itoa(int(b)) + "_" + label + strconv.Itoa(seq)
}

// nonBackInEdgeVars returns the x_{u,v} variables for every edge entering
// loopHeader that the loop forest doesn't classify as that loop's own back
// edge (ilp.BuildLoopBounds's same "entries" set, reused here for
// EventFirstPerEntry's bound).
func nonBackInEdgeVars(g *cfg.CFG, forest *cfg.Forest, loopHeader cfg.Index, vars ilp.Variables) []*ilp.Var {
	if loopHeader < 0 {
		return nil
	}
	var out []*ilp.Var
	for _, e := range g.InEdges(loopHeader) {
		if forest.IsBackEdge(e) {
			continue
		}
		if v := vars.Edge[e]; v != nil {
			out = append(out, v)
		}
	}
	return out
}

type solveProcessor struct{}

func (solveProcessor) Name() string       { return "solve" }
func (solveProcessor) Requires() []string { return []string{"ilp-system"} }
func (solveProcessor) Provides() []string { return []string{"solution"} }
func (solveProcessor) Run(ctx *Context) error {
	sol, err := ctx.Solver.Solve(ctx.System)
	if err != nil {
		return newError(errkind.Solver, "ILP solve failed", err)
	}
	ctx.Solution = sol
	return nil
}
