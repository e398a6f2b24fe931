package cfg_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/owcet/cfg"
)

var _ = Describe("Normalizer", func() {
	It("splices out an empty basic block", func() {
		g := cfg.NewCFG("empty-block", 0x5000)
		entry := g.AddBlock(&cfg.Block{Kind: cfg.KindEntry})
		empty := g.AddBlock(&cfg.Block{Kind: cfg.KindBasic}) // no Insts
		tail := g.AddBlock(&cfg.Block{Kind: cfg.KindBasic, Insts: oneInst(0x5000)})
		exit := g.AddBlock(&cfg.Block{Kind: cfg.KindExit})
		g.MarkEntryExit(entry, exit)

		g.AddEdge(entry, empty, cfg.EdgeTaken)
		g.AddEdge(empty, tail, cfg.EdgeTaken)
		g.AddEdge(tail, exit, cfg.EdgeTaken)

		col := cfg.NewCollection()
		col.Add(g)
		cfg.Normalizer(col)

		Expect(findEdge(g, entry, tail)).NotTo(BeNil())
	})
})

var _ = Describe("Virtualizer", func() {
	It("inlines a non-recursive call", func() {
		col := cfg.NewCollection()

		caller := cfg.NewCFG("caller", 0x6000)
		entry := caller.AddBlock(&cfg.Block{Kind: cfg.KindEntry})
		synth := caller.AddBlock(&cfg.Block{Kind: cfg.KindSynth, Callee: -1})
		after := caller.AddBlock(&cfg.Block{Kind: cfg.KindBasic, Insts: oneInst(0x6004)})
		exit := caller.AddBlock(&cfg.Block{Kind: cfg.KindExit})
		caller.MarkEntryExit(entry, exit)
		caller.AddEdge(entry, synth, cfg.EdgeTaken)
		caller.AddEdge(synth, after, cfg.EdgeReturn)
		caller.AddEdge(after, exit, cfg.EdgeTaken)
		col.Add(caller) // index 0: the entry CFG Virtualizer inlines into

		callee := cfg.NewCFG("callee", 0x6100)
		cEntry := callee.AddBlock(&cfg.Block{Kind: cfg.KindEntry})
		cBody := callee.AddBlock(&cfg.Block{Kind: cfg.KindBasic, Insts: oneInst(0x6100)})
		cExit := callee.AddBlock(&cfg.Block{Kind: cfg.KindExit})
		callee.MarkEntryExit(cEntry, cExit)
		callee.AddEdge(cEntry, cBody, cfg.EdgeTaken)
		callee.AddEdge(cBody, cExit, cfg.EdgeTaken)
		calleeIdx := col.Add(callee)

		caller.Block(synth).Callee = cfg.CalleeRef(calleeIdx)

		out := cfg.Virtualizer(cfg.DefaultInlineDepth)(col)
		inlined := out.EntryCFG()

		// Inlining should have added the callee's body block to the
		// caller's clone, and the old SynthBlock is neutralized to
		// KindExit and left unreachable rather than removed (indices stay
		// stable).
		Expect(inlined.NumBlocks()).To(BeNumerically(">", caller.NumBlocks()))
		Expect(len(inlined.Block(synth).Preds())).To(Equal(0))
	})
})

var _ = Describe("LoopUnroller", func() {
	It("peels the first iteration into a duplicated body", func() {
		g := buildLoop()
		col := cfg.NewCollection()
		col.Add(g)

		before := g.NumBlocks()
		cfg.LoopUnroller(col)

		Expect(g.NumBlocks()).To(BeNumerically(">", before))
	})
})

var _ = Describe("ConditionalRestructurer", func() {
	It("leaves a block with no guarded instructions untouched", func() {
		g := buildDiamond()
		col := cfg.NewCollection()
		col.Add(g)

		before := g.NumBlocks()
		cfg.ConditionalRestructurer(col)

		Expect(g.NumBlocks()).To(Equal(before))
	})

	It("splits a block with guarded instructions into two variants", func() {
		g := cfg.NewCFG("guarded", 0x7000)
		entry := g.AddBlock(&cfg.Block{Kind: cfg.KindEntry})
		blk := g.AddBlock(&cfg.Block{
			Kind:         cfg.KindBasic,
			Insts:        append(oneInst(0x7000), oneInst(0x7004)...),
			GuardedInsts: []int{1},
		})
		exit := g.AddBlock(&cfg.Block{Kind: cfg.KindExit})
		g.MarkEntryExit(entry, exit)
		g.AddEdge(entry, blk, cfg.EdgeTaken)
		g.AddEdge(blk, exit, cfg.EdgeTaken)

		col := cfg.NewCollection()
		col.Add(g)

		before := g.NumBlocks()
		cfg.ConditionalRestructurer(col)

		Expect(g.NumBlocks()).To(Equal(before + 2))
	})
})
