package exegraph

// Stage describes one pipeline stage in program order (spec.md §4.4):
// Width concurrently-in-flight instructions (superscalar width at that
// stage), Latency cycles to process one instruction once started.
// Grounded on the teacher's timing/pipeline stage registers (FetchStage,
// DecodeStage, ExecuteStage, ...), generalized from a fixed 5-stage
// in-order pipeline to an arbitrary named/widthed/latencied stage list so
// a hardware.Processor description (not yet built at teacher-copy time)
// can drive the same builder.
type Stage struct {
	Name    string
	Width   int
	Latency uint64
}

// InstInfo is the per-instruction input the builder needs: which registers
// it reads/writes (for data-dependency edges) and, for a non-pipelined
// functional unit, a ContendGroup shared with any other instruction that
// must serialize behind it (empty string: no contention).
type InstInfo struct {
	Reads, Writes []int
	ContendGroup  string
}

// Build constructs the execution graph for a straight-line instruction
// sequence (0 or more prefix blocks followed by the timed block,
// concatenated in program order by the caller) over the given stage list.
// One Node per (instruction, stage) pair is created, in stage order.
func Build(stages []Stage, insts []InstInfo) *Graph {
	g := &Graph{}
	// nodeAt[instIdx][stageIdx] = node index
	nodeAt := make([][]int, len(insts))
	for i := range insts {
		nodeAt[i] = make([]int, len(stages))
		for s, stage := range stages {
			idx := g.addNode(&Node{Stage: stage.Name, Inst: i, Latency: stage.Latency})
			nodeAt[i][s] = idx
		}
	}

	for s, stage := range stages {
		for i := range insts {
			// In-order progression inside the stage: instruction i must
			// finish before instruction i+width starts at this stage.
			if stage.Width > 0 && i+stage.Width < len(insts) {
				g.addEdge(nodeAt[i][s], nodeAt[i+stage.Width][s], EdgeProgress, 0)
			}
			// Pipelining: this instruction's node at the next stage can't
			// start before this stage's node for the same instruction
			// finishes.
			if s+1 < len(stages) {
				g.addEdge(nodeAt[i][s], nodeAt[i][s+1], EdgePipeline, 0)
			}
		}
	}

	lastWriter := make(map[int]int) // register -> instruction index that last wrote it
	for i, info := range insts {
		for _, r := range info.Reads {
			if w, ok := lastWriter[r]; ok {
				// Reader's execute stage (located by name via
				// executeStageIndex below) can't start before the
				// writer's last stage finishes.
				writeback := len(stages) - 1
				g.addEdge(nodeAt[w][writeback], nodeAt[i][executeStageIndex(stages)], EdgeDataDep, 0)
			}
		}
		for _, r := range info.Writes {
			lastWriter[r] = i
		}
	}

	lastContender := make(map[string]int)
	for i, info := range insts {
		if info.ContendGroup == "" {
			continue
		}
		if prev, ok := lastContender[info.ContendGroup]; ok {
			g.addEdge(nodeAt[prev][executeStageIndex(stages)], nodeAt[i][executeStageIndex(stages)], EdgeContend, 0)
		}
		lastContender[info.ContendGroup] = i
	}

	return g
}

// executeStageIndex returns the index of the stage named "execute", or the
// middle stage if none is so named — this repo's ARM64 subset's pipeline
// always names one "execute" (see hardware.DefaultProcessor), so the
// fallback only matters for a caller-supplied stage list that doesn't.
func executeStageIndex(stages []Stage) int {
	for i, s := range stages {
		if s.Name == "execute" {
			return i
		}
	}
	return len(stages) / 2
}
