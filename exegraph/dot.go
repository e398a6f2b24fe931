package exegraph

import (
	"fmt"
	"io"
)

// edgeKindLabel names an EdgeKind for dot output.
func edgeKindLabel(k EdgeKind) string {
	switch k {
	case EdgeProgress:
		return "progress"
	case EdgePipeline:
		return "pipeline"
	case EdgeDataDep:
		return "data-dep"
	case EdgeContend:
		return "contend"
	case EdgeEvent:
		return "event"
	default:
		return ""
	}
}

// WriteDOT renders g as Graphviz dot source, one node per (instruction,
// stage) pair grouped into a rank per stage, for the --dump-graph
// diagnostic SPEC_FULL.md adds to `owcet` alongside cfg.WriteDOT.
func WriteDOT(w io.Writer, g *Graph) error {
	bw := &errWriter{w: w}
	bw.printf("digraph exegraph {\n  rankdir=LR;\n  node [shape=box, fontname=\"monospace\"];\n")
	for _, n := range g.Nodes {
		bw.printf("  n%d [label=%q];\n", n.Index, fmt.Sprintf("i%d:%s (%d)", n.Inst, n.Stage, n.Latency))
	}
	for _, e := range g.Edges {
		bw.printf("  n%d -> n%d [label=%q];\n", e.From, e.To, edgeKindLabel(e.Kind))
	}
	bw.printf("}\n")
	return bw.err
}

// errWriter lets dot-printing code ignore per-call errors and check once at
// the end, the way cfg.WriteDOT does.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
