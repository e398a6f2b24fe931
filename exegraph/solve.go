package exegraph

// Times is a solved earliest-finish-time table, one entry per Node.Index.
type Times []uint64

// Solve computes the earliest finish time of every node by longest path
// over the DAG (spec.md §4.4), visiting nodes in index order — Build
// always emits edges strictly forward in that order (later stage, later
// instruction, or an event edge added after construction pointing
// forward), so a single forward pass is a valid topological visit. Ties
// are broken deterministically by that same index order.
func Solve(g *Graph, latency func(*Edge) uint64) Times {
	finish := make(Times, len(g.Nodes))
	// start accumulates the latest finish-plus-latency over every edge
	// feeding into n.
	for i, n := range g.Nodes {
		start := uint64(0)
		for _, e := range g.Edges {
			if e.To != i {
				continue
			}
			candidate := finish[e.From] + latency(e)
			if candidate > start {
				start = candidate
			}
		}
		finish[i] = start + n.Latency
	}
	return finish
}

// defaultLatency uses the edge's own recorded Latency.
func defaultLatency(e *Edge) uint64 { return e.Latency }

// Time computes the delta time of spec.md §4.4: the finish time of the
// last node of the timed block minus the finish time of the last node of
// the last prefix block (0 if there is no prefix, i.e. lastPrefixNode < 0).
func Time(times Times, lastBlockNode, lastPrefixNode int) uint64 {
	t := times[lastBlockNode]
	if lastPrefixNode < 0 {
		return t
	}
	if times[lastPrefixNode] > t {
		return 0
	}
	return t - times[lastPrefixNode]
}
