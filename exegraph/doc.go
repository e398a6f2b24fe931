// Package exegraph implements the execution-graph timing analysis (spec.md
// §4.4): per-instruction, per-pipeline-stage ExeNodes connected by
// progression, pipelining, data-dependency, and FU-contention ExeEdges,
// solved by longest path to bound a basic block's worst-case time under a
// given event configuration. Grounded on
// original_source/include/otawa/exegraph/ExecutionGraph.h and
// include/otawa/parexegraph/GraphBBTime.h for the node/edge shape, and on
// src/prog/ExeGraphBBTime.cpp for the longest-path solving loop; stage
// names/widths/latencies mirror the teacher's timing/pipeline stage
// registers (see DESIGN.md) without reusing its cycle-stepping simulator —
// the execution graph is a DAG solved once per configuration, not stepped
// cycle by cycle.
package exegraph
