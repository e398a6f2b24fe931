// Package event turns a cache/branch categorization into the exegraph.Event
// values the execution-graph solver consumes (spec.md §4.5). StandardEventBuilder
// emits one event per fetch, data, or branch access it is handed (the walk
// over a block's accesses is driver.BuildBlockTiming's), costed from a hardware.InstructionLatencies table and the
// relevant hardware.CacheConfig; category->occurrence mapping follows spec.md
// §4.3's AlwaysHit/AlwaysMiss/FirstMiss/NotClassified vocabulary directly.
// Grounded on original_source/include/otawa/etime/StandardEventBuilder.h and
// src/etime/StandardEventBuilder.cpp.
package event
