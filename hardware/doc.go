// Package hardware describes the target processor: pipeline stages, cache
// hierarchy, memory timing, and branch prediction. Processor/CacheConfig/
// Memory are the XML-loaded external contract (spec.md §6); CacheSim and
// BranchSim are concrete "ground truth" simulators, adapted from the
// teacher's timing/cache and timing/pipeline packages, that the abstract
// domains in cache and branch must soundly over/under-approximate.
package hardware
