// Package cache implements the MUST/MAY/PERSISTENCE abstract-cache domains
// (spec.md §4.3), one row at a time, as hai.Domain[D] policies so the
// existing half-AI engine (package hai) solves them unmodified. Grounded on
// Ferdinand's LRU-stack-distance cache analysis as described by
// original_source's cache-analysis headers referenced from
// include/otawa/branch/BranchProblem.h (the MUST/MAY/PERSISTENCE triple
// OTAWA shares between its instruction-cache and branch-history analyses;
// package branch reuses this package's inject/Ages machinery for BHT rows
// of associativity 1).
//
// A "row" here is one cache set's conflict set: the n line-blocks that can
// map into it, tracked as a dense index 0..n rather than by address — the
// caller (package driver, eventually) is responsible for assigning each
// line-block the row and index it maps to under a concrete CacheConfig.
package cache
