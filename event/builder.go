package event

import (
	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/exegraph"
	"github.com/sarchlab/owcet/hardware"
)

// FetchAccess is one instruction fetch, at graph node Node. When HasCache is
// false (no instruction cache modeled) every fetch costs the flat memory
// latency and Class is ignored.
type FetchAccess struct {
	Node     int
	HasCache bool
	Class    cache.Classification
	Weight   int
}

// DataAccess is one load/store, at graph node Node. WriteBack marks a
// write-back data cache, which costs a purge event on dirty-line eviction in
// addition to the access itself (spec.md §4.5).
type DataAccess struct {
	Node      int
	HasCache  bool
	WriteBack bool
	IsWrite   bool
	Class     cache.Classification
	Weight    int
}

// BranchAccess is one conditional control-flow edge, at graph node Node.
type BranchAccess struct {
	Node   int
	Class  branch.Classification
	Weight int
}

// StandardEventBuilder emits one exegraph.Event per access, costed from the
// processor's instruction-latency table and cache configuration. Grounded on
// original_source/src/etime/StandardEventBuilder.cpp's walk over a block's
// fetch/data/branch accesses.
type StandardEventBuilder struct {
	Latencies *hardware.InstructionLatencies
	ICache    *hardware.CacheConfig
	DCache    *hardware.CacheConfig
	Memory    hardware.Memory
}

// Fetch builds the event for one instruction fetch (spec.md §4.5: "cost is
// the memory latency from the memory model" with no cache, or the miss
// latency minus the hit latency when a cache is present).
func (b StandardEventBuilder) Fetch(a FetchAccess) exegraph.Event {
	if !a.HasCache || b.ICache == nil {
		return exegraph.Event{
			Node:   a.Node,
			Related: -1,
			Cost:   b.Memory.Latency,
			Occurs: exegraph.Always,
			Weight: a.Weight,
			Label:  "fetch",
		}
	}
	return exegraph.Event{
		Node:    a.Node,
		Related: -1,
		Cost:    b.ICache.MissLatency - b.ICache.HitLatency,
		Occurs:  CacheOccurrence(a.Class.Category),
		Weight:  a.Weight,
		Label:   "fetch-miss",
	}
}

// DataAccess builds the event for one load/store, plus an optional purge
// event (spec.md §4.5: "for write-back caches, an additional purge event
// accounts for dirty-line eviction"). The purge event is nil when the cache
// isn't write-back, no cache is modeled, or the access is a read.
func (b StandardEventBuilder) DataAccess(a DataAccess) (access exegraph.Event, purge *exegraph.Event) {
	if !a.HasCache || b.DCache == nil {
		return exegraph.Event{
			Node:    a.Node,
			Related: -1,
			Cost:    b.Memory.Latency,
			Occurs:  exegraph.Always,
			Weight:  a.Weight,
			Label:   "data-access",
		}, nil
	}

	access = exegraph.Event{
		Node:    a.Node,
		Related: -1,
		Cost:    b.DCache.MissLatency - b.DCache.HitLatency,
		Occurs:  CacheOccurrence(a.Class.Category),
		Weight:  a.Weight,
		Label:   "data-miss",
	}

	if a.WriteBack && a.IsWrite {
		p := exegraph.Event{
			Node:    a.Node,
			Related: -1,
			Cost:    b.DCache.MissLatency,
			Occurs:  CacheOccurrence(a.Class.Category),
			Weight:  a.Weight,
			Label:   "purge",
		}
		purge = &p
	}
	return access, purge
}

// BranchPrediction builds the event for one conditional branch's
// misprediction cost (spec.md §4.5: "cost is the BHT misprediction penalty").
func (b StandardEventBuilder) BranchPrediction(a BranchAccess) exegraph.Event {
	return exegraph.Event{
		Node:    a.Node,
		Related: -1,
		Cost:    b.Latencies.BranchMispredictPenalty,
		Occurs:  BranchOccurrence(a.Class.Category),
		Weight:  a.Weight,
		Label:   "branch-mispredict",
	}
}
