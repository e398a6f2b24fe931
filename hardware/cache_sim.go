package hardware

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheSim is a concrete LRU cache simulator, adapted from the teacher's
// timing/cache.Cache: same Akita-backed directory/victim-finder machinery,
// generalized from a fixed "performance/efficiency core" default set to any
// CacheConfig loaded from a Processor description, and re-purposed here as
// the "ground truth" model the abstract MUST/MAY/PERSISTENCE domains
// (package cache) must soundly over/under-approximate — driven directly by
// addresses rather than by a dynamic memory trace, since this repo
// classifies static basic blocks, not a running program's memory image.
type CacheSim struct {
	config CacheConfig

	directory *akitacache.DirectoryImpl
	stats     CacheStats
}

// CacheStats mirrors the teacher's timing/cache.Statistics, minus the
// writeback/store-forwarding bookkeeping this repo's static analysis has no
// use for (no dirty-line writeback simulation here — purge-event cost is
// computed directly in package event from CacheConfig, not simulated).
type CacheStats struct {
	Reads  uint64
	Hits   uint64
	Misses uint64
}

// NewCacheSim builds a cache simulator for the given configuration.
func NewCacheSim(config CacheConfig) *CacheSim {
	sets := config.Sets()
	if sets <= 0 {
		sets = 1
	}
	return &CacheSim{
		config: config,
		directory: akitacache.NewDirectory(
			sets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Access looks up addr, updating LRU state, and returns whether it hit along
// with the latency that access costs.
func (c *CacheSim) Access(addr uint64) (hit bool, latency uint64) {
	c.stats.Reads++
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return true, c.config.HitLatency
	}

	c.stats.Misses++
	victim := c.directory.FindVictim(blockAddr)
	if victim != nil {
		victim.Tag = blockAddr
		victim.IsValid = true
		c.directory.Visit(victim)
	}
	return false, c.config.MissLatency
}

func (c *CacheSim) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Stats returns the simulator's running access statistics.
func (c *CacheSim) Stats() CacheStats { return c.stats }

// Reset clears all cache state and statistics.
func (c *CacheSim) Reset() {
	c.directory.Reset()
	c.stats = CacheStats{}
}
