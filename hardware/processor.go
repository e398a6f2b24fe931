package hardware

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/sarchlab/owcet/exegraph"
)

// Stage is one pipeline stage of a Processor description, loaded from XML.
// Grounded on the teacher's timing/pipeline stage registers (FetchStage,
// DecodeStage, ExecuteStage, MemoryStage, WritebackStage), generalized to an
// arbitrary ordered stage list per spec.md §6's hardware-description
// contract.
type Stage struct {
	XMLName xml.Name `xml:"stage"`
	Name    string   `xml:"name,attr"`
	Width   int      `xml:"width,attr"`
	Latency uint64   `xml:"latency,attr"`
}

// CacheConfig describes one level of the cache hierarchy, loaded from XML.
// Size/Associativity/BlockSize give the line size and set count
// (Size/(Associativity*BlockSize), see Sets) that package driver partitions
// cache lines by before running package cache's MUST/MAY/PERSISTENCE
// domains once per set; HitLatency/MissLatency feed package event's fetch/data-access cost
// computation.
type CacheConfig struct {
	XMLName       xml.Name `xml:"cache"`
	Level         string   `xml:"level,attr"`
	Size          int      `xml:"size,attr"`
	Associativity int      `xml:"associativity,attr"`
	BlockSize     int      `xml:"blockSize,attr"`
	HitLatency    uint64   `xml:"hitLatency,attr"`
	MissLatency   uint64   `xml:"missLatency,attr"`
}

// Sets returns the number of cache sets this configuration describes. Each
// set gets its own cache.Must/cache.May/cache.Persistence analysis, whose N
// is the number of distinct lines mapped to that set.
func (c CacheConfig) Sets() int {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return 0
	}
	return c.Size / (c.Associativity * c.BlockSize)
}

// Memory describes the backing memory's access latency, loaded from XML.
type Memory struct {
	XMLName xml.Name `xml:"memory"`
	Latency uint64   `xml:"latency,attr"`
}

// Processor is the full target-architecture description (spec.md §6):
// an ordered pipeline, a cache hierarchy, and backing memory timing.
type Processor struct {
	XMLName xml.Name      `xml:"processor"`
	Name    string        `xml:"name,attr"`
	Stages  []Stage       `xml:"pipeline>stage"`
	Caches  []CacheConfig `xml:"caches>cache"`
	Memory  Memory        `xml:"memory"`
}

// Pipeline converts the described stages into exegraph's builder input, in
// program order.
func (p *Processor) Pipeline() []exegraph.Stage {
	stages := make([]exegraph.Stage, len(p.Stages))
	for i, s := range p.Stages {
		stages[i] = exegraph.Stage{Name: s.Name, Width: s.Width, Latency: s.Latency}
	}
	return stages
}

// Cache returns the named cache level (e.g. "L1I", "L1D"), or false if the
// processor description doesn't carry one.
func (p *Processor) Cache(level string) (CacheConfig, bool) {
	for _, c := range p.Caches {
		if c.Level == level {
			return c, true
		}
	}
	return CacheConfig{}, false
}

// LoadProcessor reads a Processor description from an XML file.
func LoadProcessor(path string) (*Processor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load processor description: %w", err)
	}
	var p Processor
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse processor description %s: %w", path, err)
	}
	return &p, nil
}

// LoadCacheConfig reads a standalone CacheConfig from an XML file (used when
// a cache level is supplied independently of a full Processor description).
func LoadCacheConfig(path string) (*CacheConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load cache config: %w", err)
	}
	var c CacheConfig
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse cache config %s: %w", path, err)
	}
	return &c, nil
}

// LoadMemory reads a standalone Memory description from an XML file.
func LoadMemory(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load memory description: %w", err)
	}
	var m Memory
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse memory description %s: %w", path, err)
	}
	return &m, nil
}

// DefaultProcessor returns the in-order scalar 5-stage pipeline used by
// spec.md §8's worked examples, with no cache and a flat memory latency of
// 1 cycle — matching scenario 1 ("Expected WCET: 3 + 4 = 7 cycles").
func DefaultProcessor() *Processor {
	return &Processor{
		Name: "scalar-5-stage",
		Stages: []Stage{
			{Name: "fetch", Width: 1, Latency: 1},
			{Name: "decode", Width: 1, Latency: 1},
			{Name: "execute", Width: 1, Latency: 1},
			{Name: "mem", Width: 1, Latency: 1},
			{Name: "writeback", Width: 1, Latency: 1},
		},
		Memory: Memory{Latency: 1},
	}
}
