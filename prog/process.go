package prog

import (
	"fmt"
	"sort"

	"github.com/sarchlab/owcet/insts"
	"github.com/sarchlab/owcet/loader"
)

// Segment mirrors loader.Segment but is re-exported here so callers of
// Process never need to import loader directly.
type Segment struct {
	VirtAddr uint64
	Size     uint64
	Flags    loader.SegmentFlags
}

// Process owns a task's memory image and instruction table; it offers typed
// memory reads and address-to-instruction lookup (spec §3). One Process per
// task; its instructions' lifetime is the Process's lifetime.
type Process struct {
	memory     *Memory
	entryPoint uint64
	segments   []Segment
	symbols    []loader.Symbol
	decoder    *insts.Decoder
	cache      map[uint64]*Instruction
}

// New builds a Process from an already-loaded program image.
func New(p *loader.Program) *Process {
	proc := &Process{
		memory:     NewMemory(),
		entryPoint: p.EntryPoint,
		decoder:    insts.NewDecoder(),
		cache:      make(map[uint64]*Instruction),
		symbols:    p.Symbols,
	}
	for _, seg := range p.Segments {
		proc.memory.WriteBytes(seg.VirtAddr, seg.Data)
		proc.segments = append(proc.segments, Segment{
			VirtAddr: seg.VirtAddr,
			Size:     seg.MemSize,
			Flags:    seg.Flags,
		})
	}
	return proc
}

// EntryPoint returns the task's entry address.
func (p *Process) EntryPoint() uint64 { return p.entryPoint }

// Segments returns the loaded segments.
func (p *Process) Segments() []Segment { return p.segments }

// Memory exposes the typed memory-read surface spec §3 requires.
func (p *Process) Memory() *Memory { return p.memory }

// InstAt decodes (once, then caches) and returns the instruction whose
// first byte is addr. Returns an error if addr is not the start of a valid
// 4-byte-aligned fetch.
func (p *Process) InstAt(addr uint64) (*Instruction, error) {
	if addr%4 != 0 {
		return nil, fmt.Errorf("prog: unaligned instruction address 0x%x", addr)
	}
	if inst, ok := p.cache[addr]; ok {
		return inst, nil
	}
	word := p.memory.Read32(addr)
	dec := p.decoder.Decode(word)
	inst := &Instruction{addr: addr, size: 4, kind: classify(dec), dec: dec}
	p.cache[addr] = inst
	return inst, nil
}

// SymbolByName resolves a function symbol's entry address by name (spec §6
// "symbol resolution by name/address"; used by the WCET driver to turn a
// CLI FUNCTION argument into a task entry).
func (p *Process) SymbolByName(name string) (loader.Symbol, bool) {
	for _, s := range p.symbols {
		if s.Name == name {
			return s, true
		}
	}
	return loader.Symbol{}, false
}

// SymbolAt resolves the symbol covering addr, if any.
func (p *Process) SymbolAt(addr uint64) (loader.Symbol, bool) {
	idx := sort.Search(len(p.symbols), func(i int) bool {
		return p.symbols[i].Addr > addr
	})
	if idx == 0 {
		return loader.Symbol{}, false
	}
	s := p.symbols[idx-1]
	if s.Size != 0 && addr >= s.Addr+s.Size {
		return loader.Symbol{}, false
	}
	return s, true
}
