// Package prog provides the program model consumed by CFG construction and
// every downstream analysis: an immutable, address-indexed instruction
// table (Process) built from a loader.Program and decoded with insts.Decoder
// (spec §3 "Program model").
package prog

import "github.com/sarchlab/owcet/insts"

// Kind is a bitset classifying an instruction the way every CFG-building and
// timing analysis needs to: spec §3 lists
// {control, call, return, memory-load, memory-store, conditional, multi,
// unknown, bundle-end}.
type Kind uint16

const (
	// KindControl marks any instruction that can redirect control flow
	// (branches, calls, returns).
	KindControl Kind = 1 << iota
	// KindCall marks a call instruction (BL, BLR).
	KindCall
	// KindReturn marks a return instruction (RET).
	KindReturn
	// KindMemLoad marks a memory-load instruction.
	KindMemLoad
	// KindMemStore marks a memory-store instruction.
	KindMemStore
	// KindConditional marks a conditionally-executed or conditionally-taken
	// instruction (B.cond; a guarded instruction once the ISA supports
	// predication).
	KindConditional
	// KindMulti marks an instruction that accesses memory more than once
	// (e.g. a load/store pair).
	KindMulti
	// KindUnknown marks an instruction the decoder could not classify.
	KindUnknown
	// KindBundleEnd marks the last instruction of a fetch bundle/cache line
	// boundary; unused by this ISA's fixed 4-byte encoding but kept for
	// spec-completeness (VLIW targets would set it per bundle).
	KindBundleEnd
)

// Has reports whether k contains every bit in other.
func (k Kind) Has(other Kind) bool { return k&other == other }

// Instruction is an immutable, address-stamped decoded instruction. Its
// lifetime is the owning Process's lifetime (spec §3).
type Instruction struct {
	addr uint64
	size uint64
	kind Kind
	dec  *insts.Instruction
}

// NewInstruction builds an Instruction from a decoded word, classifying its
// Kind the same way Process.InstAt does. Exported for tests and for
// frontends that decode instructions outside of a Process (e.g. feeding a
// synthetic CFG directly into the cfg package).
func NewInstruction(addr, size uint64, dec *insts.Instruction) *Instruction {
	return &Instruction{addr: addr, size: size, kind: classify(dec), dec: dec}
}

// Addr returns the instruction's address.
func (i *Instruction) Addr() uint64 { return i.addr }

// Size returns the instruction's size in bytes.
func (i *Instruction) Size() uint64 { return i.size }

// Kind returns the instruction's classification bitset.
func (i *Instruction) Kind() Kind { return i.kind }

// Next returns the address immediately following this instruction.
func (i *Instruction) Next() uint64 { return i.addr + i.size }

// Decoded returns the underlying decoded ARM64 instruction. A word the
// decoder does not recognize still yields one, with Op insts.OpUnknown
// (KindUnknown); it is nil only for an Instruction built by NewInstruction
// with a nil dec.
func (i *Instruction) Decoded() *insts.Instruction { return i.dec }

// Target returns the statically-known branch/call target, and whether one
// exists. Register-indirect branches (BR, BLR, RET) have no statically
// known target.
func (i *Instruction) Target() (uint64, bool) {
	if i.dec == nil || !i.kind.Has(KindControl) {
		return 0, false
	}
	switch i.dec.Op {
	case insts.OpB, insts.OpBL:
		return uint64(int64(i.addr) + i.dec.BranchOffset), true
	case insts.OpBCond:
		return uint64(int64(i.addr) + i.dec.BranchOffset), true
	default:
		return 0, false
	}
}

// ReadRegs returns the general-purpose register numbers this instruction
// reads, best-effort from the decoded operand fields. Returns (nil, false)
// if the loader/decoder combination does not support register-usage
// resolution for this instruction (spec §6, FeatureRegisterUsage).
func (i *Instruction) ReadRegs() ([]uint8, bool) {
	if i.dec == nil {
		return nil, false
	}
	var regs []uint8
	switch i.dec.Format {
	case insts.FormatDPReg:
		regs = append(regs, i.dec.Rn, i.dec.Rm)
	case insts.FormatDPImm, insts.FormatLoadStore, insts.FormatLoadStorePair:
		regs = append(regs, i.dec.Rn)
	}
	return regs, true
}

// WriteRegs returns the general-purpose register numbers this instruction
// writes, best-effort.
func (i *Instruction) WriteRegs() ([]uint8, bool) {
	if i.dec == nil {
		return nil, false
	}
	switch i.dec.Format {
	case insts.FormatDPReg, insts.FormatDPImm, insts.FormatMoveWide, insts.FormatPCRel:
		return []uint8{i.dec.Rd}, true
	case insts.FormatLoadStore, insts.FormatLoadStorePair:
		if i.kind.Has(KindMemLoad) {
			return []uint8{i.dec.Rd}, true
		}
	}
	return nil, true
}

func classify(dec *insts.Instruction) Kind {
	if dec == nil || dec.Op == insts.OpUnknown {
		return KindUnknown
	}
	var k Kind
	switch dec.Op {
	case insts.OpB, insts.OpBL, insts.OpBCond, insts.OpBR, insts.OpBLR, insts.OpRET:
		k |= KindControl
	}
	switch dec.Op {
	case insts.OpBL, insts.OpBLR:
		k |= KindCall
	case insts.OpRET:
		k |= KindReturn
	case insts.OpBCond:
		k |= KindConditional
	}
	switch dec.Op {
	case insts.OpLDR, insts.OpLDRB, insts.OpLDRSB, insts.OpLDRH, insts.OpLDRSH,
		insts.OpLDRLit, insts.OpLDRQ:
		k |= KindMemLoad
	case insts.OpSTR, insts.OpSTRB, insts.OpSTRH, insts.OpSTRQ:
		k |= KindMemStore
	case insts.OpLDP:
		k |= KindMemLoad | KindMulti
	case insts.OpSTP:
		k |= KindMemStore | KindMulti
	}
	return k
}
