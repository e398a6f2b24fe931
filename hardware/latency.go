package hardware

import (
	"encoding/json"
	"fmt"
	"os"
)

// InstructionLatencies holds per-instruction-class execution latencies, used
// by package event to cost non-memory events. Adapted from the teacher's
// timing/latency.TimingConfig — same JSON shape and default values, renamed
// to this repo's instruction classes and with the cache-level fields removed
// (cache timing now lives in CacheConfig, loaded from the processor
// description instead of this table).
type InstructionLatencies struct {
	// ALU is the execution latency for basic ALU operations
	// (ADD, SUB, AND, OR, XOR). Default: 1 cycle.
	ALU uint64 `json:"alu_latency"`

	// Branch is the base execution latency for branch instructions,
	// excluding any misprediction penalty. Default: 1 cycle.
	Branch uint64 `json:"branch_latency"`

	// BranchMispredictPenalty is the additional cycles lost on a branch
	// misprediction. Default: 12 cycles.
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`

	// Multiply is the latency for integer multiply operations. Default: 3.
	Multiply uint64 `json:"multiply_latency"`

	// DivideMin/DivideMax bound the latency of integer divide operations.
	DivideMin uint64 `json:"divide_latency_min"`
	DivideMax uint64 `json:"divide_latency_max"`

	// Syscall is the latency for system call instructions. Default: 1.
	Syscall uint64 `json:"syscall_latency"`
}

// DefaultInstructionLatencies returns the M2-derived defaults the teacher
// shipped for timing/latency.DefaultTimingConfig, minus the cache-level
// fields (now carried by CacheConfig).
func DefaultInstructionLatencies() *InstructionLatencies {
	return &InstructionLatencies{
		ALU:                     1,
		Branch:                  1,
		BranchMispredictPenalty: 12,
		Multiply:                3,
		DivideMin:               10,
		DivideMax:               15,
		Syscall:                 1,
	}
}

// LoadInstructionLatencies loads an InstructionLatencies table from a JSON
// file, starting from the defaults so a partial document only overrides the
// fields it mentions.
func LoadInstructionLatencies(path string) (*InstructionLatencies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruction latency config: %w", err)
	}
	cfg := DefaultInstructionLatencies()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse instruction latency config: %w", err)
	}
	return cfg, nil
}

// Validate checks that every latency field is usable (ALU/Branch/Syscall
// strictly positive, DivideMin <= DivideMax) — mirrors the teacher's
// TimingConfig.Validate.
func (c *InstructionLatencies) Validate() error {
	if c.ALU == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.Branch == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.Syscall == 0 {
		return fmt.Errorf("syscall_latency must be > 0")
	}
	if c.DivideMin > c.DivideMax {
		return fmt.Errorf("divide_latency_min must be <= divide_latency_max")
	}
	return nil
}
