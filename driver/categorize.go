package driver

import (
	"github.com/sarchlab/owcet/branch"
	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/hai"
	"github.com/sarchlab/owcet/hardware"
	"github.com/sarchlab/owcet/prog"
)

// row is one conflict set's tracked line/branch addresses, assigned stable
// local indices the way cache's row-local Access mapper expects (spec.md
// §4.3: a MUST/MAY/PERSISTENCE analysis runs per conflict set, not once
// globally).
type row struct {
	addrs []uint64
	index map[uint64]int
}

func (r *row) localIndex(addr uint64) (int, bool) {
	i, ok := r.index[addr]
	return i, ok
}

// partitionRows groups every address addrsOf yields, across the whole
// collection, into sets of size granule, keyed modulo numSets — the shared
// partitioning step behind both the I/D-cache row analysis and the BHT row
// analysis (spec.md §4.3 treats both as "the same three analyses run per
// row").
func partitionRows(col *cfg.Collection, granule uint64, numSets int, addrsOf func(*cfg.Block) []uint64) map[int]*row {
	if numSets <= 0 {
		numSets = 1
	}
	rows := make(map[int]*row)
	for _, g := range col.All() {
		for _, b := range g.Blocks() {
			for _, addr := range addrsOf(b) {
				line := addr / granule
				set := int(line % uint64(numSets))
				r, ok := rows[set]
				if !ok {
					r = &row{index: make(map[uint64]int)}
					rows[set] = r
				}
				if _, seen := r.index[line]; !seen {
					r.index[line] = len(r.addrs)
					r.addrs = append(r.addrs, line)
				}
			}
		}
	}
	return rows
}

func rowMapper(r *row, granule uint64, addrsOf func(*cfg.Block) []uint64) cache.MapperFunc {
	return func(b *cfg.Block) []int {
		var idxs []int
		for _, addr := range addrsOf(b) {
			if i, ok := r.localIndex(addr / granule); ok {
				idxs = append(idxs, i)
			}
		}
		return idxs
	}
}

func instructionAddrs(b *cfg.Block) []uint64 {
	addrs := make([]uint64, len(b.Insts))
	for i, inst := range b.Insts {
		addrs[i] = inst.Addr()
	}
	return addrs
}

func dataAddrs(b *cfg.Block) []uint64 {
	var addrs []uint64
	for _, inst := range b.Insts {
		if inst.Kind().Has(prog.KindMemLoad) || inst.Kind().Has(prog.KindMemStore) {
			addrs = append(addrs, inst.Addr())
		}
	}
	return addrs
}

func branchAddrs(b *cfg.Block) []uint64 {
	var addrs []uint64
	for _, inst := range b.Insts {
		if inst.Kind().Has(prog.KindConditional) {
			addrs = append(addrs, inst.Addr())
		}
	}
	return addrs
}

// rowSolution is one conflict set's solved MUST/MAY/PERSISTENCE state,
// kept alongside the domains themselves since Classify needs both.
type rowSolution struct {
	must    cache.Must
	may     cache.May
	persist cache.Persistence
	mustR   *hai.Result[cache.Ages]
	mayR    *hai.Result[cache.Ages]
	persR   *hai.Result[cache.Persist]
}

func solveRow(col *cfg.Collection, n, associativity int, access cache.Mapper) rowSolution {
	must := cache.Must{N: n, Associativity: associativity, Access: access}
	may := cache.May{N: n, Associativity: associativity, Access: access}
	persist := cache.Persistence{N: n, Associativity: associativity, Access: access}
	return rowSolution{
		must:    must,
		may:     may,
		persist: persist,
		mustR:   hai.NewEngine(col, must).Solve(must.Top()),
		mayR:    hai.NewEngine(col, may).Solve(may.Bottom()),
		persR:   hai.NewEngine(col, persist).Solve(cache.NewPersistState(n)),
	}
}

// AccessResult is one instruction's cache-line access, classified.
type AccessResult struct {
	CFG     cfg.CFGIndex
	Block   cfg.Index
	InstIdx int
	Class   cache.Classification
}

// AnalyzeCache runs the full per-row MUST/MAY/PERSISTENCE analysis for one
// cache level over every instruction fetch (kind=false) or load/store data
// access (kind=true) in the collection (spec.md §4.3). A data access is
// keyed by its instruction's own address, since this repo does no
// value-flow analysis to resolve the real runtime data address (spec.md
// Non-goals) — conservative in that every load/store is charged a
// classification, never silently dropped.
func AnalyzeCache(col *cfg.Collection, c hardware.CacheConfig, data bool) []AccessResult {
	addrsOf := instructionAddrs
	if data {
		addrsOf = dataAddrs
	}
	rows := partitionRows(col, uint64(c.BlockSize), c.Sets(), addrsOf)

	solved := make(map[int]rowSolution, len(rows))
	for set, r := range rows {
		solved[set] = solveRow(col, len(r.addrs), c.Associativity, rowMapper(r, uint64(c.BlockSize), addrsOf))
	}

	var out []AccessResult
	for ci, g := range col.All() {
		cfgIdx := cfg.CFGIndex(ci)
		for _, b := range g.Blocks() {
			for instIdx, inst := range b.Insts {
				if data && !inst.Kind().Has(prog.KindMemLoad) && !inst.Kind().Has(prog.KindMemStore) {
					continue
				}
				line := inst.Addr() / uint64(c.BlockSize)
				set := int(line % uint64(max(c.Sets(), 1)))
				r, ok := rows[set]
				if !ok {
					continue
				}
				localIdx, ok := r.localIndex(line)
				if !ok {
					continue
				}
				sv := solved[set]
				mustIn, okM := sv.mustR.BlockIn(cfgIdx, b.Index)
				mayIn, okY := sv.mayR.BlockIn(cfgIdx, b.Index)
				persIn, okP := sv.persR.BlockIn(cfgIdx, b.Index)
				if !okM || !okY || !okP {
					continue // dead block: no path reaches it
				}
				class := cache.Classify(sv.must, sv.may, sv.persist, mustIn, mayIn, persIn, localIdx)
				out = append(out, AccessResult{CFG: cfgIdx, Block: b.Index, InstIdx: instIdx, Class: class})
			}
		}
	}
	return out
}

// BranchResult is one conditional branch instruction's BHT classification.
type BranchResult struct {
	CFG     cfg.CFGIndex
	Block   cfg.Index
	InstIdx int
	Class   branch.Classification
}

// AnalyzeBranches runs the BHT-row MUST/MAY/PERSISTENCE analysis (package
// branch reuses package cache's domains with Associativity fixed at 1,
// spec.md §4.3) over every conditional branch in the collection, bypassing
// BHT reasoning entirely in favor of static.Direction where the caller
// supplied one (spec.md §8 scenario 4, this repo's static-wins
// resolution of spec.md §9's open question — see DESIGN.md).
func AnalyzeBranches(col *cfg.Collection, bhtSize uint32, static branch.StaticDirections) []BranchResult {
	rows := partitionRows(col, 4, int(bhtSize), branchAddrs)

	solved := make(map[int]rowSolution, len(rows))
	for set, r := range rows {
		must, may, persist := branch.Row(len(r.addrs), rowMapper(r, 4, branchAddrs))
		solved[set] = rowSolution{
			must: must, may: may, persist: persist,
			mustR: hai.NewEngine(col, must).Solve(must.Top()),
			mayR:  hai.NewEngine(col, may).Solve(may.Bottom()),
			persR: hai.NewEngine(col, persist).Solve(cache.NewPersistState(len(r.addrs))),
		}
	}

	var out []BranchResult
	for ci, g := range col.All() {
		cfgIdx := cfg.CFGIndex(ci)
		for _, b := range g.Blocks() {
			for instIdx, inst := range b.Insts {
				if !inst.Kind().Has(prog.KindConditional) {
					continue
				}
				addr := inst.Addr()
				line := addr / 4
				set := int(line % uint64(max(int(bhtSize), 1)))
				r, ok := rows[set]
				if !ok {
					continue
				}
				localIdx, ok := r.localIndex(line)
				if !ok {
					continue
				}
				sv := solved[set]
				mustIn, okM := sv.mustR.BlockIn(cfgIdx, b.Index)
				mayIn, okY := sv.mayR.BlockIn(cfgIdx, b.Index)
				persIn, okP := sv.persR.BlockIn(cfgIdx, b.Index)
				if !okM || !okY || !okP {
					continue
				}
				class := branch.Classify(static, cfgIdx, b.Index, sv.must, sv.may, sv.persist, mustIn, mayIn, persIn, localIdx)
				out = append(out, BranchResult{CFG: cfgIdx, Block: b.Index, InstIdx: instIdx, Class: class})
			}
		}
	}
	return out
}
