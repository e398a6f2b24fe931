package hardware

// BranchSimConfig mirrors the teacher's timing/pipeline.BranchPredictorConfig:
// BHTSize/BTBSize must be powers of two.
type BranchSimConfig struct {
	BHTSize uint32
	BTBSize uint32
}

// DefaultBranchSimConfig returns the teacher's default sizing.
func DefaultBranchSimConfig() BranchSimConfig {
	return BranchSimConfig{BHTSize: 1024, BTBSize: 256}
}

// BranchSimStats mirrors the teacher's BranchPredictorStats.
type BranchSimStats struct {
	Predictions    uint64
	Correct        uint64
	Mispredictions uint64
}

// BranchSim is a concrete 2-bit saturating-counter (bimodal) BHT + BTB
// predictor, adapted from the teacher's timing/pipeline.BranchPredictor —
// same indexing and saturating-counter update rule — kept here as the
// "ground truth" comparison model for package branch's abstract MUST/MAY/
// PERSISTENCE domains (DESIGN.md: branch's domains classify statically
// whether a branch's direction is knowable without ever running a
// predictor; this simulator is what they're soundly approximating).
type BranchSim struct {
	bht []uint8
	btb []btbEntry

	bhtSize uint32
	btbSize uint32

	stats BranchSimStats
}

type btbEntry struct {
	pc     uint64
	target uint64
	valid  bool
}

// NewBranchSim creates a predictor with the given configuration, BHT
// initialized to weakly-taken (2) as the teacher's does.
func NewBranchSim(config BranchSimConfig) *BranchSim {
	bhtSize := config.BHTSize
	if bhtSize == 0 {
		bhtSize = 1024
	}
	btbSize := config.BTBSize
	if btbSize == 0 {
		btbSize = 256
	}

	bp := &BranchSim{
		bht:     make([]uint8, bhtSize),
		btb:     make([]btbEntry, btbSize),
		bhtSize: bhtSize,
		btbSize: btbSize,
	}
	for i := range bp.bht {
		bp.bht[i] = 2
	}
	return bp
}

func (bp *BranchSim) bhtIndex(pc uint64) uint32 {
	return uint32((pc >> 2) & uint64(bp.bhtSize-1))
}

func (bp *BranchSim) btbIndex(pc uint64) uint32 {
	return uint32((pc >> 2) & uint64(bp.btbSize-1))
}

// Predict returns the BHT's taken/not-taken prediction and, if the BTB holds
// a matching entry, the predicted target.
func (bp *BranchSim) Predict(pc uint64) (taken bool, target uint64, targetKnown bool) {
	counter := bp.bht[bp.bhtIndex(pc)]
	taken = counter >= 2

	idx := bp.btbIndex(pc)
	if bp.btb[idx].valid && bp.btb[idx].pc == pc {
		target, targetKnown = bp.btb[idx].target, true
	}
	bp.stats.Predictions++
	return taken, target, targetKnown
}

// Update feeds back the actual outcome of a branch, advancing the 2-bit
// saturating counter and refreshing the BTB on a taken branch.
func (bp *BranchSim) Update(pc uint64, taken bool, target uint64) {
	idx := bp.bhtIndex(pc)
	counter := bp.bht[idx]

	predicted := counter >= 2
	if predicted == taken {
		bp.stats.Correct++
	} else {
		bp.stats.Mispredictions++
	}

	switch {
	case taken && counter < 3:
		bp.bht[idx] = counter + 1
	case !taken && counter > 0:
		bp.bht[idx] = counter - 1
	}

	if taken {
		bp.btb[bp.btbIndex(pc)] = btbEntry{pc: pc, target: target, valid: true}
	}
}

// Stats returns the predictor's running statistics.
func (bp *BranchSim) Stats() BranchSimStats { return bp.stats }
