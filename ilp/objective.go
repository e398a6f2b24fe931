package ilp

// AddBlockTime adds one block's t(b)·x_b term to the maximize objective
// (spec.md §4.6).
func AddBlockTime(s *System, blockVar *Var, time uint64) {
	s.AddObjectiveTerm(float64(time), blockVar)
}

// AddEventPenalty adds one event's penalty(e)·aux(e) term to the maximize
// objective (spec.md §4.6).
func AddEventPenalty(s *System, aux *Var, penalty uint64) {
	s.AddObjectiveTerm(float64(penalty), aux)
}
