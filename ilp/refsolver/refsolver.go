// Package refsolver is a from-scratch branch-and-bound ILP solver used only
// by this repo's own tests (small instances): it is a stand-in for a
// production back-end (lp_solve/CPLEX/MOSEK), never the ilp.Solver contract
// itself. Not grounded on any example repo — no repo in the pack ships an
// ILP solver — it exists purely to make well-formedness (spec.md §8) and
// end-to-end driver tests runnable without an external binary.
package refsolver

import (
	"fmt"
	"math"

	"github.com/sarchlab/owcet/ilp"
)

// Solver is a branch-and-bound solver over a relaxed simplex-free bound:
// since the systems this repo's tests build are small (a handful of blocks
// and loop-bound constraints), an exhaustive bounded search over integer
// assignments is sufficient; it is not intended to scale beyond test-sized
// inputs.
type Solver struct {
	// MaxValue bounds every variable's search range to [0, MaxValue],
	// needed because the ILP systems here have no explicit upper bound on
	// block/edge counts (only flow-fact-derived loop bounds constrain
	// some of them) — without a cap, branch-and-bound has nothing to
	// terminate on for an unconstrained variable.
	MaxValue int
}

// New creates a Solver with the given per-variable search bound.
func New(maxValue int) *Solver {
	return &Solver{MaxValue: maxValue}
}

var _ ilp.Solver = (*Solver)(nil)

// Solve implements ilp.Solver via exhaustive branch-and-bound: assign each
// variable in turn to every value in [0, MaxValue], pruning a branch as soon
// as a constraint it fully determines is violated, and keep the best
// complete, feasible assignment found.
func (s *Solver) Solve(sys *ilp.System) (ilp.Solution, error) {
	vars := sys.Vars()
	if len(vars) == 0 {
		return ilp.Solution{Values: map[*ilp.Var]float64{}}, nil
	}

	assignment := make(map[*ilp.Var]float64, len(vars))
	best := ilp.Solution{Objective: math.Inf(-1)}
	found := false

	var search func(i int)
	search = func(i int) {
		if i == len(vars) {
			if !feasible(sys, assignment) {
				return
			}
			obj := objectiveValue(sys, assignment)
			if !found || obj > best.Objective {
				found = true
				best.Objective = obj
				best.Values = make(map[*ilp.Var]float64, len(assignment))
				for k, v := range assignment {
					best.Values[k] = v
				}
			}
			return
		}
		v := vars[i]
		for val := 0; val <= s.MaxValue; val++ {
			assignment[v] = float64(val)
			if feasible(sys, assignment) {
				search(i + 1)
			}
		}
		delete(assignment, v)
	}
	search(0)

	if !found {
		return ilp.Solution{}, fmt.Errorf("refsolver: no feasible integer assignment found within [0, %d]", s.MaxValue)
	}
	return best, nil
}

func feasible(sys *ilp.System, assignment map[*ilp.Var]float64) bool {
	for _, c := range sys.Constraints() {
		sum := 0.0
		determined := true
		for _, t := range c.Terms {
			val, ok := assignment[t.Var]
			determined = determined && ok
			sum += t.Coef * val
		}
		if !determined {
			continue // not fully assigned yet; checked again deeper in the search
		}
		switch c.Comp {
		case ilp.LE:
			if sum > c.Constant {
				return false
			}
		case ilp.LT:
			if sum >= c.Constant {
				return false
			}
		case ilp.EQ:
			if sum != c.Constant {
				return false
			}
		case ilp.GE:
			if sum < c.Constant {
				return false
			}
		case ilp.GT:
			if sum <= c.Constant {
				return false
			}
		}
	}
	return true
}

func objectiveValue(sys *ilp.System, assignment map[*ilp.Var]float64) float64 {
	sum := 0.0
	for _, t := range sys.Objective() {
		sum += t.Coef * assignment[t.Var]
	}
	return sum
}
