// Package ilp models an IPET linear system: variables, linear constraints,
// an objective, and textual dump in the default / LP_SOLVE / CPLEX / MOSEK
// formats (spec.md §4.6, §6). Grounded on
// original_source/src/prog/ilp_System.cpp (System::dumpLPSolve/dumpCPlex/
// dumpMOSEK/dumpSystem) and original_source/include/otawa/etime/
// StandardILPGenerator.h. Solving itself is delegated to an ilp.Solver
// plug-in (spec.md §6); this package never solves, only builds and dumps.
package ilp
