package ilp

import (
	"fmt"
	"io"
	"strings"
)

// Format selects a dump's textual syntax (spec.md §6).
type Format int

const (
	Default Format = iota
	LPSolve
	CPLEX
	MOSEK
)

// escapeID rewrites name into `[A-Za-z_][A-Za-z0-9_]*` by hex-escaping every
// other byte as "_XX" (and prefixing a leading digit the same way), the way
// original_source/src/prog/ilp_System.cpp's CID helper does — this keeps the
// escaped form recognizably derived from the original name rather than
// discarding it, which is why Dump (Default/LP_SOLVE) prefers this over a
// synthesized "x0"/"x1" scheme.
func escapeID(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		isDigit := c >= '0' && c <= '9'
		if i == 0 && isDigit {
			fmt.Fprintf(&b, "_%02X", c)
			continue
		}
		if isDigit || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	return b.String()
}

// renamer assigns every variable a stable dump-local identifier: the
// escaped original name, or a synthesized "x<n>" for an anonymous variable
// (or, under forceSynthetic, for every variable — CPLEX/MOSEK's style).
type renamer struct {
	names          map[*Var]string
	forceSynthetic bool
	next           int
}

func newRenamer(forceSynthetic bool) *renamer {
	return &renamer{names: make(map[*Var]string), forceSynthetic: forceSynthetic}
}

func (r *renamer) name(v *Var) string {
	if n, ok := r.names[v]; ok {
		return n
	}
	var n string
	if !r.forceSynthetic && v.Name != "" {
		n = escapeID(v.Name)
	}
	if n == "" {
		n = fmt.Sprintf("x%d", r.next)
		r.next++
	}
	r.names[v] = n
	return n
}

func formatConstant(c float64) string {
	if c == float64(int64(c)) {
		return fmt.Sprintf("%d", int64(c))
	}
	return fmt.Sprintf("%g", c)
}

func formatTerm(t Term, name string, first bool) string {
	coef := t.Coef
	switch {
	case coef == 1:
		if first {
			return name
		}
		return "+ " + name
	case coef == -1:
		return "- " + name
	case coef > 0:
		if first {
			return fmt.Sprintf("%s %s", formatConstant(coef), name)
		}
		return fmt.Sprintf("+ %s %s", formatConstant(coef), name)
	default:
		return fmt.Sprintf("- %s %s", formatConstant(-coef), name)
	}
}

// Dump writes s in the requested format.
func Dump(w io.Writer, s *System, format Format) error {
	switch format {
	case LPSolve:
		return dumpLPSolve(w, s)
	case CPLEX:
		return dumpCPlex(w, s)
	case MOSEK:
		return dumpMOSEK(w, s)
	default:
		return dumpDefault(w, s)
	}
}

// dumpDefault writes one constraint per line with a leading label
// (spec.md §6: "Default human-readable ILP (one constraint per line,
// leading label)").
func dumpDefault(w io.Writer, s *System) error {
	r := newRenamer(false)

	fmt.Fprint(w, "maximize:")
	for _, t := range s.Objective() {
		fmt.Fprintf(w, " %s", formatTerm(t, r.name(t.Var), false))
	}
	fmt.Fprintln(w)

	for _, c := range s.Constraints() {
		fmt.Fprintf(w, "%s: ", c.Label)
		for i, t := range c.Terms {
			fmt.Fprintf(w, "%s ", formatTerm(t, r.name(t.Var), i == 0))
		}
		fmt.Fprintf(w, "%s %s\n", c.Comp, formatConstant(c.Constant))
	}
	return nil
}

// dumpLPSolve writes lp_solve's native format: "max:" header, ";"
// terminators, "int" declarations. Grounded on
// original_source/src/prog/ilp_System.cpp's System::dumpLPSolve.
func dumpLPSolve(w io.Writer, s *System) error {
	r := newRenamer(false)

	fmt.Fprintln(w, "max:")
	for _, t := range s.Objective() {
		fmt.Fprintf(w, " %s\n", formatTerm(t, r.name(t.Var), true))
	}
	fmt.Fprintln(w, ";")
	fmt.Fprintln(w)

	for _, c := range s.Constraints() {
		for i, t := range c.Terms {
			fmt.Fprintf(w, "%s ", formatTerm(t, r.name(t.Var), i == 0))
		}
		fmt.Fprintf(w, "%s %s;", c.Comp, formatConstant(c.Constant))
		if c.Label != "" {
			fmt.Fprintf(w, " /* %s */", c.Label)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	for _, v := range s.Vars() {
		if v.Integer {
			fmt.Fprintf(w, "int %s;\n", r.name(v))
		}
	}
	return nil
}

// dumpCPlex writes CPLEX LP format's "Maximize"/"Subject To"/"Bounds"/
// "General"/"End" sections, with every variable force-renamed to "x<n>" and
// its original name kept only in a trailing comment — grounded on
// original_source/src/prog/ilp_System.cpp's System::dumpCPlex.
func dumpCPlex(w io.Writer, s *System) error {
	r := newRenamer(true)

	fmt.Fprintln(w, "Maximize")
	for _, t := range s.Objective() {
		fmt.Fprintf(w, " %s\n", formatTerm(t, r.name(t.Var), true))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Subject To")
	for i, c := range s.Constraints() {
		fmt.Fprintf(w, " lbl%d:", i+1)
		for j, t := range c.Terms {
			fmt.Fprintf(w, " %s", formatTerm(t, r.name(t.Var), j == 0))
		}
		fmt.Fprintf(w, " %s %s", c.Comp, formatConstant(c.Constant))
		if c.Label != "" {
			fmt.Fprintf(w, " \\* %s *\\", c.Label)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Bounds")
	for _, v := range s.Vars() {
		fmt.Fprintf(w, " %s >= 0\n", r.name(v))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "General")
	for _, v := range s.Vars() {
		if v.Integer {
			fmt.Fprintf(w, " %s \\* %s *\\\n", r.name(v), v.Name)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "End")
	return nil
}

// dumpMOSEK writes MOSEK's tag-bracket syntax, grounded on
// original_source/src/prog/ilp_System.cpp's System::dumpMOSEK.
func dumpMOSEK(w io.Writer, s *System) error {
	r := newRenamer(true)

	fmt.Fprintln(w, "[objective maximize 'obj']")
	for _, t := range s.Objective() {
		fmt.Fprintf(w, " %s", formatTerm(t, r.name(t.Var), true))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[/objective]")

	fmt.Fprintln(w, "[constraints]")
	for _, c := range s.Constraints() {
		fmt.Fprint(w, "[con]")
		for i, t := range c.Terms {
			fmt.Fprintf(w, " %s", formatTerm(t, r.name(t.Var), i == 0))
		}
		fmt.Fprintf(w, " %s %s [/con]\n", c.Comp, formatConstant(c.Constant))
	}
	fmt.Fprintln(w, "[/constraints]")

	fmt.Fprintln(w, "[bounds]")
	fmt.Fprintln(w, "[b] 0 <= * [/b]")
	fmt.Fprintln(w, "[/bounds]")

	fmt.Fprintln(w, "[variables]")
	for _, v := range s.Vars() {
		fmt.Fprintf(w, " %s\n", r.name(v))
	}
	fmt.Fprintln(w, "[/variables]")

	fmt.Fprintln(w, "[integer]")
	for _, v := range s.Vars() {
		if v.Integer {
			fmt.Fprintf(w, " %s\n", r.name(v))
		}
	}
	fmt.Fprintln(w, "[/integer]")
	return nil
}
