// Package main provides the owcet CLI (spec.md §6): a WCET analysis
// front-end over a binary loader, a hardware description, and an ILP
// solver.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/driver"
	"github.com/sarchlab/owcet/driver/errkind"
	"github.com/sarchlab/owcet/exegraph"
	"github.com/sarchlab/owcet/hardware"
	"github.com/sarchlab/owcet/ilp"
	"github.com/sarchlab/owcet/ilp/refsolver"
	"github.com/sarchlab/owcet/loader"
	"github.com/sarchlab/owcet/prog"
)

var (
	processorPath = flag.String("processor", "", "Path to processor XML (default: built-in scalar 5-stage model)")
	cachePath     = flag.String("cache", "", "Path to cache configuration XML (default: no cache modeled)")
	memoryPath    = flag.String("memory", "", "Path to memory XML (default: built-in 1-cycle model)")
	ilpSolver     = flag.String("ilp", "ref", "ILP solver backend: ref (exhaustive reference solver, test-sized problems only)")
	virtualize    = flag.Bool("virtualize", true, "Inline synthetic call blocks before analysis")
	unroll        = flag.Bool("unroll", false, "Unroll the first iteration of every loop before analysis")
	flowFactsPath = flag.String("flow-facts", "", "Path to a flow-facts file (lines of \"0xADDR BOUND\", one per loop header)")
	dumpConsPath  = flag.String("dump-cons", "", "Dump the assembled ILP system to PATH")
	dumpConsFmt   = flag.String("dump-cons-format", "default", "ILP dump format: default, lpsolve, cplex, mosek")
	dumpGraphPath = flag.String("dump-graph", "", "Dump the CFG and execution graphs as Graphviz dot to PATH")
	logLevel      = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	maxILPValue   = flag.Int("ilp-max-value", 64, "Upper bound on each ILP variable's search range (ref solver only)")
)

// exit codes, spec.md §6.
const (
	exitSuccess  = 0
	exitUsage    = 1
	exitAnalysis = 2
	exitSolver   = 3
)

func main() {
	flag.Usage = usage
	flag.Parse()

	log := newLogger(*logLevel)

	if flag.NArg() < 1 {
		usage()
		os.Exit(exitUsage)
	}

	switch flag.Arg(0) {
	case "flow-facts":
		os.Exit(runFlowFacts(log))
	default:
		os.Exit(runWCET(log))
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: owcet BINARY FUNCTION [flags]\n")
	fmt.Fprintf(os.Stderr, "       owcet flow-facts BINARY FUNCTION [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

// loadTask resolves BINARY and FUNCTION into a built CFG collection, with
// the entry CFG (index 0) rooted at FUNCTION's address, per cfg.Build's
// documented contract.
func loadTask(binary, function string) (*cfg.Collection, error) {
	program, err := loader.Load(binary)
	if err != nil {
		return nil, &driver.Error{Kind: errkind.Load, Msg: "loading " + binary, Err: err}
	}
	process := prog.New(program)

	sym, ok := process.SymbolByName(function)
	if !ok {
		return nil, &driver.Error{Kind: errkind.Load, Msg: "no symbol named " + function + " in " + binary}
	}

	col, err := cfg.Build(process, sym.Addr, nil)
	if err != nil {
		return nil, &driver.Error{Kind: errkind.AnalysisPrerequisite, Msg: "reconstructing CFG for " + function, Err: err}
	}
	return col, nil
}

// configureHardware applies --processor/--cache/--memory onto ctx,
// defaulting to NewContext's built-in scalar model for anything unset.
func configureHardware(ctx *driver.Context) error {
	if *processorPath != "" {
		proc, err := hardware.LoadProcessor(*processorPath)
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration, Msg: "loading processor " + *processorPath, Err: err}
		}
		ctx.Proc = proc
	}
	if *cachePath != "" {
		c, err := hardware.LoadCacheConfig(*cachePath)
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration, Msg: "loading cache " + *cachePath, Err: err}
		}
		ctx.ICache = c
		ctx.DCache = c
	}
	if *memoryPath != "" {
		mem, err := hardware.LoadMemory(*memoryPath)
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration, Msg: "loading memory " + *memoryPath, Err: err}
		}
		ctx.Proc.Memory = *mem
	}
	return nil
}

// configureSolver applies --ilp onto ctx.Solver. The only bundled backend
// is ilp/refsolver's exhaustive reference solver, which that package's own
// documentation restricts to test-sized problems; any other --ilp value is
// an invalid-argument error rather than a silent fallback (spec.md §6
// treats the ILP solver as an external plug-in this repo doesn't ship one
// of in production strength).
func configureSolver(ctx *driver.Context) error {
	switch *ilpSolver {
	case "ref":
		ctx.Solver = refsolver.New(*maxILPValue)
		return nil
	default:
		return &driver.Error{Kind: errkind.Configuration, Msg: "unsupported --ilp backend " + *ilpSolver}
	}
}

func runWCET(log zerolog.Logger) int {
	if flag.NArg() < 2 {
		usage()
		return exitUsage
	}
	binary, function := flag.Arg(0), flag.Arg(1)

	col, err := loadTask(binary, function)
	if err != nil {
		return reportError(log, err)
	}

	ctx := driver.NewContext(col, log)
	ctx.Virtualize = *virtualize
	ctx.Unroll = *unroll
	ctx.TargetCFG = 0

	if err := configureHardware(ctx); err != nil {
		return reportError(log, err)
	}
	if err := configureSolver(ctx); err != nil {
		return reportError(log, err)
	}
	if *flowFactsPath != "" {
		if err := loadFlowFacts(*flowFactsPath, col, ctx.FlowFacts); err != nil {
			return reportError(log, err)
		}
	}

	if err := driver.Analyze(ctx); err != nil {
		return reportError(log, err)
	}

	for _, mb := range ctx.MissingBounds {
		log.Warn().Msg(mb.Error())
	}

	if *dumpConsPath != "" {
		if err := dumpConstraints(ctx); err != nil {
			return reportError(log, err)
		}
	}
	if *dumpGraphPath != "" {
		if err := dumpGraph(col, ctx); err != nil {
			return reportError(log, err)
		}
	}

	fmt.Printf("WCET(%s) = %.0f cycles\n", function, ctx.Solution.Objective)
	return exitSuccess
}

func runFlowFacts(log zerolog.Logger) int {
	if flag.NArg() < 3 {
		usage()
		return exitUsage
	}
	binary, function := flag.Arg(1), flag.Arg(2)

	col, err := loadTask(binary, function)
	if err != nil {
		return reportError(log, err)
	}

	facts := cfg.NewFlowFacts()
	if *flowFactsPath != "" {
		if err := loadFlowFacts(*flowFactsPath, col, facts); err != nil {
			return reportError(log, err)
		}
	}

	missing := facts.MissingBounds(col)
	if len(missing) == 0 {
		fmt.Println("every loop reachable from the task entry has a recorded bound")
		return exitSuccess
	}
	for _, m := range missing {
		g := col.CFG(m.CFG)
		header := g.Block(m.Header)
		fmt.Printf("%s: loop header at 0x%x has no recorded bound\n", g.Name, header.Addr())
	}
	return exitAnalysis
}

func dumpConstraints(ctx *driver.Context) error {
	f, err := os.Create(*dumpConsPath)
	if err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: "creating " + *dumpConsPath, Err: err}
	}
	defer f.Close()

	format, err := parseDumpFormat(*dumpConsFmt)
	if err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: err.Error()}
	}
	if err := ilp.Dump(f, ctx.System, format); err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: "dumping ILP system", Err: err}
	}
	return nil
}

func parseDumpFormat(name string) (ilp.Format, error) {
	switch name {
	case "default":
		return ilp.Default, nil
	case "lpsolve":
		return ilp.LPSolve, nil
	case "cplex":
		return ilp.CPLEX, nil
	case "mosek":
		return ilp.MOSEK, nil
	default:
		return ilp.Default, errors.New("unknown --dump-cons-format " + name)
	}
}

// dumpGraph writes the CFG dot file to *dumpGraphPath and, for every block
// TargetCFG's timing step built an execution graph for, one sibling
// "<path>.blockN.exegraph.dot" file (spec.md §6's graph dump, supplemented
// per original_source's odisplay with the execution-graph half cfg.WriteDOT
// alone doesn't cover).
func dumpGraph(col *cfg.Collection, ctx *driver.Context) error {
	f, err := os.Create(*dumpGraphPath)
	if err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: "creating " + *dumpGraphPath, Err: err}
	}
	defer f.Close()
	if err := cfg.WriteDOT(f, col); err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: "dumping CFG graph", Err: err}
	}

	for idx, bt := range ctx.BlockTimes {
		if bt.Graph == nil {
			continue
		}
		path := fmt.Sprintf("%s.block%d.exegraph.dot", *dumpGraphPath, idx)
		ef, err := os.Create(path)
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration, Msg: "creating " + path, Err: err}
		}
		err = exegraph.WriteDOT(ef, bt.Graph)
		ef.Close()
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration, Msg: "dumping execution graph for block " + fmt.Sprint(idx), Err: err}
		}
	}
	return nil
}

// reportError prints err and maps its errkind.Kind onto spec.md §6's exit
// codes: Load and Configuration errors, and anything not wrapped as a
// driver.Error at all (bad CLI arguments caught before the driver runs),
// are invalid-argument errors; Solver failures get their own code; every
// other driver.Error is an analysis error.
func reportError(log zerolog.Logger, err error) int {
	log.Error().Msg(err.Error())

	var derr *driver.Error
	if !errors.As(err, &derr) {
		return exitUsage
	}
	switch derr.Kind {
	case errkind.Load, errkind.Configuration:
		return exitUsage
	case errkind.Solver:
		return exitSolver
	default:
		return exitAnalysis
	}
}
