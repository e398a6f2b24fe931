package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/owcet/cfg"
	"github.com/sarchlab/owcet/driver"
	"github.com/sarchlab/owcet/driver/errkind"
)

// loadFlowFacts reads a simple "0xADDR BOUND" flow-facts file (one loop
// header per line, blank lines and "#"-prefixed comments ignored) and
// records each as a bound on the block of col's entry CFG whose address
// matches, supplementing spec.md §4.6's flow-fact consumption with a file
// format modest enough that a test fixture or a user can hand-write one,
// grounded on original_source/src/oipet/oipet.cpp's own flat per-line
// bound-listing format.
func loadFlowFacts(path string, col *cfg.Collection, facts *cfg.FlowFacts) error {
	f, err := os.Open(path)
	if err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: "opening flow-facts file " + path, Err: err}
	}
	defer f.Close()

	addrToHeader := indexBlockAddrs(col)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return &driver.Error{Kind: errkind.Configuration,
				Msg: fmt.Sprintf("%s:%d: expected \"0xADDR BOUND\", got %q", path, lineNo, line)}
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 64)
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration,
				Msg: fmt.Sprintf("%s:%d: invalid address %q", path, lineNo, fields[0]), Err: err}
		}
		bound, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return &driver.Error{Kind: errkind.Configuration,
				Msg: fmt.Sprintf("%s:%d: invalid bound %q", path, lineNo, fields[1]), Err: err}
		}
		header, ok := addrToHeader[addr]
		if !ok {
			return &driver.Error{Kind: errkind.Configuration,
				Msg: fmt.Sprintf("%s:%d: no block at address 0x%x", path, lineNo, addr)}
		}
		facts.Add(cfg.FlowFact{CFG: 0, Header: header, Bound: bound})
	}
	if err := scanner.Err(); err != nil {
		return &driver.Error{Kind: errkind.Configuration, Msg: "reading " + path, Err: err}
	}
	return nil
}

func indexBlockAddrs(col *cfg.Collection) map[uint64]cfg.Index {
	out := make(map[uint64]cfg.Index)
	g := col.CFG(0)
	for _, b := range g.Blocks() {
		if len(b.Insts) > 0 {
			out[b.Addr()] = b.Index
		}
	}
	return out
}
