package render

import (
	"fmt"
	"strings"

	"makecfg/internal/addr"
	"makecfg/internal/cfg"
	"makecfg/internal/program"
)

// VCGFunction renders one function's CFG in VCG (Visualization of Compiler
// Graphs) syntax. No VCG library exists anywhere in the retrieved example
// repos or their dependency graphs, so this is hand-rolled directly from
// the format's documented grammar (graph/node/edge records), the same way
// the JSON emitter is hand-rolled against spec §6's documented shape.
func VCGFunction(f *program.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph: {\ntitle: \"%s\"\n", dotTitle(f))

	for _, e := range f.CFG.SortedEntries() {
		blk := f.CFG.Blocks[e]
		fmt.Fprintf(&b, "node: { title: \"%s\" label: \"%s\" }\n", e, blockLabel(blk))
	}
	for _, e := range f.CFG.SortedEntries() {
		blk := f.CFG.Blocks[e]
		writeVCGEdges(&b, blk)
	}

	b.WriteString("}\n")
	return b.String()
}

func blockLabel(blk *cfg.BasicBlock) string {
	var lines []string
	for _, inst := range blk.Instructions {
		line := inst.Disasm
		if line == "" {
			line = fmt.Sprintf("%s: <malformed>", inst.Address)
		}
		lines = append(lines, line)
	}
	if blk.Malformed {
		lines = append(lines, "; malformed")
	}
	return strings.Join(lines, "\\n")
}

func writeVCGEdges(b *strings.Builder, blk *cfg.BasicBlock) {
	switch len(blk.Successors) {
	case 0:
		return
	case 1:
		fmt.Fprintf(b, "edge: { sourcename: \"%s\" targetname: \"%s\" label: \"fall\" }\n", blk.Entry, blk.Successors[0])
	case 2:
		taken, fall := lastBranchTargets(blk)
		fmt.Fprintf(b, "edge: { sourcename: \"%s\" targetname: \"%s\" label: \"taken\" }\n", blk.Entry, taken)
		fmt.Fprintf(b, "edge: { sourcename: \"%s\" targetname: \"%s\" label: \"not-taken\" }\n", blk.Entry, fall)
	}
}

func lastBranchTargets(blk *cfg.BasicBlock) (taken, fall addr.Address) {
	if len(blk.Instructions) == 0 {
		return blk.Entry, blk.Entry
	}
	last := blk.Instructions[len(blk.Instructions)-1]
	return last.Next1, last.Next2
}

// VCGCallGraph renders the whole program's call graph in VCG syntax, with
// edges labeled by call-site multiplicity.
func VCGCallGraph(p *program.Program) string {
	var b strings.Builder
	b.WriteString("graph: {\ntitle: \"callgraph\"\n")

	for _, a := range p.SortedEntries() {
		f, _ := p.Get(a)
		fmt.Fprintf(&b, "node: { title: \"%s\" label: \"%s\" }\n", a, dotTitle(f))
	}
	for _, e := range p.Calls.Edges() {
		fmt.Fprintf(&b, "edge: { sourcename: \"%s\" targetname: \"%s\" label: \"x%d\" }\n", e.Caller, e.Callee, e.Multiplicity)
	}

	b.WriteString("}\n")
	return b.String()
}
