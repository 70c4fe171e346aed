// Package render emits the three textual output formats spec §4.7/§6
// describe: DOT, VCG, and JSON. Binary serialization lives in
// internal/serialize since it round-trips the Program rather than
// rendering it for a human or a graph viewer.
package render

import (
	latticerender "github.com/zboralski/lattice/render"

	"makecfg/internal/program"
)

// DOTFunction renders one function's CFG as Graphviz DOT, delegating the
// actual layout to github.com/zboralski/lattice/render.DOTCFG — the same
// function the unflutter tool calls for its own per-function CFG dumps.
func DOTFunction(f *program.Function) string {
	return latticerender.DOTCFG(program.ToLatticeCFGGraph(f), dotTitle(f))
}

// DOTCallGraph renders the whole program's inter-procedural call graph as
// Graphviz DOT via lattice/render.DOT.
func DOTCallGraph(p *program.Program) string {
	return latticerender.DOT(program.ToLatticeCallGraph(p), "callgraph")
}

func dotTitle(f *program.Function) string {
	if f.Name != "" && f.Name != "anon" {
		return f.Name
	}
	return f.Entry.Hex()
}
