package program

import (
	"github.com/zboralski/lattice"

	"makecfg/internal/cfg"
	"makecfg/internal/disasm"
)

// ToLatticeCFGGraph converts one function's Cfg into a lattice.CFGGraph
// suitable for github.com/zboralski/lattice/render.DOTCFG. Block IDs are
// assigned by ascending entry address (the canonical order the rest of
// make-cfg uses), and Start/End carry the block's address range rather
// than an instruction-stream index — lattice's renderer treats them as
// opaque labels either way.
func ToLatticeCFGGraph(f *Function) *lattice.CFGGraph {
	return &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{toFuncCFG(f)}}
}

func toFuncCFG(f *Function) *lattice.FuncCFG {
	entries := f.CFG.SortedEntries()
	idOf := make(map[uint32]int, len(entries))
	for i, e := range entries {
		idOf[uint32(e)] = i
	}

	lcfg := &lattice.FuncCFG{Name: f.Name}
	for _, e := range entries {
		b := f.CFG.Blocks[e]
		lb := &lattice.BasicBlock{
			ID:    idOf[uint32(e)],
			Start: int(uint32(e)),
			End:   int(uint32(b.End())),
			Term:  len(b.Successors) == 0,
		}

		switch len(b.Successors) {
		case 1:
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: idOf[uint32(b.Successors[0])]})
		case 2:
			// Successors is kept sorted by address, not by taken/fallthrough
			// role; re-derive the role from the block's last instruction.
			taken, fall := branchRoles(b)
			if id, ok := idOf[uint32(taken)]; ok {
				lb.Succs = append(lb.Succs, lattice.Successor{BlockID: id, Cond: "T"})
			}
			if id, ok := idOf[uint32(fall)]; ok {
				lb.Succs = append(lb.Succs, lattice.Successor{BlockID: id, Cond: "F"})
			}
		}

		for _, inst := range b.Instructions {
			if inst.Category == disasm.Call && inst.HasCallTarget {
				lb.Calls = append(lb.Calls, lattice.CallSite{
					Offset: int(uint32(inst.Address)),
					Callee: inst.Disasm,
				})
			}
		}

		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

// branchRoles recovers which of a two-successor block's edges is the
// taken branch versus the fallthrough, from the last instruction's
// Next1/Next2 (Next1 is always the taken target for conditional
// branches).
func branchRoles(b *cfg.BasicBlock) (taken, fall uint32) {
	if len(b.Instructions) == 0 {
		return 0, 0
	}
	last := b.Instructions[len(b.Instructions)-1]
	return uint32(last.Next1), uint32(last.Next2)
}

// ToLatticeCallGraph converts a Program's call graph into a lattice.Graph
// keyed by function name, following the teacher's BuildCallGraph: one node
// per function, one edge per distinct (caller, callee) pair, deduplicated.
func ToLatticeCallGraph(p *Program) *lattice.Graph {
	g := &lattice.Graph{}
	for _, a := range p.SortedEntries() {
		f := p.functions[a]
		g.Nodes = append(g.Nodes, nodeLabel(f))
	}
	for _, e := range p.Calls.Edges() {
		caller, ok := p.Get(e.Caller)
		if !ok {
			continue
		}
		callee, ok := p.Get(e.Callee)
		if !ok {
			continue
		}
		g.Edges = append(g.Edges, lattice.Edge{
			Caller: nodeLabel(caller),
			Callee: nodeLabel(callee),
		})
	}
	g.Dedup()
	return g
}

func nodeLabel(f *Function) string {
	if f.Name != "" && f.Name != "anon" {
		return f.Name
	}
	return f.Entry.Hex()
}
