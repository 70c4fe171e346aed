package program

import (
	"sort"

	"makecfg/internal/addr"
)

// edgeKey identifies a directed (caller, callee) pair for multiplicity
// counting; CallGraph is a multiset over these.
type edgeKey struct {
	Caller addr.Address
	Callee addr.Address
}

// CallGraphEdge is one canonicalized edge in Edges() output: a distinct
// (caller, callee) pair together with its call-site multiplicity.
type CallGraphEdge struct {
	Caller       addr.Address
	Callee       addr.Address
	Multiplicity int
}

// CallGraph is the inter-procedural multiset of (caller, callee) edges
// described in spec §4.6: duplicates are permitted, one per distinct call
// instruction, and emission aggregates them into a single labeled edge.
type CallGraph struct {
	counts map[edgeKey]int
}

// NewCallGraph returns an empty CallGraph.
func NewCallGraph() *CallGraph {
	return &CallGraph{counts: make(map[edgeKey]int)}
}

// AddCall records one call instruction from caller to callee.
func (g *CallGraph) AddCall(caller, callee addr.Address) {
	g.counts[edgeKey{caller, callee}]++
}

// Multiplicity reports how many call instructions from caller target
// callee.
func (g *CallGraph) Multiplicity(caller, callee addr.Address) int {
	return g.counts[edgeKey{caller, callee}]
}

// Edges returns every distinct edge with its multiplicity, sorted by
// caller then callee for reproducible emission (spec §5).
func (g *CallGraph) Edges() []CallGraphEdge {
	out := make([]CallGraphEdge, 0, len(g.counts))
	for k, n := range g.counts {
		out = append(out, CallGraphEdge{Caller: k.Caller, Callee: k.Callee, Multiplicity: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Caller != out[j].Caller {
			return out[i].Caller < out[j].Caller
		}
		return out[i].Callee < out[j].Callee
	})
	return out
}
