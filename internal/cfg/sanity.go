package cfg

import (
	"fmt"

	"makecfg/internal/addr"
)

// Violation is one sanity-check failure. Kind is a short, stable tag for
// tests and aggregated reporting; Detail is human-readable.
type Violation struct {
	Kind   string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// SanityCheck validates the invariants of spec §4.8 against c without
// mutating it. It never aborts the process; callers decide how to surface
// violations (spec §7: overlap violations are reported, not fatal).
func SanityCheck(c *Cfg) []Violation {
	var out []Violation
	entries := c.SortedEntries()

	out = append(out, checkOverlap(c, entries)...)
	out = append(out, checkSuccessorClosure(c, entries)...)
	out = append(out, checkPredecessorInverse(c, entries)...)
	out = append(out, checkReachability(c, entries)...)

	return out
}

// checkOverlap verifies no two blocks' instruction ranges overlap, relying
// on entries already being in ascending order.
func checkOverlap(c *Cfg, entries []addr.Address) []Violation {
	var out []Violation
	for i := 1; i < len(entries); i++ {
		prev := c.Blocks[entries[i-1]]
		cur := entries[i]
		if len(prev.Instructions) == 0 {
			continue
		}
		if cur < prev.End() {
			out = append(out, Violation{
				Kind:   "overlap",
				Detail: fmt.Sprintf("block %s [.., %s) overlaps block %s", prev.Entry, prev.End(), cur),
			})
		}
	}
	return out
}

func checkSuccessorClosure(c *Cfg, entries []addr.Address) []Violation {
	var out []Violation
	for _, e := range entries {
		for _, s := range c.Blocks[e].Successors {
			if _, ok := c.Blocks[s]; !ok {
				out = append(out, Violation{
					Kind:   "missing-successor",
					Detail: fmt.Sprintf("%s -> %s, but %s has no block", e, s, s),
				})
			}
		}
	}
	return out
}

func checkPredecessorInverse(c *Cfg, entries []addr.Address) []Violation {
	var out []Violation
	for _, e := range entries {
		for _, s := range c.Blocks[e].Successors {
			succ, ok := c.Blocks[s]
			if !ok {
				continue
			}
			if !containsAddr(succ.Predecessors, e) {
				out = append(out, Violation{
					Kind:   "predecessor-mismatch",
					Detail: fmt.Sprintf("%s lists %s as successor but %s lacks it as predecessor", e, s, s),
				})
			}
		}
	}
	return out
}

// checkReachability verifies every block is reachable from the entry block
// via successor edges (spec §4.8(e); (d) is trivial and not reported).
func checkReachability(c *Cfg, entries []addr.Address) []Violation {
	var out []Violation
	if len(entries) == 0 {
		return out
	}
	start := c.EntryBlock
	if _, ok := c.Blocks[start]; !ok {
		start = entries[0]
	}

	reached := make(map[addr.Address]bool)
	stack := []addr.Address{start}
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[a] {
			continue
		}
		reached[a] = true
		if b, ok := c.Blocks[a]; ok {
			for _, s := range b.Successors {
				stack = append(stack, s)
			}
		}
	}

	for _, e := range entries {
		if !reached[e] {
			out = append(out, Violation{Kind: "unreachable", Detail: e.String()})
		}
	}
	return out
}
