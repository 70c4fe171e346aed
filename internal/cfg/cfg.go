// Package cfg builds and augments one function's control-flow graph: a set
// of BasicBlocks reached from a function entry, with block splitting when a
// newly explored address lands inside an already-decoded block.
package cfg

import (
	"sort"

	"makecfg/internal/addr"
	"makecfg/internal/disasm"
)

// maxInstrLen bounds how many bytes are fetched per decode attempt; long
// enough for any x86 instruction encoding.
const maxInstrLen = 16

// CodeSource is the slice of AddressSpace that block-building needs: raw
// bytes and the executable flag. Augment depends on this instead of
// addrspace.AddressSpace directly so cfg has no import on addrspace.
type CodeSource interface {
	BytesAt(a addr.Address, n int) ([]byte, error)
	IsExecutable(a addr.Address) bool
}

// FunctionTable lets Augment register newly discovered call targets as
// pending functions without cfg importing the program package — program
// implements this interface instead, breaking what would otherwise be an
// import cycle (program.Function holds a *Cfg).
type FunctionTable interface {
	// Has reports whether a function entry at a is already known.
	Has(a addr.Address) bool
	// Ensure registers a as a pending function if it is not already known.
	// Idempotent.
	Ensure(a addr.Address)
}

// Cfg is one function's control-flow graph: blocks keyed by entry address.
type Cfg struct {
	FunctionEntry addr.Address
	EntryBlock    addr.Address
	Blocks        map[addr.Address]*BasicBlock
}

// New returns an empty Cfg for the function at entry.
func New(entry addr.Address) *Cfg {
	return &Cfg{
		FunctionEntry: entry,
		EntryBlock:    entry,
		Blocks:        make(map[addr.Address]*BasicBlock),
	}
}

// SortedEntries returns block entry addresses in ascending order, the
// canonical iteration order the driver and emitters rely on for
// reproducible output.
func (c *Cfg) SortedEntries() []addr.Address {
	out := make([]addr.Address, 0, len(c.Blocks))
	for e := range c.Blocks {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Augment extends c by exploring from entry (and from the entry of every
// block c already contains, to re-establish the work-set after a prior
// partial pass), decoding new instructions through dec and fetching bytes
// from code. Newly discovered direct call targets are registered in funcs.
func Augment(c *Cfg, entry addr.Address, dec disasm.Decoder, code CodeSource, funcs FunctionTable) {
	seen := make(map[addr.Address]bool)
	var work []addr.Address
	enqueue := func(a addr.Address) {
		if a == 0 || seen[a] {
			return
		}
		seen[a] = true
		work = append(work, a)
	}

	enqueue(entry)
	for _, e := range c.SortedEntries() {
		enqueue(e)
	}

	for len(work) > 0 {
		a := work[0]
		work = work[1:]

		if _, ok := c.Blocks[a]; ok {
			// Already a block entry: stop on this path (spec §4.4 step 2).
			continue
		}
		if owner, ok := c.blockContaining(a); ok {
			nb := c.split(owner, a)
			_ = nb
			continue
		}

		successors := c.buildBlock(a, dec, code, funcs)
		for _, s := range successors {
			enqueue(s)
		}
	}

	c.rebuildPredecessors()
}

// blockContaining returns the block whose instruction range covers a, if
// any exists. a is assumed not to already be a block entry (callers check
// c.Blocks[a] first).
func (c *Cfg) blockContaining(a addr.Address) (*BasicBlock, bool) {
	for _, b := range c.Blocks {
		if b.Contains(a) {
			return b, true
		}
	}
	return nil, false
}

// split divides b at address at, which must fall strictly inside b's
// instruction range. The new block inherits b's successors and its
// trailing instructions; b keeps its leading instructions and gains a
// single fall-through successor to the new block (spec §4.4 step 1).
func (c *Cfg) split(b *BasicBlock, at addr.Address) *BasicBlock {
	idx := -1
	for i, inst := range b.Instructions {
		if inst.Address == at {
			idx = i
			break
		}
	}
	if idx <= 0 {
		// at is b's own entry, or not an instruction boundary within b;
		// nothing to do.
		return b
	}

	nb := &BasicBlock{
		Entry:        at,
		Instructions: append([]disasm.Instruction{}, b.Instructions[idx:]...),
		Successors:   append([]addr.Address{}, b.Successors...),
		Malformed:    b.Malformed,
	}
	b.Instructions = b.Instructions[:idx]
	b.Successors = []addr.Address{at}
	c.Blocks[at] = nb
	return nb
}

// buildBlock decodes a new block starting at start and returns the CFG-level
// successor addresses that still need exploring (direct call targets are
// registered with funcs rather than returned, since they belong to a
// different function's worklist).
func (c *Cfg) buildBlock(start addr.Address, dec disasm.Decoder, code CodeSource, funcs FunctionTable) []addr.Address {
	blk := &BasicBlock{Entry: start}
	c.Blocks[start] = blk

	cur := start
	for {
		if !code.IsExecutable(cur) {
			// Falling off the end of loaded code on a sequential
			// continuation is a clean terminator (spec §4.4 tie-breaks),
			// not a decode failure; only flag malformed when this is the
			// block's first instruction, since a non-executable entry
			// means nothing was ever decoded here.
			if len(blk.Instructions) == 0 {
				blk.Malformed = true
			}
			return nil
		}
		raw, err := code.BytesAt(cur, maxInstrLen)
		if err != nil || len(raw) == 0 {
			blk.Malformed = true
			return nil
		}

		inst, err := disasm.Decode(dec, cur, raw)
		blk.Instructions = append(blk.Instructions, inst)
		if err != nil {
			blk.Malformed = true
			return nil
		}

		switch inst.Category {
		case disasm.Return, disasm.Indirect, disasm.Other:
			return nil

		case disasm.UnconditionalBranch:
			blk.Successors = appendSortedUnique(blk.Successors, inst.Next1)
			return []addr.Address{inst.Next1}

		case disasm.ConditionalBranch:
			blk.Successors = appendSortedUnique(blk.Successors, inst.Next1, inst.Next2)
			return []addr.Address{inst.Next1, inst.Next2}

		case disasm.Call:
			blk.Successors = appendSortedUnique(blk.Successors, inst.Next1)
			resolveCall(inst, code, funcs)
			return []addr.Address{inst.Next1}

		default: // Sequential
			next := inst.Next1
			if next == 0 {
				blk.Malformed = true
				return nil
			}
			if _, ok := c.Blocks[next]; ok {
				blk.Successors = appendSortedUnique(blk.Successors, next)
				return []addr.Address{next}
			}
			if owner, ok := c.blockContaining(next); ok {
				c.split(owner, next)
				blk.Successors = appendSortedUnique(blk.Successors, next)
				return []addr.Address{next}
			}
			cur = next
		}
	}
}

// resolveCall registers a direct call's target as a pending function,
// dropping targets outside any loaded executable section (spec §4.4
// "tie-breaks", out-of-range calls).
func resolveCall(inst disasm.Instruction, code CodeSource, funcs FunctionTable) {
	if !inst.HasCallTarget {
		return
	}
	if !code.IsExecutable(inst.CallTarget) {
		return
	}
	funcs.Ensure(inst.CallTarget)
}

// rebuildPredecessors recomputes every block's Predecessors as the exact
// inverse of the Successors relation, in ascending-entry iteration order
// for reproducibility (spec §5).
func (c *Cfg) rebuildPredecessors() {
	for _, b := range c.Blocks {
		b.Predecessors = nil
	}
	for _, e := range c.SortedEntries() {
		b := c.Blocks[e]
		for _, s := range b.Successors {
			if succ, ok := c.Blocks[s]; ok {
				succ.Predecessors = appendSortedUnique(succ.Predecessors, e)
			}
		}
	}
}
