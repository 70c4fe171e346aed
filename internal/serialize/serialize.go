// Package serialize writes and reads the binary form of a Program (spec
// §4.7, §8 round-trip requirement). No third-party serialization library
// appears in any retrieved example repo's go.mod, so this wraps the
// standard library's encoding/gob — the same choice the Go standard
// toolchain itself makes wherever it needs a stable, self-describing wire
// format without an external schema.
package serialize

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"

	"makecfg/internal/addr"
	"makecfg/internal/addrspace"
	"makecfg/internal/cfg"
	"makecfg/internal/disasm"
	"makecfg/internal/program"
	"makecfg/internal/symtab"
)

// snapshot is the flat, gob-friendly mirror of program.Program: every
// exported field gob needs reflection access to, with cross-references
// already reduced to addresses (they already are, in the live types).
type snapshot struct {
	Sections []addrspace.Section
	Symbols  []symbolEntry
	Modules  []string
	Calls    []program.CallGraphEdge
	Funcs    []funcSnapshot
}

type symbolEntry struct {
	Addr addr.Address
	Name string
}

type funcSnapshot struct {
	Entry  addr.Address
	Name   string
	Module string
	Blocks []blockSnapshot
}

type blockSnapshot struct {
	Entry        addr.Address
	Instructions []disasm.Instruction
	Successors   []addr.Address
	Malformed    bool
}

// WriteTo serializes p to w in the package's gob-based binary form.
func WriteTo(w io.Writer, p *program.Program) error {
	snap, err := toSnapshot(p)
	if err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(snap)
}

// WriteFile serializes p to a new file at path, following spec §6's
// --cfg-out option.
func WriteFile(path string, p *program.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialize: create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteTo(f, p); err != nil {
		return fmt.Errorf("serialize: write %s: %w", path, err)
	}
	return nil
}

// ReadFrom deserializes a Program previously written by WriteTo/WriteFile.
func ReadFrom(r io.Reader) (*program.Program, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("serialize: decode: %w", err)
	}
	return fromSnapshot(snap)
}

// ReadFile deserializes a Program from path.
func ReadFile(path string) (*program.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("serialize: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// RoundTrip serializes then deserializes p in memory, for callers (and
// tests) that want the structural-equality guarantee without touching
// disk.
func RoundTrip(p *program.Program) (*program.Program, error) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, p); err != nil {
		return nil, err
	}
	return ReadFrom(&buf)
}

func toSnapshot(p *program.Program) (snapshot, error) {
	var snap snapshot

	if p.AS != nil {
		snap.Sections = p.AS.Sections()
	}
	if p.Symbols != nil {
		for _, a := range sortedSymbolAddrs(p.Symbols) {
			snap.Symbols = append(snap.Symbols, symbolEntry{Addr: a, Name: p.Symbols.NameOf(a)})
		}
	}
	snap.Modules = p.Modules
	snap.Calls = p.Calls.Edges()

	for _, a := range p.SortedEntries() {
		f, _ := p.Get(a)
		snap.Funcs = append(snap.Funcs, toFuncSnapshot(f))
	}
	return snap, nil
}

func toFuncSnapshot(f *program.Function) funcSnapshot {
	fs := funcSnapshot{Entry: f.Entry, Name: f.Name, Module: f.Module}
	for _, e := range f.CFG.SortedEntries() {
		b := f.CFG.Blocks[e]
		fs.Blocks = append(fs.Blocks, blockSnapshot{
			Entry:        e,
			Instructions: b.Instructions,
			Successors:   b.Successors,
			Malformed:    b.Malformed,
		})
	}
	return fs
}

func fromSnapshot(snap snapshot) (*program.Program, error) {
	as, err := addrspace.New(snap.Sections)
	if err != nil {
		return nil, fmt.Errorf("serialize: rebuild address space: %w", err)
	}

	symbols := symtab.New()
	for _, s := range snap.Symbols {
		symbols.Add(s.Addr, s.Name)
	}

	p := program.New(as, symbols)
	for _, m := range snap.Modules {
		p.AddModule(m)
	}

	for _, fs := range snap.Funcs {
		p.Ensure(fs.Entry)
		f, _ := p.Get(fs.Entry)
		f.Name = fs.Name
		f.Module = fs.Module
		f.Pending = false
		f.CFG = rebuildCfg(fs)
	}
	for _, e := range snap.Calls {
		for i := 0; i < e.Multiplicity; i++ {
			p.Calls.AddCall(e.Caller, e.Callee)
		}
	}
	return p, nil
}

func rebuildCfg(fs funcSnapshot) *cfg.Cfg {
	c := cfg.New(fs.Entry)
	for _, bs := range fs.Blocks {
		c.Blocks[bs.Entry] = &cfg.BasicBlock{
			Entry:        bs.Entry,
			Instructions: bs.Instructions,
			Successors:   bs.Successors,
			Malformed:    bs.Malformed,
		}
	}
	rebuildPredecessors(c)
	return c
}

// rebuildPredecessors mirrors cfg's own predecessor-inversion pass; a
// deserialized Cfg has no direct way to call the unexported version, and
// recomputing it from Successors keeps the invariant without exporting
// cfg's internals solely for this one caller.
func rebuildPredecessors(c *cfg.Cfg) {
	for _, e := range c.SortedEntries() {
		b := c.Blocks[e]
		for _, s := range b.Successors {
			if succ, ok := c.Blocks[s]; ok {
				succ.Predecessors = appendUniqueAddr(succ.Predecessors, e)
			}
		}
	}
	for _, b := range c.Blocks {
		sort.Slice(b.Predecessors, func(i, j int) bool { return b.Predecessors[i] < b.Predecessors[j] })
	}
}

func appendUniqueAddr(list []addr.Address, a addr.Address) []addr.Address {
	for _, x := range list {
		if x == a {
			return list
		}
	}
	return append(list, a)
}

func sortedSymbolAddrs(t *symtab.Table) []addr.Address {
	return t.Addresses()
}
