// Package symtab is the bidirectional address<->name map recovered from an
// ELF symbol table.
package symtab

import (
	"sort"

	"makecfg/internal/addr"
)

const anon = "anon"

// Table maps addresses to names and back. Multiple symbols may share an
// address; the most recently added name wins for NameOf (last-write-wins,
// per spec §3). Distinct names are assumed to map to distinct addresses.
type Table struct {
	byAddr map[addr.Address]string
	byName map[string]addr.Address
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		byAddr: make(map[addr.Address]string),
		byName: make(map[string]addr.Address),
	}
}

// Add records a symbol. Empty names are the caller's responsibility to
// skip; Add itself performs no filtering so callers building a Table from
// varied sources stay in control of that policy.
func (t *Table) Add(a addr.Address, name string) {
	t.byAddr[a] = name
	t.byName[name] = a
}

// NameOf returns the name bound to a, or "anon" if none is known.
func (t *Table) NameOf(a addr.Address) string {
	if name, ok := t.byAddr[a]; ok {
		return name
	}
	return anon
}

// AddrOf returns the address bound to name.
func (t *Table) AddrOf(name string) (addr.Address, bool) {
	a, ok := t.byName[name]
	return a, ok
}

// Len reports the number of distinct addresses with a recorded name.
func (t *Table) Len() int {
	return len(t.byAddr)
}

// Addresses returns every address with a recorded name, in ascending
// order. Used by the binary serializer to walk the full table; lookup
// callers should prefer NameOf/AddrOf.
func (t *Table) Addresses() []addr.Address {
	out := make([]addr.Address, 0, len(t.byAddr))
	for a := range t.byAddr {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
