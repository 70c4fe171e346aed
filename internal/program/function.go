// Package program owns the top-level model the driver builds toward:
// functions keyed by entry address, each with its own Cfg, plus the
// inter-procedural call graph and the address space and symbols they were
// recovered from.
package program

import (
	"makecfg/internal/addr"
	"makecfg/internal/cfg"
)

// Function is one discovered function: its entry address, its resolved
// name and owning module, its Cfg, and whether it still needs augmenting.
// A Function is created pending (CFG present but empty) and transitions to
// not-pending exactly once, when the driver finishes augmenting it.
type Function struct {
	Entry   addr.Address
	Name    string
	Module  string
	CFG     *cfg.Cfg
	Pending bool
}

func newFunction(entry addr.Address) *Function {
	return &Function{
		Entry:   entry,
		CFG:     cfg.New(entry),
		Pending: true,
	}
}
