// Package driver runs the fixpoint loop described in spec §4.5: augment
// every pending function, harvest the call edges it just decoded, repeat
// until no function is pending.
package driver

import (
	"makecfg/internal/cfg"
	"makecfg/internal/disasm"
	"makecfg/internal/program"
)

// Run seeds nothing itself — callers call Program.Ensure(entry) for the
// ELF entry point before calling Run. Run loops: snapshot the pending set,
// augment each function's Cfg, mark it built, then register a CallGraph
// edge for every direct call instruction it decoded. Augmenting a function
// may register new pending functions (via Program.Ensure, which cfg.Augment
// calls through the FunctionTable interface); those are picked up by the
// next iteration's snapshot.
func Run(p *program.Program, dec disasm.Decoder) {
	for {
		pending := p.Pending()
		if len(pending) == 0 {
			return
		}

		for _, f := range pending {
			f.Name = p.Symbols.NameOf(f.Entry)
			f.Module = primaryModule(p)
			cfg.Augment(f.CFG, f.Entry, dec, p.AS, p)
			f.Pending = false
		}

		// Each function transitions pending -> built exactly once, so
		// scanning only this round's batch registers every call
		// instruction's edge exactly once, in discovery order.
		for _, f := range pending {
			registerCallEdges(p, f)
		}
	}
}

func primaryModule(p *program.Program) string {
	if len(p.Modules) == 0 {
		return ""
	}
	return p.Modules[0]
}

func registerCallEdges(p *program.Program, f *program.Function) {
	for _, e := range f.CFG.SortedEntries() {
		for _, inst := range f.CFG.Blocks[e].Instructions {
			if inst.Category != disasm.Call || !inst.HasCallTarget {
				continue
			}
			if _, ok := p.Get(inst.CallTarget); !ok {
				continue
			}
			p.Calls.AddCall(f.Entry, inst.CallTarget)
		}
	}
}
