package serialize

import (
	"testing"

	"makecfg/internal/addr"
	"makecfg/internal/addrspace"
	"makecfg/internal/cfg"
	"makecfg/internal/disasm"
	"makecfg/internal/program"
	"makecfg/internal/symtab"
)

func buildTestProgram(t *testing.T) *program.Program {
	t.Helper()

	as, err := addrspace.New([]addrspace.Section{{
		Range: addr.Range{Start: 0x1000, Length: 0x1000},
		Bytes: make([]byte, 0x1000),
		Flags: addrspace.Read | addrspace.Exec,
		Name:  ".text",
	}})
	if err != nil {
		t.Fatalf("addrspace.New: %v", err)
	}

	symbols := symtab.New()
	symbols.Add(0x1000, "main")
	symbols.Add(0x1800, "helper")

	p := program.New(as, symbols)
	p.AddModule("test.elf")

	p.Ensure(0x1000)
	main, _ := p.Get(0x1000)
	main.Name = "main"
	main.Module = "test.elf"
	main.Pending = false
	main.CFG.Blocks[0x1000] = &cfg.BasicBlock{
		Entry: 0x1000,
		Instructions: []disasm.Instruction{
			{Address: 0x1000, Length: 5, Category: disasm.Call, Next1: 0x1005, CallTarget: 0x1800, HasCallTarget: true,
				Bytes: []byte{0xE8, 0, 0, 0, 0}, Disasm: "call 0x1800"},
		},
		Successors: []addr.Address{0x1005},
	}
	main.CFG.Blocks[0x1005] = &cfg.BasicBlock{
		Entry: 0x1005,
		Instructions: []disasm.Instruction{
			{Address: 0x1005, Length: 1, Category: disasm.Return, Bytes: []byte{0xC3}, Disasm: "ret"},
		},
	}

	p.Ensure(0x1800)
	helper, _ := p.Get(0x1800)
	helper.Name = "helper"
	helper.Module = "test.elf"
	helper.Pending = false
	helper.CFG.Blocks[0x1800] = &cfg.BasicBlock{
		Entry: 0x1800,
		Instructions: []disasm.Instruction{
			{Address: 0x1800, Length: 1, Category: disasm.Return, Bytes: []byte{0xC3}, Disasm: "ret"},
		},
	}

	p.Calls.AddCall(0x1000, 0x1800)
	return p
}

func TestRoundTrip_PreservesStructure(t *testing.T) {
	p := buildTestProgram(t)

	got, err := RoundTrip(p)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	if len(got.Functions()) != len(p.Functions()) {
		t.Fatalf("len(Functions) = %d, want %d", len(got.Functions()), len(p.Functions()))
	}
	for _, a := range p.SortedEntries() {
		want, _ := p.Get(a)
		have, ok := got.Get(a)
		if !ok {
			t.Fatalf("missing function at %s after round trip", a)
		}
		if have.Name != want.Name || have.Module != want.Module {
			t.Errorf("function %s: got name=%q module=%q, want name=%q module=%q", a, have.Name, have.Module, want.Name, want.Module)
		}
		if len(have.CFG.Blocks) != len(want.CFG.Blocks) {
			t.Errorf("function %s: got %d blocks, want %d", a, len(have.CFG.Blocks), len(want.CFG.Blocks))
		}
	}

	if got.Calls.Multiplicity(0x1000, 0x1800) != 1 {
		t.Errorf("Multiplicity(main,helper) = %d, want 1", got.Calls.Multiplicity(0x1000, 0x1800))
	}
	if name := got.Symbols.NameOf(0x1000); name != "main" {
		t.Errorf("NameOf(0x1000) = %q, want main", name)
	}
	if len(got.Modules) != 1 || got.Modules[0] != "test.elf" {
		t.Errorf("Modules = %v, want [test.elf]", got.Modules)
	}
}
