package render

import (
	"encoding/json"
	"strings"
	"testing"

	"makecfg/internal/addr"
	"makecfg/internal/cfg"
	"makecfg/internal/disasm"
	"makecfg/internal/program"
	"makecfg/internal/symtab"
)

func twoBlockFunction() *program.Function {
	entry := addr.Address(0x1000)
	fall := addr.Address(0x1005)

	c := cfg.New(entry)
	c.Blocks[entry] = &cfg.BasicBlock{
		Entry: entry,
		Instructions: []disasm.Instruction{
			{Address: entry, Length: 5, Category: disasm.Call, Next1: fall, CallTarget: 0x2000, HasCallTarget: true,
				Bytes: []byte{0xE8, 0, 0, 0, 0}, Disasm: "call 0x2000"},
		},
		Successors: []addr.Address{fall},
	}
	c.Blocks[fall] = &cfg.BasicBlock{
		Entry: fall,
		Instructions: []disasm.Instruction{
			{Address: fall, Length: 1, Category: disasm.Return, Bytes: []byte{0xC3}, Disasm: "ret"},
		},
	}

	return &program.Function{Entry: entry, Name: "main", Module: "a.elf", CFG: c}
}

func TestVCGFunction_ContainsNodesAndEdge(t *testing.T) {
	out := VCGFunction(twoBlockFunction())
	if !strings.Contains(out, "graph: {") {
		t.Error("missing graph header")
	}
	if !strings.Contains(out, "00001000") || !strings.Contains(out, "00001005") {
		t.Errorf("missing block node titles: %s", out)
	}
	if !strings.Contains(out, `label: "fall"`) {
		t.Errorf("missing fall-through edge: %s", out)
	}
}

func TestJSON_RoundTripsFunctionShape(t *testing.T) {
	p := program.New(nil, symtab.New())
	f := twoBlockFunction()
	p.Ensure(f.Entry)
	got, _ := p.Get(f.Entry)
	*got = *f

	data, err := JSON(p)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}
	fn := decoded[0]
	if fn["address"] != "0x1000" {
		t.Errorf("address = %v, want 0x1000", fn["address"])
	}
	if fn["name"] != "main" {
		t.Errorf("name = %v, want main", fn["name"])
	}
	blocks, ok := fn["blocks"].([]interface{})
	if !ok || len(blocks) != 2 {
		t.Fatalf("blocks = %v, want 2 entries", fn["blocks"])
	}
}

func TestDOTFunction_DelegatesToLatticeRender(t *testing.T) {
	out := DOTFunction(twoBlockFunction())
	if out == "" {
		t.Error("DOTFunction returned empty output")
	}
}
