package render

import (
	"encoding/hex"
	"encoding/json"

	"makecfg/internal/program"
)

// jsonInstruction matches spec §6's per-instruction JSON object.
type jsonInstruction struct {
	Address  string `json:"address"`
	Bytes    string `json:"bytes"`
	Disasm   string `json:"disasm"`
	Category string `json:"category"`
}

type jsonBlock struct {
	Address      string             `json:"address"`
	Instructions []jsonInstruction  `json:"instructions"`
	Successors   []string           `json:"successors"`
}

type jsonFunction struct {
	Address string      `json:"address"`
	Name    string      `json:"name"`
	Module  string      `json:"module"`
	Blocks  []jsonBlock `json:"blocks"`
}

// JSON renders the whole program as the aggregate array spec §6 describes:
// one object per function, in ascending entry-address order.
func JSON(p *program.Program) ([]byte, error) {
	funcs := make([]jsonFunction, 0, len(p.Functions()))
	for _, a := range p.SortedEntries() {
		f, _ := p.Get(a)
		funcs = append(funcs, toJSONFunction(f))
	}
	return json.MarshalIndent(funcs, "", "  ")
}

func toJSONFunction(f *program.Function) jsonFunction {
	jf := jsonFunction{
		Address: f.Entry.Hex(),
		Name:    f.Name,
		Module:  f.Module,
	}
	for _, e := range f.CFG.SortedEntries() {
		blk := f.CFG.Blocks[e]
		jb := jsonBlock{Address: e.Hex()}
		for _, inst := range blk.Instructions {
			jb.Instructions = append(jb.Instructions, jsonInstruction{
				Address:  inst.Address.Hex(),
				Bytes:    hex.EncodeToString(inst.Bytes),
				Disasm:   inst.Disasm,
				Category: string(inst.Category),
			})
		}
		for _, s := range blk.Successors {
			jb.Successors = append(jb.Successors, s.Hex())
		}
		jf.Blocks = append(jf.Blocks, jb)
	}
	return jf
}
