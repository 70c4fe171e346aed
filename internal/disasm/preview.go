package disasm

import (
	"fmt"
	"strings"

	"makecfg/internal/addr"
)

// Preview renders a short hex+disassembly trace starting at from, following
// Next1 up to n instructions. It is the Go counterpart of the original
// make-cfg.cc sample_disass helper: a diagnostic dump, not used by the
// fixpoint itself, wired to the CLI's --verbose flag.
func Preview(dec Decoder, fetch func(addr.Address, int) ([]byte, error), from addr.Address, n int) string {
	var b strings.Builder
	a := from
	for i := 0; i < n; i++ {
		code, err := fetch(a, 16)
		if err != nil || len(code) == 0 {
			fmt.Fprintf(&b, "%s: <out of range>\n", a)
			break
		}
		inst, err := Decode(dec, a, code)
		if err != nil {
			fmt.Fprintf(&b, "%s: <decode error: %v>\n", a, err)
			break
		}
		fmt.Fprintf(&b, "%s: %-32s (next1=%s next2=%s)\n", a, inst.Disasm, inst.Next1, inst.Next2)
		if inst.Next1 == 0 {
			break
		}
		a = inst.Next1
	}
	return b.String()
}
