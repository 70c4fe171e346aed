package disasm

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"makecfg/internal/addr"
)

// X86Decoder decodes 32-bit x86 instructions via golang.org/x/arch/x86/x86asm,
// the concrete backend behind the Decoder contract for the 32-bit ELF
// binaries spec.md targets.
type X86Decoder struct{}

// Decode implements Decoder.
func (X86Decoder) Decode(a addr.Address, code []byte) (Decoded, error) {
	inst, err := x86asm.Decode(code, 32)
	if err != nil {
		return Decoded{}, fmt.Errorf("disasm: decode 0x%x: %w", uint32(a), err)
	}
	if inst.Op == 0 {
		return Decoded{}, fmt.Errorf("disasm: decode 0x%x: unrecognized instruction", uint32(a))
	}

	length := uint32(inst.Len)
	fallthroughAddr := a + addr.Address(length)
	text := x86asm.GNUSyntax(inst, uint64(a), nil)

	d := Decoded{Length: length, Text: text}

	switch inst.Op {
	case x86asm.RET, x86asm.LRET:
		d.Category = Return

	case x86asm.CALL, x86asm.LCALL:
		d.Category = Call
		d.Next1 = fallthroughAddr
		if target, ok := directTarget(inst, a, length); ok {
			d.CallTarget = target
			d.HasCallTarget = true
		}

	case x86asm.JMP:
		if target, ok := directTarget(inst, a, length); ok {
			d.Category = UnconditionalBranch
			d.Next1 = target
		} else {
			d.Category = Indirect
		}

	case x86asm.HLT, x86asm.UD2, x86asm.INT:
		// INT/INT3 (e.g. the int 0x80 syscall gate) usually return control to
		// the next instruction, but are grouped with the genuinely
		// non-returning HLT/UD2 here; buildBlock treats Other as a
		// no-successor terminator, so this conservatively truncates the
		// block rather than assume the syscall returns.
		d.Category = Other

	default:
		if isConditionalJump(inst.Op) {
			d.Category = ConditionalBranch
			if target, ok := directTarget(inst, a, length); ok {
				d.Next1 = target
				d.Next2 = fallthroughAddr
			} else {
				// Decoder cannot recover a target; treat conservatively as
				// having no statically known successors.
				d.Category = Indirect
			}
		} else {
			d.Category = Sequential
			d.Next1 = fallthroughAddr
		}
	}

	return d, nil
}

// directTarget extracts a PC-relative immediate branch/call target, the
// only form of "direct" target the decoder contract recovers.
func directTarget(inst x86asm.Inst, from addr.Address, length uint32) (addr.Address, bool) {
	if len(inst.Args) == 0 {
		return 0, false
	}
	rel, ok := inst.Args[0].(x86asm.Rel)
	if !ok {
		return 0, false
	}
	return from + addr.Address(length) + addr.Address(int32(rel)), true
}

// isConditionalJump reports whether op is one of the Jcc/LOOP family that
// x86asm assigns a distinct Op per condition (there is no single "Jcc"
// constant, mirroring how resurgo distinguishes x86asm.JMP — always
// unconditional — from the conditional opcodes).
func isConditionalJump(op x86asm.Op) bool {
	switch op {
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JE,
		x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE, x86asm.JNE,
		x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JS,
		x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE:
		return true
	default:
		return false
	}
}
