// Package disasm decodes one instruction at a time through the Decoder
// contract (spec §4.3) and categorizes it for basic-block construction. The
// concrete decoder wraps golang.org/x/arch/x86/x86asm; nothing above this
// package knows that.
package disasm

import "makecfg/internal/addr"

// Category classifies an instruction for control-flow purposes, matching
// the fixed vocabulary of spec §3.
type Category string

const (
	Sequential          Category = "sequential"
	ConditionalBranch   Category = "conditional_branch"
	UnconditionalBranch Category = "unconditional_branch"
	Call                Category = "call"
	Return              Category = "return"
	Indirect            Category = "indirect"
	Other               Category = "other"
)

// Instruction is the immutable record produced by decoding one address.
// Next2 is non-zero only for ConditionalBranch. CallTarget/HasCallTarget
// are populated only when Category is Call and the target address is a
// direct immediate recoverable from the bytes alone.
type Instruction struct {
	Address       addr.Address
	Length        uint32
	Category      Category
	Next1         addr.Address
	Next2         addr.Address
	CallTarget    addr.Address
	HasCallTarget bool

	Bytes  []byte // raw encoding, for disassembly text and JSON emission
	Disasm string // human-readable rendering, e.g. "call 0x8048420"

	// Malformed is set when decoding this instruction failed; the block
	// containing it is truncated here and flagged for the sanity report.
	Malformed bool
}

// Decoded is what a Decoder reports for one instruction, before the
// disasm package wraps it with the raw bytes and text into an Instruction.
type Decoded struct {
	Length        uint32
	Next1         addr.Address
	Next2         addr.Address
	Category      Category
	CallTarget    addr.Address
	HasCallTarget bool
	Text          string
}

// Decoder is the external contract spec §4.3 describes: given an address
// and a byte slice starting at that address, decode exactly one
// instruction. Implementations must not consume more bytes than Length
// reports, since the caller only guarantees bytes up to the end of the
// covering section are valid to read.
type Decoder interface {
	Decode(a addr.Address, code []byte) (Decoded, error)
}

// Decode consults dec once for address a and wraps the result as an
// Instruction, caching the raw bytes and disassembly text alongside the
// control-flow facts the rest of the package needs.
func Decode(dec Decoder, a addr.Address, code []byte) (Instruction, error) {
	d, err := dec.Decode(a, code)
	if err != nil {
		return Instruction{Address: a, Malformed: true}, err
	}
	n := d.Length
	if uint32(len(code)) < n {
		n = uint32(len(code))
	}
	raw := make([]byte, n)
	copy(raw, code[:n])
	return Instruction{
		Address:       a,
		Length:        d.Length,
		Category:      d.Category,
		Next1:         d.Next1,
		Next2:         d.Next2,
		CallTarget:    d.CallTarget,
		HasCallTarget: d.HasCallTarget,
		Bytes:         raw,
		Disasm:        d.Text,
	}, nil
}

// Terminates reports whether an instruction of this category ends a basic
// block by itself — spec §3 invariant (b): only the last instruction of a
// block may have one of these categories.
func (c Category) Terminates() bool {
	switch c {
	case Return, Indirect, UnconditionalBranch, ConditionalBranch, Call, Other:
		return true
	default:
		return false
	}
}
