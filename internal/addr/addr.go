// Package addr defines the address type shared by every layer of make-cfg,
// from section loading up to emission. Keeping it in its own package lets
// addrspace, symtab, disasm, cfg and program all depend on it without
// depending on each other.
package addr

import "fmt"

// Address is a virtual address in the analyzed 32-bit ELF binary.
type Address uint32

// String renders the address the way the rest of the toolchain expects it
// in filenames and textual output: lowercase hex, zero-padded to 8 digits.
func (a Address) String() string {
	return fmt.Sprintf("%08x", uint32(a))
}

// Hex renders the address with a leading "0x", used in JSON/DOT/VCG output.
func (a Address) Hex() string {
	return fmt.Sprintf("0x%x", uint32(a))
}

// Range is a half-open address interval [Start, Start+Length).
type Range struct {
	Start  Address
	Length uint32
}

// End returns the address just past the range.
func (r Range) End() Address {
	return Address(uint32(r.Start) + r.Length)
}

// Contains reports whether a falls within [Start, End).
func (r Range) Contains(a Address) bool {
	return a >= r.Start && a < r.End()
}
