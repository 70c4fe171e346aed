// Package addrspace models the flat, address-indexed memory image that the
// rest of make-cfg decodes and walks. It has no knowledge of ELF; elf.go
// builds an AddressSpace from a 32-bit ELF file.
package addrspace

import (
	"errors"
	"fmt"
	"sort"

	"makecfg/internal/addr"
)

// Flags describes the permissions of a Section, mirroring the ELF section
// flags SHF_WRITE / SHF_EXECINSTR. Sections are always readable.
type Flags uint8

const (
	Read Flags = 1 << iota
	Write
	Exec
)

func (f Flags) String() string {
	s := "r"
	if f&Write != 0 {
		s += "w"
	} else {
		s += "-"
	}
	if f&Exec != 0 {
		s += "x"
	} else {
		s += "-"
	}
	return s
}

// Section is a contiguous, non-overlapping slice of address space. Bytes is
// nil for sections that reserve address range but carry no file-backed
// content (e.g. .bss).
type Section struct {
	addr.Range
	Bytes []byte
	Flags Flags
	Name  string
}

// HasBytes reports whether byte-level reads are possible in this section.
func (s Section) HasBytes() bool {
	return s.Bytes != nil
}

var (
	// ErrOutOfRange is returned by ByteAt when the address is not covered
	// by any section, or is covered by a section with no backing bytes.
	ErrOutOfRange = errors.New("addrspace: address out of range")
	// ErrOverlap is returned while building an AddressSpace from sections
	// that overlap in address range.
	ErrOverlap = errors.New("addrspace: overlapping sections")
)

// AddressSpace is an immutable, non-overlapping collection of Sections
// spanning [Min, Max).
type AddressSpace struct {
	sections []Section
	min, max addr.Address
}

// New builds an AddressSpace from a slice of Sections. Sections need not be
// sorted; New sorts and validates non-overlap.
func New(sections []Section) (*AddressSpace, error) {
	sorted := make([]Section, len(sections))
	copy(sorted, sections)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Length == 0 {
			continue
		}
		if prev.Length != 0 && cur.Start < prev.End() {
			return nil, fmt.Errorf("%w: %s [%s,%s) overlaps %s [%s,%s)",
				ErrOverlap, cur.Name, cur.Start, cur.End(), prev.Name, prev.Start, prev.End())
		}
	}

	as := &AddressSpace{sections: sorted}
	if len(sorted) > 0 {
		as.min = sorted[0].Start
		for _, s := range sorted {
			if e := s.End(); e > as.max {
				as.max = e
			}
		}
	}
	return as, nil
}

// Min is the lowest address covered by any section.
func (as *AddressSpace) Min() addr.Address { return as.min }

// Max is the address just past the highest address covered by any section.
func (as *AddressSpace) Max() addr.Address { return as.max }

// Sections returns the sections in ascending address order. The returned
// slice must not be mutated.
func (as *AddressSpace) Sections() []Section { return as.sections }

// SectionFor returns the section covering a, if any.
func (as *AddressSpace) SectionFor(a addr.Address) (Section, bool) {
	// Sections are sorted and non-overlapping: binary search for the last
	// section whose Start <= a, then check containment.
	i := sort.Search(len(as.sections), func(i int) bool { return as.sections[i].Start > a })
	if i == 0 {
		return Section{}, false
	}
	s := as.sections[i-1]
	if s.Contains(a) {
		return s, true
	}
	return Section{}, false
}

// ByteAt fetches a single byte at a. It fails if a is not covered by a
// loaded, bytes-present section.
func (as *AddressSpace) ByteAt(a addr.Address) (byte, error) {
	s, ok := as.SectionFor(a)
	if !ok || !s.HasBytes() {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, a)
	}
	off := uint32(a) - uint32(s.Start)
	if int(off) >= len(s.Bytes) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, a)
	}
	return s.Bytes[off], nil
}

// BytesAt returns up to n bytes starting at a, truncated to the end of the
// covering section. It fails if a itself is out of range.
func (as *AddressSpace) BytesAt(a addr.Address, n int) ([]byte, error) {
	s, ok := as.SectionFor(a)
	if !ok || !s.HasBytes() {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, a)
	}
	off := int(uint32(a) - uint32(s.Start))
	if off >= len(s.Bytes) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, a)
	}
	end := off + n
	if end > len(s.Bytes) {
		end = len(s.Bytes)
	}
	return s.Bytes[off:end], nil
}

// IsExecutable reports whether a falls within a section flagged executable.
func (as *AddressSpace) IsExecutable(a addr.Address) bool {
	s, ok := as.SectionFor(a)
	return ok && s.Flags&Exec != 0
}
