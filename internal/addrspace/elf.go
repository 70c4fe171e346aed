package addrspace

import (
	"debug/elf"
	"errors"
	"fmt"

	"makecfg/internal/addr"
	"makecfg/internal/symtab"
)

var (
	// ErrNot32Bit is returned when the input ELF is not a 32-bit binary.
	// 64-bit binaries are out of scope (see spec Non-goals).
	ErrNot32Bit = errors.New("addrspace: not a 32-bit ELF")
	// ErrNoEntrySection is returned when no PROGBITS section covers the
	// entry point.
	ErrNoEntrySection = errors.New("addrspace: no section covers the entry point")
	// ErrAmbiguousEntry is returned when more than one PROGBITS section
	// covers the entry point. The original make-cfg treated this as an
	// invariant violation and aborted; make-cfg does the same.
	ErrAmbiguousEntry = errors.New("addrspace: multiple sections cover the entry point")
)

// Loaded bundles everything Load recovers from an ELF file: the memory
// image, the symbol table, the entry address, and the module name (the
// path it was loaded from, matching the original's addModule call).
type Loaded struct {
	AS      *AddressSpace
	Symbols *symtab.Table
	Entry   addr.Address
	Module  string
}

// Load reads a 32-bit ELF executable and produces an AddressSpace plus a
// SymbolTable. Sections whose flags include SHF_ALLOC are accepted, and so
// is the SHT_SYMTAB section; PROGBITS and SYMTAB sections get their bytes
// read from the file, other allocated sections merely reserve their address
// range. PROGBITS sections without SHF_ALLOC (such as .comment) are not
// loaded.
func Load(path string) (*Loaded, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("addrspace: open %s: %w", path, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("%w: %s", ErrNot32Bit, path)
	}

	entry := addr.Address(f.Entry)

	var sections []Section
	var candidateCount int

	for _, s := range f.Sections {
		accept := s.Flags&elf.SHF_ALLOC != 0 || s.Type == elf.SHT_SYMTAB
		if !accept {
			continue
		}

		var data []byte
		if s.Type == elf.SHT_PROGBITS || s.Type == elf.SHT_SYMTAB {
			data, err = s.Data()
			if err != nil {
				return nil, fmt.Errorf("addrspace: read section %s: %w", s.Name, err)
			}
		}

		var flags Flags = Read
		if s.Flags&elf.SHF_WRITE != 0 {
			flags |= Write
		}
		if s.Flags&elf.SHF_EXECINSTR != 0 {
			flags |= Exec
		}

		sections = append(sections, Section{
			Range: addr.Range{Start: addr.Address(s.Addr), Length: uint32(s.Size)},
			Bytes: data,
			Flags: flags,
			Name:  s.Name,
		})

		if s.Type == elf.SHT_PROGBITS && entry >= addr.Address(s.Addr) &&
			uint64(entry) < s.Addr+s.Size {
			candidateCount++
		}
	}

	switch {
	case candidateCount == 0:
		return nil, fmt.Errorf("%w: entry 0x%x", ErrNoEntrySection, uint32(entry))
	case candidateCount > 1:
		return nil, fmt.Errorf("%w: entry 0x%x", ErrAmbiguousEntry, uint32(entry))
	}

	as, err := New(sections)
	if err != nil {
		return nil, err
	}

	syms, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("addrspace: read symbols: %w", err)
	}

	table := symtab.New()
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		table.Add(addr.Address(s.Value), s.Name)
	}

	return &Loaded{AS: as, Symbols: table, Entry: entry, Module: path}, nil
}
