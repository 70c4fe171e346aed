package cfg

import (
	"sort"

	"makecfg/internal/addr"
	"makecfg/internal/disasm"
)

// BasicBlock is a maximal straight-line instruction sequence. Successors and
// Predecessors hold only entry-address keys, resolved through the owning
// Cfg's Blocks map — this breaks the cyclic block<->block references
// without weak pointers and keeps serialization a plain value walk.
type BasicBlock struct {
	Entry        addr.Address
	Instructions []disasm.Instruction
	Successors   []addr.Address
	Predecessors []addr.Address

	// Malformed marks a block truncated by a decode failure, or one whose
	// entry address is not in executable code. A fall-through past the end
	// of executable code after at least one decoded instruction ends the
	// block cleanly and does not set it.
	Malformed bool
}

// End returns the address just past the block's last instruction, or Entry
// if the block has no instructions yet.
func (b *BasicBlock) End() addr.Address {
	if len(b.Instructions) == 0 {
		return b.Entry
	}
	last := b.Instructions[len(b.Instructions)-1]
	return last.Address + addr.Address(last.Length)
}

// Contains reports whether a falls within [Entry, End).
func (b *BasicBlock) Contains(a addr.Address) bool {
	return a >= b.Entry && a < b.End()
}

// appendSortedUnique inserts each of items into list, keeping it sorted and
// de-duplicated. A zero address is the decoder's "no successor" sentinel
// and is never recorded.
func appendSortedUnique(list []addr.Address, items ...addr.Address) []addr.Address {
	for _, it := range items {
		if it == 0 {
			continue
		}
		i := sort.Search(len(list), func(i int) bool { return list[i] >= it })
		if i < len(list) && list[i] == it {
			continue
		}
		list = append(list, 0)
		copy(list[i+1:], list[i:])
		list[i] = it
	}
	return list
}

func containsAddr(list []addr.Address, a addr.Address) bool {
	i := sort.Search(len(list), func(i int) bool { return list[i] >= a })
	return i < len(list) && list[i] == a
}
