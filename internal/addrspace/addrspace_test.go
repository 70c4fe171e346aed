package addrspace

import (
	"errors"
	"testing"

	"makecfg/internal/addr"
)

func TestNew_RejectsOverlap(t *testing.T) {
	_, err := New([]Section{
		{Range: addr.Range{Start: 0x1000, Length: 0x100}, Name: "a"},
		{Range: addr.Range{Start: 0x1080, Length: 0x100}, Name: "b"},
	})
	if !errors.Is(err, ErrOverlap) {
		t.Errorf("err = %v, want ErrOverlap", err)
	}
}

func TestByteAt_ReadsFromCoveringSection(t *testing.T) {
	as, err := New([]Section{
		{Range: addr.Range{Start: 0x1000, Length: 4}, Bytes: []byte{0xAA, 0xBB, 0xCC, 0xDD}, Flags: Read | Exec, Name: ".text"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := as.ByteAt(0x1001)
	if err != nil {
		t.Fatalf("ByteAt: %v", err)
	}
	if b != 0xBB {
		t.Errorf("ByteAt(0x1001) = %#x, want 0xbb", b)
	}
}

func TestByteAt_OutOfRange(t *testing.T) {
	as, _ := New([]Section{
		{Range: addr.Range{Start: 0x1000, Length: 4}, Bytes: []byte{1, 2, 3, 4}, Name: ".text"},
	})
	if _, err := as.ByteAt(0x2000); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
}

func TestBytesAt_TruncatesToSectionEnd(t *testing.T) {
	as, _ := New([]Section{
		{Range: addr.Range{Start: 0x1000, Length: 4}, Bytes: []byte{1, 2, 3, 4}, Name: ".text"},
	})
	got, err := as.BytesAt(0x1002, 16)
	if err != nil {
		t.Fatalf("BytesAt: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(BytesAt) = %d, want 2", len(got))
	}
}

func TestIsExecutable(t *testing.T) {
	as, _ := New([]Section{
		{Range: addr.Range{Start: 0x1000, Length: 4}, Bytes: []byte{0, 0, 0, 0}, Flags: Read | Exec, Name: ".text"},
		{Range: addr.Range{Start: 0x2000, Length: 4}, Bytes: []byte{0, 0, 0, 0}, Flags: Read | Write, Name: ".data"},
	})
	if !as.IsExecutable(0x1001) {
		t.Error(".text should be executable")
	}
	if as.IsExecutable(0x2001) {
		t.Error(".data should not be executable")
	}
}
