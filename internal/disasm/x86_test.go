package disasm

import (
	"testing"

	"makecfg/internal/addr"
)

func TestX86Decoder_Return(t *testing.T) {
	code := []byte{0xC3} // ret
	d, err := X86Decoder{}.Decode(0x1000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != Return {
		t.Errorf("category = %s, want return", d.Category)
	}
	if d.Next1 != 0 || d.Next2 != 0 {
		t.Errorf("next1/next2 = %s/%s, want 0/0", d.Next1, d.Next2)
	}
}

func TestX86Decoder_DirectCall(t *testing.T) {
	// call rel32: e8 <rel32>. rel = 0x10 -> target = pc + 5 + 0x10.
	code := []byte{0xE8, 0x10, 0x00, 0x00, 0x00}
	d, err := X86Decoder{}.Decode(0x1000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != Call {
		t.Fatalf("category = %s, want call", d.Category)
	}
	if !d.HasCallTarget {
		t.Fatal("expected a direct call target")
	}
	wantTarget := addr.Address(0x1000 + 5 + 0x10)
	if d.CallTarget != wantTarget {
		t.Errorf("call target = %s, want %s", d.CallTarget, wantTarget)
	}
	wantFallthrough := addr.Address(0x1005)
	if d.Next1 != wantFallthrough {
		t.Errorf("next1 = %s, want %s", d.Next1, wantFallthrough)
	}
}

func TestX86Decoder_IndirectCall(t *testing.T) {
	// call eax: ff d0
	code := []byte{0xFF, 0xD0}
	d, err := X86Decoder{}.Decode(0x2000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != Call {
		t.Fatalf("category = %s, want call", d.Category)
	}
	if d.HasCallTarget {
		t.Error("indirect call must not report a direct target")
	}
	if d.Next1 != 0x2002 {
		t.Errorf("next1 = %s, want 0x2002", d.Next1)
	}
}

func TestX86Decoder_UnconditionalJump(t *testing.T) {
	// jmp rel8: eb 10 -> target = pc + 2 + 0x10
	code := []byte{0xEB, 0x10}
	d, err := X86Decoder{}.Decode(0x3000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != UnconditionalBranch {
		t.Fatalf("category = %s, want unconditional_branch", d.Category)
	}
	want := addr.Address(0x3000 + 2 + 0x10)
	if d.Next1 != want {
		t.Errorf("next1 = %s, want %s", d.Next1, want)
	}
	if d.Next2 != 0 {
		t.Errorf("next2 = %s, want 0", d.Next2)
	}
}

func TestX86Decoder_IndirectJump(t *testing.T) {
	// jmp eax: ff e0
	code := []byte{0xFF, 0xE0}
	d, err := X86Decoder{}.Decode(0x4000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != Indirect {
		t.Fatalf("category = %s, want indirect", d.Category)
	}
	if d.Next1 != 0 || d.Next2 != 0 {
		t.Errorf("next1/next2 = %s/%s, want 0/0", d.Next1, d.Next2)
	}
}

func TestX86Decoder_ConditionalJump(t *testing.T) {
	// jne rel8: 75 10 -> taken = pc + 2 + 0x10, fallthrough = pc + 2
	code := []byte{0x75, 0x10}
	d, err := X86Decoder{}.Decode(0x5000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != ConditionalBranch {
		t.Fatalf("category = %s, want conditional_branch", d.Category)
	}
	wantTaken := addr.Address(0x5000 + 2 + 0x10)
	wantFall := addr.Address(0x5002)
	if d.Next1 != wantTaken {
		t.Errorf("next1 (taken) = %s, want %s", d.Next1, wantTaken)
	}
	if d.Next2 != wantFall {
		t.Errorf("next2 (fallthrough) = %s, want %s", d.Next2, wantFall)
	}
}

func TestX86Decoder_Sequential(t *testing.T) {
	// nop: 90
	code := []byte{0x90}
	d, err := X86Decoder{}.Decode(0x6000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Category != Sequential {
		t.Fatalf("category = %s, want sequential", d.Category)
	}
	if d.Next1 != 0x6001 {
		t.Errorf("next1 = %s, want 0x6001", d.Next1)
	}
}

func TestX86Decoder_InvalidBytes(t *testing.T) {
	code := []byte{0x0F, 0xFF} // undefined opcode
	if _, err := (X86Decoder{}).Decode(0x7000, code); err == nil {
		t.Fatal("expected a decode error for invalid bytes")
	}
}

func TestDecode_WrapsRawBytes(t *testing.T) {
	code := []byte{0xC3, 0x90, 0x90}
	inst, err := Decode(X86Decoder{}, 0x1000, code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(inst.Bytes) != 1 || inst.Bytes[0] != 0xC3 {
		t.Errorf("Bytes = %v, want [0xC3]", inst.Bytes)
	}
	if !inst.Category.Terminates() {
		t.Error("return should terminate a block")
	}
}
