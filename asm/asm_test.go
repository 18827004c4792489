package asm

import (
	"testing"

	"github.com/aridashti/zagros/op"
)

func TestAssembleSimpleProgram(t *testing.T) {
	src := "lb 137\nlb 137\nad\nhs\n"
	got, err := Assemble("t.zs", src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{byte(op.OpLB), 137, byte(op.OpLB), 137, byte(op.OpAD), byte(op.OpHS)}
	if string(got) != string(want) {
		t.Errorf("Assemble = %v, want %v", got, want)
	}
}

func TestAssembleLabelForwardReference(t *testing.T) {
	src := `
lb :target
ju
no
no
target:
hs
`
	got, err := Assemble("t.zs", src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// lb :target -> 2 bytes, ju -> 1 byte, no,no -> 2 bytes, hs at offset 5.
	if len(got) != 6 {
		t.Fatalf("len(got) = %d, want 6", len(got))
	}
	if got[1] != 5 {
		t.Errorf("resolved label operand = %d, want 5", got[1])
	}
	if got[len(got)-1] != byte(op.OpHS) {
		t.Errorf("last byte = 0x%02x, want HS", got[len(got)-1])
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	if _, err := Assemble("t.zs", "bogus\n"); err == nil {
		t.Error("expected error for unknown mnemonic")
	}
}

func TestAssembleMissingOperand(t *testing.T) {
	if _, err := Assemble("t.zs", "lb\n"); err == nil {
		t.Error("expected error for missing operand")
	}
}

func TestAssembleUnexpectedOperand(t *testing.T) {
	if _, err := Assemble("t.zs", "no 1\n"); err == nil {
		t.Error("expected error for unexpected operand on no")
	}
}

func TestAssembleDuplicateLabel(t *testing.T) {
	src := "a:\nno\na:\nhs\n"
	if _, err := Assemble("t.zs", src); err == nil {
		t.Error("expected error for duplicate label")
	}
}

func TestAssembleUndefinedLabel(t *testing.T) {
	if _, err := Assemble("t.zs", "lb :nope\nhs\n"); err == nil {
		t.Error("expected error for undefined label")
	}
}

func TestAssembleHexOperand(t *testing.T) {
	got, err := Assemble("t.zs", "lb 0xFF\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got[1] != 0xFF {
		t.Errorf("operand = 0x%02x, want 0xff", got[1])
	}
}

func TestAssembleLWEncodesEightByteWordAtOffsetFour(t *testing.T) {
	got, err := Assemble("t.zs", "lw 0xAABBCCDD\nhs\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// lw -> 8 bytes (opcode, 3 pad, 4 word), hs -> 1 byte at offset 8.
	if len(got) != 9 {
		t.Fatalf("len(got) = %d, want 9", len(got))
	}
	if got[0] != byte(op.OpLW) {
		t.Errorf("got[0] = 0x%02x, want OpLW", got[0])
	}
	if got[1] != 0 || got[2] != 0 || got[3] != 0 {
		t.Errorf("padding bytes = %v, want zero", got[1:4])
	}
	word := op.Endian.Uint32(got[4:8])
	if word != 0xAABBCCDD {
		t.Errorf("word at offset 4 = 0x%08x, want 0xaabbccdd", word)
	}
	if got[8] != byte(op.OpHS) {
		t.Errorf("got[8] = 0x%02x, want OpHS", got[8])
	}
}

func TestAssembleLWLabelAfterLWResolvesPastEightBytes(t *testing.T) {
	src := "lw 0\nlb :target\ntarget:\nhs\n"
	got, err := Assemble("t.zs", src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// lw -> 8 bytes, lb :target -> 2 bytes, so "target" (and hs) must land
	// at offset 10, not 7 (the old, wrong 5-byte lw stride would have
	// placed it at offset 7).
	if len(got) != 11 {
		t.Fatalf("len(got) = %d, want 11", len(got))
	}
	if got[9] != 10 {
		t.Errorf("resolved label operand = %d, want 10", got[9])
	}
	if got[10] != byte(op.OpHS) {
		t.Errorf("got[10] = 0x%02x, want OpHS", got[10])
	}
}
