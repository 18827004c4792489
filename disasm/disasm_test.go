package disasm

import (
	"testing"

	"github.com/aridashti/zagros/asm"
	"github.com/aridashti/zagros/op"
)

func TestRoundTripAssembleDecode(t *testing.T) {
	src := "lb 137\nlb 137\nad\nhs\n"
	program, err := asm.Assemble("t.zs", src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	ins := Decode(program)
	if len(ins) != 4 {
		t.Fatalf("len(ins) = %d, want 4", len(ins))
	}
	if ins[0].Opcode != op.OpLB || ins[0].Operand != 137 {
		t.Errorf("ins[0] = %+v, want LB 137", ins[0])
	}
	if ins[3].Opcode != op.OpHS {
		t.Errorf("ins[3].Opcode = %v, want HS", ins[3].Opcode)
	}
}

func TestDecodeSimpleProgram(t *testing.T) {
	program := []byte{byte(op.OpLB), 137, byte(op.OpLB), 137, byte(op.OpAD), byte(op.OpHS)}
	ins := Decode(program)
	if len(ins) != 4 {
		t.Fatalf("len(ins) = %d, want 4", len(ins))
	}
	if ins[0].Opcode != op.OpLB || !ins[0].HasOperand || ins[0].Operand != 137 {
		t.Errorf("ins[0] = %+v, want LB 137", ins[0])
	}
	if ins[2].Opcode != op.OpAD || ins[2].HasOperand {
		t.Errorf("ins[2] = %+v, want AD (no operand)", ins[2])
	}
	if ins[3].Offset != 5 {
		t.Errorf("ins[3].Offset = %d, want 5", ins[3].Offset)
	}
}

func TestDecodeStopsAtInvalidOpcode(t *testing.T) {
	program := []byte{byte(op.OpNO), 0xFF, byte(op.OpHS)}
	ins := Decode(program)
	if len(ins) != 1 {
		t.Fatalf("len(ins) = %d, want 1 (stop at invalid byte)", len(ins))
	}
}

func TestDecodeTruncatedOperand(t *testing.T) {
	// LW wants a 4-byte operand but only 2 bytes remain.
	program := []byte{byte(op.OpLW), 1, 2}
	ins := Decode(program)
	if len(ins) != 0 {
		t.Fatalf("len(ins) = %d, want 0 (truncated operand)", len(ins))
	}
}

func TestTextFormatting(t *testing.T) {
	program := []byte{byte(op.OpLB), 42, byte(op.OpHS)}
	text := Text(program)
	if text == "" {
		t.Fatal("Text() returned empty string")
	}
}

func TestRoundTripAssembleDecodeLW(t *testing.T) {
	src := "lw 0xAABBCCDD\nhs\n"
	program, err := asm.Assemble("t.zs", src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	ins := Decode(program)
	if len(ins) != 2 {
		t.Fatalf("len(ins) = %d, want 2", len(ins))
	}
	if ins[0].Opcode != op.OpLW || !ins[0].HasOperand || ins[0].Operand != 0xAABBCCDD {
		t.Errorf("ins[0] = %+v, want LW 0xaabbccdd", ins[0])
	}
	if ins[1].Opcode != op.OpHS || ins[1].Offset != 8 {
		t.Errorf("ins[1] = %+v, want HS at offset 8", ins[1])
	}
}
