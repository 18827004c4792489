package op

import "testing"

func TestOpcodeCountIs55(t *testing.T) {
	if int(opcodeCount) != 55 {
		t.Fatalf("opcodeCount = %d, want 55", opcodeCount)
	}
}

func TestOpcodeNumbering(t *testing.T) {
	cases := map[Opcode]byte{
		OpNO: 0,
		OpLW: 1,
		OpLB: 3,
		OpAD: 19,
		OpDM: 22,
		OpPA: 30,
		OpJU: 35,
		OpRE: 37,
		OpHI: 40,
		OpSI: 41,
		OpHS: 44,
		OpUU: 53,
		OpFF: 54,
	}
	for op, want := range cases {
		if byte(op) != want {
			t.Errorf("%s = %d, want %d", Table[op].Mnemonic, byte(op), want)
		}
	}
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("lw")
	if !ok || d.Code != OpLW || d.Operand != OperandWord {
		t.Errorf("Lookup(lw) = %+v, ok=%v", d, ok)
	}
	if _, ok := Lookup("zz"); ok {
		t.Error("Lookup(zz) should not resolve")
	}
}

func TestValid(t *testing.T) {
	if !Valid(byte(OpFF)) {
		t.Error("OpFF should be valid")
	}
	if Valid(255) {
		t.Error("255 should not be a valid opcode")
	}
}
