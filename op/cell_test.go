package op

import "testing"

func TestCellRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 137, -137, 2147483647, -2147483648}
	for _, x := range cases {
		got := CellFromI32(x).AsI32()
		if got != x {
			t.Errorf("CellFromI32(%d).AsI32() = %d, want %d", x, got, x)
		}
	}

	ucases := []uint32{0, 1, 255, 4294967295}
	for _, x := range ucases {
		got := CellFromU32(x).AsU32()
		if got != x {
			t.Errorf("CellFromU32(%d).AsU32() = %d, want %d", x, got, x)
		}
	}

	for _, b := range []bool{true, false} {
		if CellFromBool(b).AsBool() != b {
			t.Errorf("CellFromBool(%v).AsBool() != %v", b, b)
		}
	}

	bytes := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}
	if got := CellFromBytes(bytes).AsBytes(); got != bytes {
		t.Errorf("CellFromBytes round trip = %v, want %v", got, bytes)
	}
}

func TestCellBoolEncoding(t *testing.T) {
	trueBytes := CellFromBool(true).AsBytes()
	if trueBytes != [4]byte{0xFF, 0xFF, 0xFF, 0xFF} {
		t.Errorf("true Cell bytes = %v, want all-0xFF", trueBytes)
	}
	falseBytes := CellFromBool(false).AsBytes()
	if falseBytes != [4]byte{0, 0, 0, 0} {
		t.Errorf("false Cell bytes = %v, want all-zero", falseBytes)
	}
}

func TestCellLittleEndianStorage(t *testing.T) {
	c := CellFromU32(0x01020304)
	bs := c.AsBytes()
	want := [4]byte{0x04, 0x03, 0x02, 0x01}
	if bs != want {
		t.Errorf("little-endian bytes = %v, want %v", bs, want)
	}
}

func TestCellEqNe(t *testing.T) {
	a := CellFromI32(5)
	b := CellFromI32(5)
	c := CellFromI32(6)

	if !a.EqCell(b).AsBool() {
		t.Error("expected a == b")
	}
	if a.NeCell(b).AsBool() {
		t.Error("expected a == b, NeCell should be false")
	}
	if !a.NeCell(c).AsBool() {
		t.Error("expected a != c")
	}
}

func TestCellLtGt(t *testing.T) {
	neg := CellFromI32(-1)
	one := CellFromI32(1)

	if !neg.Lt(one, Signed).AsBool() {
		t.Error("signed: -1 < 1")
	}
	if neg.Lt(one, Unsigned).AsBool() {
		t.Error("unsigned: 0xFFFFFFFF is not < 1")
	}
	if !CellFromF32(1.5).Lt(CellFromF32(2.5), Float).AsBool() {
		t.Error("float: 1.5 < 2.5")
	}
	if !one.Gt(neg, Signed).AsBool() {
		t.Error("signed: 1 > -1")
	}
}

func TestCellArithmeticWraps(t *testing.T) {
	max := CellFromI32(2147483647)
	one := CellFromI32(1)
	got := max.Add(one, Signed).AsI32()
	if got != -2147483648 {
		t.Errorf("signed overflow add = %d, want wraparound to min i32", got)
	}
}

func TestCellDivMod(t *testing.T) {
	e, rem, quot := CellFromI32(255).DivMod(CellFromI32(8), Unsigned)
	if e != None {
		t.Fatalf("unexpected error: %v", e)
	}
	if quot.AsI32() != 31 || rem.AsI32() != 7 {
		t.Errorf("255/8 = quot %d rem %d, want quot=31 rem=7", quot.AsI32(), rem.AsI32())
	}

	e, _, _ = CellFromI32(1).DivMod(CellFromI32(0), Signed)
	if e != DivisionByZero {
		t.Errorf("divide by zero: got %v, want DivisionByZero", e)
	}

	e, _, _ = CellFromF32(1).DivMod(CellFromF32(0), Float)
	if e != DivisionByZero {
		t.Errorf("float divide by zero: got %v, want DivisionByZero", e)
	}
}

func TestCellMulDivMod(t *testing.T) {
	e, rem, quot := CellFromI32(3).MulDivMod(CellFromI32(4), CellFromI32(5), Signed)
	if e != None {
		t.Fatalf("unexpected error: %v", e)
	}
	// (3*4) rem 5 = 2, (3*4)/5 = 2
	if quot.AsI32() != 2 || rem.AsI32() != 2 {
		t.Errorf("(3*4) rem/quot 5 = rem %d quot %d, want rem=2 quot=2", rem.AsI32(), quot.AsI32())
	}
}

func TestCellBitwise(t *testing.T) {
	a := CellFromU32(0b1100)
	b := CellFromU32(0b1010)
	if a.And(b).AsU32() != 0b1000 {
		t.Error("and mismatch")
	}
	if a.Or(b).AsU32() != 0b1110 {
		t.Error("or mismatch")
	}
	if a.Xor(b).AsU32() != 0b0110 {
		t.Error("xor mismatch")
	}
	if CellFromU32(0).Not().AsU32() != 0xFFFFFFFF {
		t.Error("not mismatch")
	}
}

func TestCellShift(t *testing.T) {
	e, got := CellFromU32(1).Shl(CellFromU32(4), Unsigned)
	if e != None || got.AsU32() != 16 {
		t.Errorf("1<<4 = %d (err %v), want 16", got.AsU32(), e)
	}

	// Shift distance is masked to the low 5 bits, so 32 behaves like 0.
	e, got = CellFromU32(1).Shl(CellFromU32(32), Unsigned)
	if e != None || got.AsU32() != 1 {
		t.Errorf("1<<32 (masked) = %d (err %v), want 1", got.AsU32(), e)
	}

	if e, _ := CellFromF32(1).Shl(CellFromU32(1), Float); e != InvalidFloatOperation {
		t.Errorf("shift in float mode: got %v, want InvalidFloatOperation", e)
	}
}

func TestCellPackUnpackByteLayout(t *testing.T) {
	// Mirrors the PA/UN opcode semantics: Cell(d, c, b, a) puts a in the
	// highest byte.
	packed := CellFromBytes([4]byte{0xDD, 0xCC, 0xBB, 0xAA})
	if packed.AsU32() != 0xAABBCCDD {
		t.Errorf("packed = 0x%08x, want 0xaabbccdd", packed.AsU32())
	}
}
