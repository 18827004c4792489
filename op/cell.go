package op

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Endian is the byte order of a Cell's wire representation. The spec
// requires little-endian storage regardless of host endianness, so every
// Cell conversion below goes through this rather than unsafe/native casts.
var Endian = binary.LittleEndian

// Cell is the VM's 32-bit tagged-by-mode value: four little-endian bytes
// reinterpretable as i32, u32, f32, bool or a raw byte array depending on
// the instruction's OpMode.
type Cell struct {
	b [4]byte
}

// CellFromI32 builds a Cell from a signed 32-bit value.
func CellFromI32(v int32) Cell {
	var c Cell
	Endian.PutUint32(c.b[:], uint32(v))
	return c
}

// CellFromU32 builds a Cell from an unsigned 32-bit value.
func CellFromU32(v uint32) Cell {
	var c Cell
	Endian.PutUint32(c.b[:], v)
	return c
}

// CellFromF32 builds a Cell from an IEEE-754 single-precision value.
func CellFromF32(v float32) Cell {
	var c Cell
	Endian.PutUint32(c.b[:], math.Float32bits(v))
	return c
}

// CellFromBool builds a Cell whose bytes are all 0xFF when true, all 0x00
// when false.
func CellFromBool(v bool) Cell {
	var c Cell
	if v {
		c.b = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
	}
	return c
}

// CellFromByte builds a Cell whose low byte is b and whose remaining bytes
// are zero.
func CellFromByte(b byte) Cell {
	return Cell{b: [4]byte{b, 0, 0, 0}}
}

// CellFromBytes builds a Cell directly from its four little-endian bytes.
func CellFromBytes(bs [4]byte) Cell {
	return Cell{b: bs}
}

// AsI32 reinterprets the Cell as a signed 32-bit integer.
func (c Cell) AsI32() int32 { return int32(Endian.Uint32(c.b[:])) }

// AsU32 reinterprets the Cell as an unsigned 32-bit integer.
func (c Cell) AsU32() uint32 { return Endian.Uint32(c.b[:]) }

// AsF32 reinterprets the Cell's bits as an IEEE-754 single-precision float.
func (c Cell) AsF32() float32 { return math.Float32frombits(Endian.Uint32(c.b[:])) }

// AsSize returns AsU32, for use as a memory/array index.
func (c Cell) AsSize() uint32 { return c.AsU32() }

// AsBool reports true iff all four bytes equal 0xFF.
func (c Cell) AsBool() bool {
	return c.b[0] == 0xFF && c.b[1] == 0xFF && c.b[2] == 0xFF && c.b[3] == 0xFF
}

// AsByte returns the first (low) byte.
func (c Cell) AsByte() byte { return c.b[0] }

// AsBytes returns the four little-endian bytes.
func (c Cell) AsBytes() [4]byte { return c.b }

// Equal compares two cells byte-wise (equivalently u32-equal), ignoring
// mode.
func (c Cell) Equal(rhs Cell) bool { return c.b == rhs.b }

func (c Cell) String() string {
	return fmt.Sprintf("0x%08x", c.AsU32())
}

// EqCell returns a bool Cell: true iff c equals rhs. Mode-independent.
func (c Cell) EqCell(rhs Cell) Cell { return CellFromBool(c.Equal(rhs)) }

// NeCell returns a bool Cell: true iff c differs from rhs. Mode-independent.
func (c Cell) NeCell(rhs Cell) Cell { return CellFromBool(!c.Equal(rhs)) }

// Lt returns a bool Cell for c < rhs in the given mode.
func (c Cell) Lt(rhs Cell, mode OpMode) Cell {
	switch mode {
	case Unsigned:
		return CellFromBool(c.AsU32() < rhs.AsU32())
	case Float:
		return CellFromBool(c.AsF32() < rhs.AsF32())
	default:
		return CellFromBool(c.AsI32() < rhs.AsI32())
	}
}

// Gt returns a bool Cell for c > rhs in the given mode.
func (c Cell) Gt(rhs Cell, mode OpMode) Cell {
	switch mode {
	case Unsigned:
		return CellFromBool(c.AsU32() > rhs.AsU32())
	case Float:
		return CellFromBool(c.AsF32() > rhs.AsF32())
	default:
		return CellFromBool(c.AsI32() > rhs.AsI32())
	}
}

// Add returns c + rhs in the given mode. Integer modes wrap; float mode
// follows IEEE-754. Never errors.
func (c Cell) Add(rhs Cell, mode OpMode) Cell {
	switch mode {
	case Unsigned:
		return CellFromU32(c.AsU32() + rhs.AsU32())
	case Float:
		return CellFromF32(c.AsF32() + rhs.AsF32())
	default:
		return CellFromI32(c.AsI32() + rhs.AsI32())
	}
}

// Sub returns c - rhs in the given mode.
func (c Cell) Sub(rhs Cell, mode OpMode) Cell {
	switch mode {
	case Unsigned:
		return CellFromU32(c.AsU32() - rhs.AsU32())
	case Float:
		return CellFromF32(c.AsF32() - rhs.AsF32())
	default:
		return CellFromI32(c.AsI32() - rhs.AsI32())
	}
}

// Mul returns c * rhs in the given mode.
func (c Cell) Mul(rhs Cell, mode OpMode) Cell {
	switch mode {
	case Unsigned:
		return CellFromU32(c.AsU32() * rhs.AsU32())
	case Float:
		return CellFromF32(c.AsF32() * rhs.AsF32())
	default:
		return CellFromI32(c.AsI32() * rhs.AsI32())
	}
}

// DivMod returns (remainder, quotient) of c / rhs in the given mode. If rhs
// is zero (integer) or exactly 0.0 (float), it returns DivisionByZero and
// both results are the zero Cell.
func (c Cell) DivMod(rhs Cell, mode OpMode) (Error, Cell, Cell) {
	switch mode {
	case Unsigned:
		r, d := rhs.AsU32(), c.AsU32()
		if r == 0 {
			return DivisionByZero, Cell{}, Cell{}
		}
		return None, CellFromU32(d % r), CellFromU32(d / r)
	case Float:
		r, d := rhs.AsF32(), c.AsF32()
		if r == 0.0 {
			return DivisionByZero, Cell{}, Cell{}
		}
		return None, CellFromF32(float32(math.Mod(float64(d), float64(r)))), CellFromF32(d / r)
	default:
		r, d := rhs.AsI32(), c.AsI32()
		if r == 0 {
			return DivisionByZero, Cell{}, Cell{}
		}
		return None, CellFromI32(d % r), CellFromI32(d / r)
	}
}

// MulDivMod returns (remainder, quotient) of (c*mul) / rhs in the given
// mode, with the same zero-check policy as DivMod.
func (c Cell) MulDivMod(mul, rhs Cell, mode OpMode) (Error, Cell, Cell) {
	switch mode {
	case Unsigned:
		r := rhs.AsU32()
		if r == 0 {
			return DivisionByZero, Cell{}, Cell{}
		}
		prod := c.AsU32() * mul.AsU32()
		return None, CellFromU32(prod % r), CellFromU32(prod / r)
	case Float:
		r := rhs.AsF32()
		if r == 0.0 {
			return DivisionByZero, Cell{}, Cell{}
		}
		prod := c.AsF32() * mul.AsF32()
		return None, CellFromF32(float32(math.Mod(float64(prod), float64(r)))), CellFromF32(prod / r)
	default:
		r := rhs.AsI32()
		if r == 0 {
			return DivisionByZero, Cell{}, Cell{}
		}
		prod := c.AsI32() * mul.AsI32()
		return None, CellFromI32(prod % r), CellFromI32(prod / r)
	}
}

// And returns the bitwise AND of c and rhs. Mode-independent.
func (c Cell) And(rhs Cell) Cell { return CellFromU32(c.AsU32() & rhs.AsU32()) }

// Or returns the bitwise OR of c and rhs. Mode-independent.
func (c Cell) Or(rhs Cell) Cell { return CellFromU32(c.AsU32() | rhs.AsU32()) }

// Xor returns the bitwise XOR of c and rhs. Mode-independent.
func (c Cell) Xor(rhs Cell) Cell { return CellFromU32(c.AsU32() ^ rhs.AsU32()) }

// Not returns the bitwise complement of c. Mode-independent.
func (c Cell) Not() Cell { return CellFromU32(^c.AsU32()) }

// shiftDistance masks rhs down to the low 5 bits: shifting a 32-bit value
// by 32 or more is undefined in the source this VM is ported from; the
// spec resolves it by masking to [0, 31].
func shiftDistance(rhs Cell) uint {
	return uint(rhs.AsU32() & 31)
}

// Shl returns c << rhs in the given mode, masking the shift distance to
// 5 bits. Returns InvalidFloatOperation in Float mode.
func (c Cell) Shl(rhs Cell, mode OpMode) (Error, Cell) {
	d := shiftDistance(rhs)
	switch mode {
	case Unsigned:
		return None, CellFromU32(c.AsU32() << d)
	case Float:
		return InvalidFloatOperation, Cell{}
	default:
		return None, CellFromI32(c.AsI32() << d)
	}
}

// Shr returns c >> rhs in the given mode, masking the shift distance to
// 5 bits. Returns InvalidFloatOperation in Float mode.
func (c Cell) Shr(rhs Cell, mode OpMode) (Error, Cell) {
	d := shiftDistance(rhs)
	switch mode {
	case Unsigned:
		return None, CellFromU32(c.AsU32() >> d)
	case Float:
		return InvalidFloatOperation, Cell{}
	default:
		return None, CellFromI32(c.AsI32() >> d)
	}
}
