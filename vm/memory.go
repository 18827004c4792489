package vm

import "github.com/aridashti/zagros/op"

// Memory is the VM's flat, zero-initialized byte array shared by every
// core. A sub-range [IoBegin, IoEnd) is the I/O byte window through which
// the host may read/write bytes while the VM is quiescent.
type Memory struct {
	bytes   []byte
	ioBegin int
	ioEnd   int
}

// NewMemory allocates a zeroed Memory of the given size with the given
// I/O window.
func NewMemory(size, ioBegin, ioEnd int) *Memory {
	return &Memory{bytes: make([]byte, size), ioBegin: ioBegin, ioEnd: ioEnd}
}

// Size returns the memory's fixed byte capacity.
func (m *Memory) Size() int { return len(m.bytes) }

// FetchOpcode reads a single byte at addr. This is the sole mechanism by
// which the interpreter loop ends a program that runs off the end of the
// image: an out-of-range addr yields SystemHalt rather than
// IllegalMemoryAddress.
func (m *Memory) FetchOpcode(addr uint32) (op.Error, byte) {
	if addr >= uint32(len(m.bytes)) {
		return op.SystemHalt, 0
	}
	return op.None, m.bytes[addr]
}

// ReadBytes returns a Cell whose first bs bytes are mem[addr:addr+bs] and
// whose remaining bytes are zero. bs must be 1, 2 or 4.
func (m *Memory) ReadBytes(addr uint32, bs int) (op.Error, op.Cell) {
	if uint64(addr)+uint64(bs) > uint64(len(m.bytes)) {
		return op.IllegalMemoryAddress, op.Cell{}
	}
	var bytes [4]byte
	copy(bytes[:bs], m.bytes[addr:addr+uint32(bs)])
	return op.None, op.CellFromBytes(bytes)
}

// WriteBytes writes the low bs bytes of c's byte representation to
// mem[addr:addr+bs]. bs must be 1, 2 or 4.
func (m *Memory) WriteBytes(addr uint32, c op.Cell, bs int) op.Error {
	if uint64(addr)+uint64(bs) > uint64(len(m.bytes)) {
		return op.IllegalMemoryAddress
	}
	bytes := c.AsBytes()
	copy(m.bytes[addr:addr+uint32(bs)], bytes[:bs])
	return op.None
}

// CopyBlock copies mem[src:src+len] to mem[dst:dst+len] with memmove
// semantics: overlapping ranges do not corrupt the source bytes, unlike
// the original implementation this VM is ported from, which used a plain
// forward std::copy_n regardless of overlap direction.
func (m *Memory) CopyBlock(length int, dst, src uint32) op.Error {
	if uint64(src)+uint64(length) > uint64(len(m.bytes)) || uint64(dst)+uint64(length) > uint64(len(m.bytes)) {
		return op.IllegalMemoryAddress
	}
	if length == 0 {
		return op.None
	}
	s := m.bytes[src : src+uint32(length)]
	d := m.bytes[dst : dst+uint32(length)]
	copy(d, s)
	return op.None
}

// CompareBlock returns a bool Cell: true iff mem[dst:dst+len] is
// byte-identical to mem[src:src+len]. The original source this VM is
// ported from always returned true here; this is the real comparison.
func (m *Memory) CompareBlock(length int, dst, src uint32) (op.Error, op.Cell) {
	if uint64(src)+uint64(length) > uint64(len(m.bytes)) || uint64(dst)+uint64(length) > uint64(len(m.bytes)) {
		return op.IllegalMemoryAddress, op.Cell{}
	}
	s := m.bytes[src : src+uint32(length)]
	d := m.bytes[dst : dst+uint32(length)]
	for i := range s {
		if s[i] != d[i] {
			return op.None, op.CellFromBool(false)
		}
	}
	return op.None, op.CellFromBool(true)
}

// LoadProgram copies the first length bytes of program into memory
// starting at address 0.
func (m *Memory) LoadProgram(program []byte, length int) op.Error {
	if length > len(m.bytes) {
		return op.IllegalMemoryAddress
	}
	copy(m.bytes[:length], program[:length])
	return op.None
}

// ReadIOByte reads a single byte from the I/O window. Returns
// IllegalMemoryAddress if addr falls outside [IoBegin, IoEnd).
func (m *Memory) ReadIOByte(addr uint32) (op.Error, byte) {
	if int(addr) < m.ioBegin || int(addr) >= m.ioEnd {
		return op.IllegalMemoryAddress, 0
	}
	return op.None, m.bytes[addr]
}

// WriteIOByte writes a single byte to the I/O window. Returns
// IllegalMemoryAddress if addr falls outside [IoBegin, IoEnd).
func (m *Memory) WriteIOByte(addr uint32, b byte) op.Error {
	if int(addr) < m.ioBegin || int(addr) >= m.ioEnd {
		return op.IllegalMemoryAddress
	}
	m.bytes[addr] = b
	return op.None
}

// Bytes exposes the raw backing array, read-only by convention, for
// snapshot views.
func (m *Memory) Bytes() []byte { return m.bytes }
