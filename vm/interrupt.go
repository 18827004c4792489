package vm

import "github.com/aridashti/zagros/op"

// InterruptTable is a fixed-size vector of handler addresses, zeroed on
// construction.
type InterruptTable struct {
	handlers []op.Cell
}

// NewInterruptTable allocates an InterruptTable of the given size.
func NewInterruptTable(size int) *InterruptTable {
	return &InterruptTable{handlers: make([]op.Cell, size)}
}

// Len returns the table's fixed size.
func (t *InterruptTable) Len() int { return len(t.handlers) }

// Get returns the handler address for id, or IllegalInterruptID if id is
// out of range.
func (t *InterruptTable) Get(id int) (op.Error, op.Cell) {
	if id < 0 || id >= len(t.handlers) {
		return op.IllegalInterruptID, op.Cell{}
	}
	return op.None, t.handlers[id]
}

// Set stores addr as the handler for id, or returns IllegalInterruptID if
// id is out of range.
func (t *InterruptTable) Set(id int, addr op.Cell) op.Error {
	if id < 0 || id >= len(t.handlers) {
		return op.IllegalInterruptID
	}
	t.handlers[id] = addr
	return op.None
}

// snapshot returns a copy of the table's entries.
func (t *InterruptTable) snapshot() []op.Cell {
	out := make([]op.Cell, len(t.handlers))
	copy(out, t.handlers)
	return out
}
