package vm

import (
	"testing"

	"github.com/aridashti/zagros/op"
)

func TestDataStackGuard(t *testing.T) {
	s := NewDataStack(4)
	if e := s.guard(0, 4); e != op.None {
		t.Errorf("guard(0,4) on empty cap-4 stack = %v, want None", e)
	}
	if e := s.guard(1, 0); e != op.DataStackUnderflow {
		t.Errorf("guard(1,0) on empty stack = %v, want DataStackUnderflow", e)
	}
	if e := s.guard(0, 5); e != op.DataStackOverflow {
		t.Errorf("guard(0,5) on cap-4 stack = %v, want DataStackOverflow", e)
	}
}

func TestDataStackPushPop(t *testing.T) {
	s := NewDataStack(4)
	s.push(op.CellFromI32(1))
	s.push(op.CellFromI32(2))
	if s.Top() != 2 {
		t.Fatalf("Top() = %d, want 2", s.Top())
	}
	if got := s.pop().AsI32(); got != 2 {
		t.Errorf("pop() = %d, want 2 (LIFO)", got)
	}
	if got := s.pop().AsI32(); got != 1 {
		t.Errorf("pop() = %d, want 1", got)
	}
	if s.Top() != 0 {
		t.Errorf("Top() = %d, want 0 after draining", s.Top())
	}
}

func TestDataStackSnapshotAndClear(t *testing.T) {
	s := NewDataStack(4)
	s.push(op.CellFromI32(7))
	s.push(op.CellFromI32(8))
	cells, top := s.snapshot()
	if top != 2 || len(cells) != 2 || cells[0].AsI32() != 7 || cells[1].AsI32() != 8 {
		t.Errorf("snapshot() = %v, top=%d, want [7 8], top=2", cells, top)
	}
	s.clear()
	if s.Top() != 0 {
		t.Errorf("Top() after clear = %d, want 0", s.Top())
	}
}

func TestAddressStackOverflowUnderflow(t *testing.T) {
	s := NewAddressStack(1)
	if e := s.Push(op.CellFromU32(1)); e != op.None {
		t.Fatalf("first push: %v", e)
	}
	if e := s.Push(op.CellFromU32(2)); e != op.AddressStackOverflow {
		t.Errorf("second push on cap-1 stack = %v, want AddressStackOverflow", e)
	}
	e, c := s.Pop()
	if e != op.None || c.AsU32() != 1 {
		t.Fatalf("Pop() = (%v, %v), want (None, 1)", e, c)
	}
	if e, _ := s.Pop(); e != op.AddressStackUnderflow {
		t.Errorf("Pop() on empty stack = %v, want AddressStackUnderflow", e)
	}
}
