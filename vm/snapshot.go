package vm

import (
	"encoding/json"

	"github.com/aridashti/zagros/op"
	"github.com/fxamacker/cbor/v2"
)

// CoreSnapshot is a deep, read-only copy of one Core's state. Cell values
// are captured as plain uint32s since op.Cell keeps its bytes
// unexported; the snapshot package has no business reaching into the
// core's representation, only reading its numeric content.
type CoreSnapshot struct {
	IP       uint32   `json:"ip" cbor:"ip"`
	Active   bool     `json:"active" cbor:"active"`
	OpMode   string   `json:"op_mode" cbor:"op_mode"`
	AddrMode string   `json:"addr_mode" cbor:"addr_mode"`
	Data     []uint32 `json:"data" cbor:"data"`
	Addrs    []uint32 `json:"addrs" cbor:"addrs"`
	Regs     []uint32 `json:"regs" cbor:"regs"`
}

// IOSlotSnapshot describes one IoTable slot.
type IOSlotSnapshot struct {
	ID          int    `json:"id" cbor:"id"`
	Bound       bool   `json:"bound" cbor:"bound"`
	Description string `json:"description" cbor:"description"`
}

// Snapshot is a deep, immutable copy of a VM's entire state, per
// spec.md §6. It is safe to hold and inspect after the VM that produced
// it has continued running.
type Snapshot struct {
	Memory      []byte           `json:"memory" cbor:"memory"`
	Interrupts  []uint32         `json:"interrupts" cbor:"interrupts"`
	IO          []IOSlotSnapshot `json:"io" cbor:"io"`
	Cores       []CoreSnapshot   `json:"cores" cbor:"cores"`
	CurCore     int              `json:"cur_core" cbor:"cur_core"`
	IntsEnabled bool             `json:"ints_enabled" cbor:"ints_enabled"`
}

// Snapshot takes a deep read-only copy of the VM's entire state.
func (v *VM) Snapshot() Snapshot {
	mem := make([]byte, len(v.Mem.Bytes()))
	copy(mem, v.Mem.Bytes())

	ints := v.Ints.snapshot()
	intVals := make([]uint32, len(ints))
	for i, c := range ints {
		intVals[i] = c.AsU32()
	}

	descriptions := v.IO.descriptions()
	ioSlots := make([]IOSlotSnapshot, len(descriptions))
	for i, d := range descriptions {
		ioSlots[i] = IOSlotSnapshot{ID: i, Bound: d != "", Description: d}
	}

	cores := make([]CoreSnapshot, len(v.Cores))
	for i, c := range v.Cores {
		data, _ := c.Data.snapshot()
		addrs, _ := c.Addrs.snapshot()
		regs := c.Regs.snapshot()

		cores[i] = CoreSnapshot{
			IP:       c.IP,
			Active:   c.Active,
			OpMode:   c.OpMode.String(),
			AddrMode: c.AddrMode.String(),
			Data:     cellsToU32(data),
			Addrs:    cellsToU32(addrs),
			Regs:     cellsToU32(regs),
		}
	}

	return Snapshot{
		Memory:      mem,
		Interrupts:  intVals,
		IO:          ioSlots,
		Cores:       cores,
		CurCore:     v.CurCore,
		IntsEnabled: v.IntsEnabled,
	}
}

func cellsToU32(cells []op.Cell) []uint32 {
	out := make([]uint32, len(cells))
	for i, c := range cells {
		out[i] = c.AsU32()
	}
	return out
}

// MarshalJSON renders the snapshot as JSON, the form cmd/vm-viewer loads
// from a file ending in ".json".
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type alias Snapshot
	return json.Marshal(alias(s))
}

// MarshalCBOR renders the snapshot as CBOR, for cmd/zagros -dump-file's
// compact persisted run state.
func (s Snapshot) MarshalCBOR() ([]byte, error) {
	type alias Snapshot
	return cbor.Marshal(alias(s))
}

// UnmarshalSnapshotCBOR decodes a CBOR-encoded Snapshot, as produced by
// MarshalCBOR, for cmd/vm-viewer to load.
func UnmarshalSnapshotCBOR(data []byte) (Snapshot, error) {
	var s Snapshot
	err := cbor.Unmarshal(data, &s)
	return s, err
}

// UnmarshalSnapshotJSON decodes a JSON-encoded Snapshot.
func UnmarshalSnapshotJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}
