package vm

import "github.com/aridashti/zagros/op"

// Core is the per-core execution context: instruction pointer, scheduling
// flag, the two sticky mode flags, and its three private containers. All
// cores share the VM's Memory, InterruptTable and IoTable.
type Core struct {
	IP       uint32
	Active   bool
	OpMode   op.OpMode
	AddrMode op.AddrMode
	Data     *DataStack
	Addrs    *AddressStack
	Regs     *RegisterBank
}

// newCore builds a Core with its private containers sized per cfg.
// Callers set Active themselves: core 0 starts active, every other core
// starts inactive, per spec.md §3.
func newCore(cfg Config) *Core {
	return &Core{
		Data:  NewDataStack(cfg.DataCap),
		Addrs: NewAddressStack(cfg.AddrCap),
		Regs:  NewRegisterBank(cfg.RegCap),
	}
}

// init resets the core to a fresh state at addr: ip=addr, inactive, modes
// at their defaults, all three private containers cleared.
func (c *Core) init(addr uint32) {
	c.IP = addr
	c.Active = false
	c.OpMode = op.Signed
	c.AddrMode = op.Direct
	c.Data.clear()
	c.Addrs.clear()
	c.Regs.clear()
}
