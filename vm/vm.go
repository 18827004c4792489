package vm

import "github.com/aridashti/zagros/op"

// VM owns Memory, the InterruptTable, the IoTable and every Core. It is
// the sole mutator of all of that state; cores exclusively own their own
// stacks/registers. The VM hosts the interpreter loop and one handler per
// opcode.
type VM struct {
	Mem         *Memory
	Ints        *InterruptTable
	IO          *IoTable
	Cores       []*Core
	CurCore     int
	IntsEnabled bool
	Config      Config

	// Messages carries trace events for every notable action the
	// interpreter takes. A nil Messages (the zero value) means tracing is
	// off and send is a no-op, so the VM never blocks on an unread
	// channel; a host that wants a trace sets it to a buffered or
	// actively-drained channel before calling Run.
	Messages chan Message
}

// NewVM allocates a VM sized per cfg. Core 0 starts active; every other
// core starts inactive, per spec.md §3. The IoTable starts with every
// slot empty; bind callbacks via vm.IO.Bind before calling Run.
func NewVM(cfg Config) *VM {
	v := &VM{
		Mem:    NewMemory(cfg.MemSize, cfg.IoBegin, cfg.IoEnd),
		Ints:   NewInterruptTable(cfg.IntCap),
		IO:     NewIoTable(cfg.IoCap),
		Cores:  make([]*Core, cfg.CoreCount),
		Config: cfg,
	}
	for i := range v.Cores {
		v.Cores[i] = newCore(cfg)
	}
	v.Cores[0].Active = true
	return v
}

// send emits msg on Messages if tracing is enabled.
func (v *VM) send(msg Message) {
	if v.Messages != nil {
		v.Messages <- msg
	}
}

// LoadProgram copies the first length bytes of program into Memory
// starting at address 0.
func (v *VM) LoadProgram(program []byte, length int) op.Error {
	return v.Mem.LoadProgram(program, length)
}

// IOWrite writes a single byte into the I/O window, for host use between
// runs (or from a Callback). Mirrors spec.md §6's io_write.
func (v *VM) IOWrite(addr uint32, b byte) op.Error {
	return v.Mem.WriteIOByte(addr, b)
}

// IORead reads a single byte from the I/O window. Mirrors spec.md §6's
// io_read.
func (v *VM) IORead(addr uint32) (op.Error, byte) {
	return v.Mem.ReadIOByte(addr)
}

// selectNextCore implements the round-robin scan specified in spec.md
// §4.6: scan forward from cur_core+1 to the end, then from 0 up to
// cur_core inclusive; take the first active core found. If none is
// active, cur_core is left unchanged.
func (v *VM) selectNextCore() {
	n := len(v.Cores)
	for i := v.CurCore + 1; i < n; i++ {
		if v.Cores[i].Active {
			v.CurCore = i
			v.send(NewMessage(MsgCoreSwitch, i, "core %d selected", i))
			return
		}
	}
	for i := 0; i <= v.CurCore && i < n; i++ {
		if v.Cores[i].Active {
			v.CurCore = i
			v.send(NewMessage(MsgCoreSwitch, i, "core %d selected", i))
			return
		}
	}
}

// Run executes the interpreter loop until any terminal Error, including
// the orderly SystemHalt produced by HS or by running IP past the end of
// Memory. Callers distinguish SystemHalt from faults with Error.Fault.
func (v *VM) Run() op.Error {
	v.CurCore = len(v.Cores) - 1
	for {
		v.selectNextCore()
		core := v.Cores[v.CurCore]

		e, opcode := v.Mem.FetchOpcode(core.IP)
		if e != op.None {
			v.send(NewMessage(MsgHalt, v.CurCore, "%s", e))
			return e
		}

		handler, ok := handlers[op.Opcode(opcode)]
		if !ok {
			v.send(NewMessage(MsgHalt, v.CurCore, "unknown opcode 0x%02x", opcode))
			return op.SystemHalt
		}
		v.send(NewMessage(MsgDispatch, v.CurCore, "%s", op.Table[opcode].Mnemonic))

		if e := handler(v, core); e != op.None {
			if e != op.SystemHalt {
				v.send(NewMessage(MsgHalt, v.CurCore, "%s", e))
			}
			return e
		}
		if opcode != byte(op.OpUU) && opcode != byte(op.OpFF) {
			core.OpMode = op.Signed
		}
	}
}

type handlerFunc func(v *VM, c *Core) op.Error

var handlers = map[op.Opcode]handlerFunc{
	op.OpNO: opNO,
	op.OpLW: opLW,
	op.OpLH: opLH,
	op.OpLB: opLB,
	op.OpFW: opFW,
	op.OpFH: opFH,
	op.OpFB: opFB,
	op.OpSW: opSW,
	op.OpSH: opSH,
	op.OpSB: opSB,
	op.OpDU: opDU,
	op.OpDR: opDR,
	op.OpSP: opSP,
	op.OpPU: opPU,
	op.OpPO: opPO,
	op.OpEQ: opEQ,
	op.OpNE: opNE,
	op.OpLT: opLT,
	op.OpGT: opGT,
	op.OpAD: opAD,
	op.OpSU: opSU,
	op.OpMU: opMU,
	op.OpDM: opDM,
	op.OpMD: opMD,
	op.OpAN: opAN,
	op.OpOR: opOR,
	op.OpXO: opXO,
	op.OpNT: opNT,
	op.OpSL: opSL,
	op.OpSR: opSR,
	op.OpPA: opPA,
	op.OpUN: opUN,
	op.OpRL: opRL,
	op.OpCA: opCA,
	op.OpCC: opCC,
	op.OpJU: opJU,
	op.OpCJ: opCJ,
	op.OpRE: opRE,
	op.OpCR: opCR,
	op.OpSV: opSV,
	op.OpHI: opHI,
	op.OpSI: opSI,
	op.OpTI: opTI,
	op.OpII: opII,
	op.OpHS: opHS,
	op.OpIC: opIC,
	op.OpAC: opAC,
	op.OpPC: opPC,
	op.OpSC: opSC,
	op.OpRR: opRR,
	op.OpWR: opWR,
	op.OpCP: opCP,
	op.OpBC: opBC,
	op.OpUU: opUU,
	op.OpFF: opFF,
}

func opNO(v *VM, c *Core) op.Error {
	c.IP += 1
	return op.None
}

// load reads bs bytes at c.IP+offset and pushes them as a Cell, then
// advances ip by instrLen. Shared by LW/LH/LB.
func load(v *VM, c *Core, offset uint32, bs, instrLen int) op.Error {
	if e := c.Data.guard(0, 1); e != op.None {
		return e
	}
	e, cell := v.Mem.ReadBytes(c.IP+offset, bs)
	if e != op.None {
		return e
	}
	c.Data.push(cell)
	c.IP += uint32(instrLen)
	return op.None
}

func opLW(v *VM, c *Core) op.Error { return load(v, c, 4, 4, 8) }
func opLH(v *VM, c *Core) op.Error { return load(v, c, 1, 2, 3) }
func opLB(v *VM, c *Core) op.Error { return load(v, c, 1, 1, 2) }

// fetch pops an address, reads bs bytes from Memory at it, and pushes the
// result. Shared by FW/FH/FB.
func fetch(v *VM, c *Core, bs int) op.Error {
	if e := c.Data.guard(1, 1); e != op.None {
		return e
	}
	addr := c.Data.pop()
	e, cell := v.Mem.ReadBytes(addr.AsSize(), bs)
	if e != op.None {
		return e
	}
	c.Data.push(cell)
	c.IP += 1
	return op.None
}

func opFW(v *VM, c *Core) op.Error { return fetch(v, c, 4) }
func opFH(v *VM, c *Core) op.Error { return fetch(v, c, 2) }
func opFB(v *VM, c *Core) op.Error { return fetch(v, c, 1) }

// store pops an address then a value and writes bs bytes of the value to
// Memory at the address. Shared by SW/SH/SB.
func store(v *VM, c *Core, bs int) op.Error {
	if e := c.Data.guard(2, 0); e != op.None {
		return e
	}
	addr := c.Data.pop()
	val := c.Data.pop()
	if e := v.Mem.WriteBytes(addr.AsSize(), val, bs); e != op.None {
		return e
	}
	c.IP += 1
	return op.None
}

func opSW(v *VM, c *Core) op.Error { return store(v, c, 4) }
func opSH(v *VM, c *Core) op.Error { return store(v, c, 2) }
func opSB(v *VM, c *Core) op.Error { return store(v, c, 1) }

func opDU(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 2); e != op.None {
		return e
	}
	a := c.Data.pop()
	c.Data.push(a)
	c.Data.push(a)
	c.IP += 1
	return op.None
}

func opDR(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	c.Data.pop()
	c.IP += 1
	return op.None
}

func opSP(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 2); e != op.None {
		return e
	}
	right := c.Data.pop()
	left := c.Data.pop()
	c.Data.push(right)
	c.Data.push(left)
	c.IP += 1
	return op.None
}

func opPU(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	addr := c.Data.pop()
	if e := c.Addrs.Push(addr); e != op.None {
		return e
	}
	c.IP += 1
	return op.None
}

func opPO(v *VM, c *Core) op.Error {
	if e := c.Data.guard(0, 1); e != op.None {
		return e
	}
	e, addr := c.Addrs.Pop()
	if e != op.None {
		return e
	}
	c.Data.push(addr)
	c.IP += 1
	return op.None
}

// binOp pops right then left, computes f(left, right) and pushes the
// result. Shared by EQ/NE/LT/GT/AD/SU/MU/AN/OR/XO.
func binOp(v *VM, c *Core, f func(left, right op.Cell) op.Cell) op.Error {
	if e := c.Data.guard(2, 1); e != op.None {
		return e
	}
	right := c.Data.pop()
	left := c.Data.pop()
	c.Data.push(f(left, right))
	c.IP += 1
	return op.None
}

func opEQ(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.EqCell(r) })
}

func opNE(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.NeCell(r) })
}

func opLT(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Lt(r, c.OpMode) })
}

func opGT(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Gt(r, c.OpMode) })
}

func opAD(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Add(r, c.OpMode) })
}

func opSU(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Sub(r, c.OpMode) })
}

func opMU(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Mul(r, c.OpMode) })
}

func opDM(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 2); e != op.None {
		return e
	}
	right := c.Data.pop()
	left := c.Data.pop()
	e, rem, quot := left.DivMod(right, c.OpMode)
	if e != op.None {
		return e
	}
	c.Data.push(rem)
	c.Data.push(quot)
	c.IP += 1
	return op.None
}

func opMD(v *VM, c *Core) op.Error {
	if e := c.Data.guard(3, 2); e != op.None {
		return e
	}
	right := c.Data.pop()
	mul := c.Data.pop()
	left := c.Data.pop()
	e, rem, quot := left.MulDivMod(mul, right, c.OpMode)
	if e != op.None {
		return e
	}
	c.Data.push(rem)
	c.Data.push(quot)
	c.IP += 1
	return op.None
}

func opAN(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.And(r) })
}

func opOR(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Or(r) })
}

func opXO(v *VM, c *Core) op.Error {
	return binOp(v, c, func(l, r op.Cell) op.Cell { return l.Xor(r) })
}

func opNT(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 1); e != op.None {
		return e
	}
	a := c.Data.pop()
	c.Data.push(a.Not())
	c.IP += 1
	return op.None
}

// shiftOp pops right then left, shifts left by right in the given
// direction, and pushes the result. Shared by SL/SR.
func shiftOp(v *VM, c *Core, f func(l, r op.Cell, mode op.OpMode) (op.Error, op.Cell)) op.Error {
	if e := c.Data.guard(2, 1); e != op.None {
		return e
	}
	right := c.Data.pop()
	left := c.Data.pop()
	e, result := f(left, right, c.OpMode)
	if e != op.None {
		return e
	}
	c.Data.push(result)
	c.IP += 1
	return op.None
}

func opSL(v *VM, c *Core) op.Error {
	return shiftOp(v, c, func(l, r op.Cell, mode op.OpMode) (op.Error, op.Cell) { return l.Shl(r, mode) })
}

func opSR(v *VM, c *Core) op.Error {
	return shiftOp(v, c, func(l, r op.Cell, mode op.OpMode) (op.Error, op.Cell) { return l.Shr(r, mode) })
}

func opPA(v *VM, c *Core) op.Error {
	if e := c.Data.guard(4, 1); e != op.None {
		return e
	}
	d := c.Data.pop()
	cc := c.Data.pop()
	b := c.Data.pop()
	a := c.Data.pop()
	result := op.CellFromBytes([4]byte{d.AsByte(), cc.AsByte(), b.AsByte(), a.AsByte()})
	c.Data.push(result)
	c.IP += 1
	return op.None
}

func opUN(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 4); e != op.None {
		return e
	}
	value := c.Data.pop()
	bs := value.AsBytes()
	c.Data.push(op.CellFromByte(bs[3]))
	c.Data.push(op.CellFromByte(bs[2]))
	c.Data.push(op.CellFromByte(bs[1]))
	c.Data.push(op.CellFromByte(bs[0]))
	c.IP += 1
	return op.None
}

func opRL(v *VM, c *Core) op.Error {
	c.AddrMode = op.Relative
	c.IP += 1
	return op.None
}

// transferTarget resolves a popped target Cell to an absolute ip,
// honoring the core's current addr_mode.
func transferTarget(c *Core, target op.Cell) uint32 {
	if c.AddrMode == op.Relative {
		return target.AsU32() + c.IP
	}
	return target.AsU32()
}

func opCA(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	ret := op.CellFromU32(c.IP + 4)
	if e := c.Addrs.Push(ret); e != op.None {
		return e
	}
	callee := c.Data.pop()
	c.IP = transferTarget(c, callee)
	c.AddrMode = op.Direct
	return op.None
}

func opCC(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 0); e != op.None {
		return e
	}
	callee := c.Data.pop()
	cond := c.Data.pop()
	if cond.AsBool() {
		ret := op.CellFromU32(c.IP + 4)
		if e := c.Addrs.Push(ret); e != op.None {
			return e
		}
		c.IP = transferTarget(c, callee)
	}
	c.AddrMode = op.Direct
	return op.None
}

func opJU(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	target := c.Data.pop()
	c.IP = transferTarget(c, target)
	c.AddrMode = op.Direct
	return op.None
}

func opCJ(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 0); e != op.None {
		return e
	}
	target := c.Data.pop()
	cond := c.Data.pop()
	if cond.AsBool() {
		c.IP = transferTarget(c, target)
	} else {
		c.IP += 4
	}
	c.AddrMode = op.Direct
	return op.None
}

func opRE(v *VM, c *Core) op.Error {
	e, ret := c.Addrs.Pop()
	if e != op.None {
		return e
	}
	c.IP = ret.AsU32()
	c.AddrMode = op.Direct
	return op.None
}

func opCR(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	cond := c.Data.pop()
	if cond.AsBool() {
		e, ret := c.Addrs.Pop()
		if e != op.None {
			return e
		}
		c.IP = ret.AsU32()
	} else {
		c.IP += 4
	}
	c.AddrMode = op.Direct
	return op.None
}

func opSV(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 0); e != op.None {
		return e
	}
	id := c.Data.pop()
	addr := c.Data.pop()
	if e := v.Ints.Set(int(id.AsU32()), addr); e != op.None {
		return e
	}
	c.IP += 1
	return op.None
}

func opHI(v *VM, c *Core) op.Error {
	v.IntsEnabled = false
	c.IP += 1
	return op.None
}

func opSI(v *VM, c *Core) op.Error {
	v.IntsEnabled = true
	c.IP += 1
	return op.None
}

// opTI implements spec.md §4.9/§9(b): the source leaves this handler
// empty. If interrupts are enabled, push the current ip onto the addrs
// stack like CA, then jump to int_table[id].
func opTI(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	id := c.Data.pop()
	if v.IntsEnabled {
		e, addr := v.Ints.Get(int(id.AsU32()))
		if e != op.None {
			return e
		}
		if e := c.Addrs.Push(op.CellFromU32(c.IP)); e != op.None {
			return e
		}
		v.send(NewMessage(MsgInterrupt, v.CurCore, "interrupt %d -> 0x%08x", id.AsU32(), addr.AsU32()))
		c.IP = addr.AsU32()
		return op.None
	}
	c.IP += 1
	return op.None
}

func opII(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	id := c.Data.pop()
	v.IO.Call(int(id.AsSize()))
	v.send(NewMessage(MsgIO, v.CurCore, "io %d", id.AsU32()))
	c.IP += 1
	return op.None
}

func opHS(v *VM, c *Core) op.Error {
	return op.SystemHalt
}

// coreAt bound-checks a core id popped off the stack. The source indexes
// its core array with no such check; OutOfMemory is the spec's closest
// fit for "index outside a fixed-size array" and keeps the Go VM from
// panicking on a malformed program.
func coreAt(v *VM, id op.Cell) (op.Error, *Core) {
	idx := int(id.AsU32())
	if idx < 0 || idx >= len(v.Cores) {
		return op.OutOfMemory, nil
	}
	return op.None, v.Cores[idx]
}

func opIC(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 0); e != op.None {
		return e
	}
	coreID := c.Data.pop()
	addr := c.Data.pop()
	e, target := coreAt(v, coreID)
	if e != op.None {
		return e
	}
	target.init(addr.AsU32())
	c.IP += 1
	return op.None
}

func opAC(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	coreID := c.Data.pop()
	e, target := coreAt(v, coreID)
	if e != op.None {
		return e
	}
	target.Active = true
	c.IP += 1
	return op.None
}

func opPC(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 0); e != op.None {
		return e
	}
	coreID := c.Data.pop()
	e, target := coreAt(v, coreID)
	if e != op.None {
		return e
	}
	target.Active = false
	c.IP += 1
	return op.None
}

func opSC(v *VM, c *Core) op.Error {
	c.Active = false
	c.IP += 1
	return op.None
}

func opRR(v *VM, c *Core) op.Error {
	if e := c.Data.guard(1, 1); e != op.None {
		return e
	}
	id := c.Data.pop()
	e, val := c.Regs.Read(int(id.AsU32()))
	if e != op.None {
		return e
	}
	c.Data.push(val)
	c.IP += 1
	return op.None
}

func opWR(v *VM, c *Core) op.Error {
	if e := c.Data.guard(2, 0); e != op.None {
		return e
	}
	id := c.Data.pop()
	val := c.Data.pop()
	if e := c.Regs.Write(int(id.AsU32()), val); e != op.None {
		return e
	}
	c.IP += 1
	return op.None
}

func opCP(v *VM, c *Core) op.Error {
	if e := c.Data.guard(3, 0); e != op.None {
		return e
	}
	length := c.Data.pop()
	dst := c.Data.pop()
	src := c.Data.pop()
	if e := v.Mem.CopyBlock(int(length.AsU32()), dst.AsU32(), src.AsU32()); e != op.None {
		return e
	}
	c.IP += 1
	return op.None
}

func opBC(v *VM, c *Core) op.Error {
	if e := c.Data.guard(3, 1); e != op.None {
		return e
	}
	length := c.Data.pop()
	dst := c.Data.pop()
	src := c.Data.pop()
	e, result := v.Mem.CompareBlock(int(length.AsU32()), dst.AsU32(), src.AsU32())
	if e != op.None {
		return e
	}
	c.Data.push(result)
	c.IP += 1
	return op.None
}

// opUU and opFF are the two opcodes that do not reset op_mode at the end
// of dispatch; Run special-cases them instead of resetting unconditionally.

func opUU(v *VM, c *Core) op.Error {
	c.OpMode = op.Unsigned
	c.IP += 1
	return op.None
}

func opFF(v *VM, c *Core) op.Error {
	c.OpMode = op.Float
	c.IP += 1
	return op.None
}
