// Package disasm turns a Zagros byte image back into mnemonic text, the
// inverse of asm. It is host tooling, exercised by round-trip tests
// against asm; the VM itself never disassembles its own image.
package disasm

import (
	"fmt"
	"strings"

	"github.com/aridashti/zagros/op"
)

// Instruction is one decoded opcode plus its optional inline immediate.
type Instruction struct {
	Offset     uint32
	Opcode     op.Opcode
	Operand    uint32
	HasOperand bool
}

// Decode walks program from the start and returns every instruction it
// contains, stopping at the first invalid opcode byte (mirroring the way
// the VM itself halts rather than erroring on a malformed byte at
// dispatch time).
func Decode(program []byte) []Instruction {
	var out []Instruction
	i := uint32(0)
	for int(i) < len(program) {
		b := program[i]
		if !op.Valid(b) {
			break
		}
		def := op.Table[op.Opcode(b)]
		ins := Instruction{Offset: i, Opcode: def.Code}

		// LW's word sits at ip+4, not ip+1 (vm.opLW reads load(v, c, 4, 4,
		// 8)); LH/LB's operands both start right after the opcode.
		operandStart := i + 1
		if def.Code == op.OpLW {
			operandStart = i + 4
		}
		width := operandWidth(def.Operand)
		if width > 0 {
			if int(operandStart)+width > len(program) {
				break
			}
			var buf [4]byte
			copy(buf[:width], program[operandStart:uint32(width)+operandStart])
			ins.Operand = op.Endian.Uint32(buf[:])
			ins.HasOperand = true
		}
		out = append(out, ins)
		i += uint32(def.Len)
	}
	return out
}

func operandWidth(w op.OperandWidth) int {
	switch w {
	case op.OperandByte:
		return 1
	case op.OperandHalf:
		return 2
	case op.OperandWord:
		return 4
	default:
		return 0
	}
}

// Text renders the decoded instructions as assembler-compatible source,
// one instruction per line, address-commented for readability.
func Text(program []byte) string {
	var sb strings.Builder
	for _, ins := range Decode(program) {
		mnemonic := op.Table[ins.Opcode].Mnemonic
		if ins.HasOperand {
			fmt.Fprintf(&sb, "%-4s %d\t; 0x%04x\n", mnemonic, ins.Operand, ins.Offset)
		} else {
			fmt.Fprintf(&sb, "%-4s\t; 0x%04x\n", mnemonic, ins.Offset)
		}
	}
	return sb.String()
}
