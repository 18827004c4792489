// Package asm is a small two-pass text assembler for the Zagros
// instruction set. It exists as host tooling around vm/op, not as part of
// the core: the VM itself only ever consumes raw byte images.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aridashti/zagros/op"
)

// LabelChar prefixes a label reference in an operand position, mirroring
// the teacher assembler's ':label' convention.
const LabelChar = ':'

// line is one non-blank, non-comment-only source line after stripping.
type line struct {
	no       int
	label    string // set if this line defines "label:" with nothing else
	mnemonic string
	operand  string // raw operand text, empty if none
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseLines(src string) ([]line, error) {
	var out []line
	for i, raw := range strings.Split(src, "\n") {
		no := i + 1
		text := strings.TrimSpace(stripComment(raw))
		if text == "" {
			continue
		}
		if strings.HasSuffix(text, ":") && !strings.ContainsAny(text[:len(text)-1], " \t") {
			out = append(out, line{no: no, label: strings.TrimSuffix(text, ":")})
			continue
		}
		fields := strings.Fields(text)
		l := line{no: no, mnemonic: strings.ToLower(fields[0])}
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: too many fields for %q", no, fields[0])
		}
		if len(fields) == 2 {
			l.operand = fields[1]
		}
		out = append(out, l)
	}
	return out, nil
}

func parseNumber(s string) (uint32, error) {
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(n), err
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		n, err := strconv.ParseUint(s[2:], 8, 32)
		return uint32(n), err
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		n, err := strconv.ParseUint(s[2:], 2, 32)
		return uint32(n), err
	default:
		n, err := strconv.ParseUint(s, 10, 32)
		return uint32(n), err
	}
}

// Assemble compiles a Zagros source program (name is used only in error
// messages) into a raw byte image loadable via vm.VM.LoadProgram.
//
// Every instruction is one opcode byte, optionally followed by LW/LH/LB's
// inline immediate operand (4, 2 or 1 bytes respectively; LW puts three
// zero padding bytes before its word). Every other mnemonic takes its
// operands from the data stack at run time, so it has no encoded operand
// at all. "label:" defines a byte-offset label; a LW/LH/LB operand of
// ":label" resolves to that offset, letting programs push a jump target
// with LB/LW right before JU/CA/CJ/CC.
func Assemble(name, src string) ([]byte, error) {
	lines, err := parseLines(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	labels := map[string]uint32{}
	offset := uint32(0)
	for _, l := range lines {
		if l.label != "" {
			if _, ok := labels[l.label]; ok {
				return nil, fmt.Errorf("%s:%d: duplicate label %q", name, l.no, l.label)
			}
			labels[l.label] = offset
			continue
		}
		def, ok := op.Lookup(l.mnemonic)
		if !ok {
			return nil, fmt.Errorf("%s:%d: unknown mnemonic %q", name, l.no, l.mnemonic)
		}
		offset += uint32(def.Len)
	}

	buf := make([]byte, 0, offset)
	for _, l := range lines {
		if l.label != "" {
			continue
		}
		def, ok := op.Lookup(l.mnemonic)
		if !ok {
			return nil, fmt.Errorf("%s:%d: unknown mnemonic %q", name, l.no, l.mnemonic)
		}
		buf = append(buf, byte(def.Code))

		if def.Operand == op.OperandNone {
			if l.operand != "" {
				return nil, fmt.Errorf("%s:%d: %s takes no operand", name, l.no, l.mnemonic)
			}
			continue
		}
		if l.operand == "" {
			return nil, fmt.Errorf("%s:%d: %s requires an operand", name, l.no, l.mnemonic)
		}

		var value uint32
		if strings.HasPrefix(l.operand, string(LabelChar)) {
			target, ok := labels[l.operand[1:]]
			if !ok {
				return nil, fmt.Errorf("%s:%d: undefined label %q", name, l.no, l.operand[1:])
			}
			value = target
		} else {
			v, err := parseNumber(l.operand)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid operand %q: %w", name, l.no, l.operand, err)
			}
			value = v
		}

		// LW's word sits at ip+4 (vm.opLW reads load(v, c, 4, 4, 8)), so
		// the 3 bytes between the opcode and the word are padding. LH/LB's
		// operands both start right after the opcode, at ip+1.
		if def.Code == op.OpLW {
			buf = append(buf, 0, 0, 0)
		}
		width := operandWidth(def.Operand)
		var b [4]byte
		op.Endian.PutUint32(b[:], value)
		buf = append(buf, b[:width]...)
	}
	return buf, nil
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
