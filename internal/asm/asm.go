// asm.go - a small two-pass assembler for the bytecode

/*
Package asm assembles human-written source into ROM bytes the CPU package
can load directly. It is not part of the core: assembling is a boundary
operation fed by humans or files, so unlike the core it returns error
values instead of normalizing every failure into a defined outcome.

Syntax, one instruction or directive per line:

	; a comment
	.org 0x0100        set the origin for subsequent code (default 0x0100)
	label:             define a label at the current address
	PUSH #2a           push immediate byte 0x2a
	PUSH2 #1234        push immediate short 0x1234
	PUSH2 loop         push the address of label "loop" as a short
	ADD2k              base mnemonic + mode suffixes: '2'=short, 'r'=return, 'k'=keep
	BRK

Suffixes may appear in any order and any combination, e.g. "STZ2kr".
*/
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coco8/uxnhost/internal/isa"
)

// mnemonics maps a base opcode name to its byte value, grounded on the
// isa package's opcode table.
var mnemonics = map[string]byte{
	"BRK": isa.BRK,
	"INC": isa.INC,
	"DUP": isa.DUP,
	"EQU": isa.EQU,
	"JMP": isa.JMP,
	"JNZ": isa.JNZ,
	"LDZ": isa.LDZ,
	"STZ": isa.STZ,
	"DEI": isa.DEI,
	"DEO": isa.DEO,
	"ADD": isa.ADD,
	"SUB": isa.SUB,
	"MUL": isa.MUL,
	"DIV": isa.DIV,
}

// Assemble turns source into ROM bytes, resolving labels across a first
// pass that only measures instruction sizes and a second pass that emits
// the final bytes.
func Assemble(source string) ([]byte, error) {
	lines := splitLines(source)

	labels, err := firstPass(lines)
	if err != nil {
		return nil, err
	}
	return secondPass(lines, labels)
}

type line struct {
	num  int
	text string
}

func splitLines(source string) []line {
	raw := strings.Split(source, "\n")
	out := make([]line, 0, len(raw))
	for i, l := range raw {
		if idx := strings.IndexByte(l, ';'); idx >= 0 {
			l = l[:idx]
		}
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, line{num: i + 1, text: l})
	}
	return out
}

func firstPass(lines []line) (map[string]uint16, error) {
	labels := make(map[string]uint16)
	addr := uint16(0x0100)

	for _, ln := range lines {
		fields := strings.Fields(ln.text)
		head := fields[0]

		switch {
		case head == ".org":
			v, err := parseNumber(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln.num, err)
			}
			addr = uint16(v)

		case strings.HasSuffix(head, ":"):
			name := strings.TrimSuffix(head, ":")
			labels[name] = addr

		case head == "PUSH":
			addr += 2 // opcode + 1 immediate byte

		case head == "PUSH2":
			addr += 3 // opcode + 2 immediate bytes

		default:
			if _, _, _, _, err := decodeMnemonicFull(head); err != nil {
				return nil, fmt.Errorf("line %d: %w", ln.num, err)
			}
			addr++
		}
	}
	return labels, nil
}

func secondPass(lines []line, labels map[string]uint16) ([]byte, error) {
	var out []byte
	addr := uint16(0x0100)
	pad := func(target uint16) {
		for addr < target {
			out = append(out, 0)
			addr++
		}
	}

	for _, ln := range lines {
		fields := strings.Fields(ln.text)
		head := fields[0]

		switch {
		case head == ".org":
			v, _ := parseNumber(fields[1])
			pad(uint16(v))

		case strings.HasSuffix(head, ":"):
			// no bytes emitted for a label definition

		case head == "PUSH":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: PUSH requires one operand", ln.num)
			}
			v, err := resolveOperand(fields[1], labels)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln.num, err)
			}
			out = append(out, isa.PUSH, byte(v))
			addr += 2

		case head == "PUSH2":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: PUSH2 requires one operand", ln.num)
			}
			v, err := resolveOperand(fields[1], labels)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln.num, err)
			}
			out = append(out, isa.PUSH2, byte(v>>8), byte(v))
			addr += 3

		default:
			base, short, ret, keep, err := decodeMnemonicFull(head)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln.num, err)
			}
			opcode := base
			if short {
				opcode |= isa.ModeShort
			}
			if ret {
				opcode |= isa.ModeReturn
			}
			if keep {
				opcode |= isa.ModeKeep
			}
			out = append(out, opcode)
			addr++
		}
	}
	return out, nil
}

// decodeMnemonicFull splits a token like "ADD2k" into its base mnemonic
// and mode suffixes, validating both.
func decodeMnemonicFull(tok string) (base byte, short, ret, keep bool, err error) {
	name := tok
	for len(name) > 0 {
		c := name[len(name)-1]
		if c != '2' && c != 'r' && c != 'k' {
			break
		}
		switch c {
		case '2':
			short = true
		case 'r':
			ret = true
		case 'k':
			keep = true
		}
		name = name[:len(name)-1]
	}
	b, found := mnemonics[name]
	if !found {
		return 0, false, false, false, fmt.Errorf("unknown mnemonic %q", tok)
	}
	return b, short, ret, keep, nil
}

func resolveOperand(tok string, labels map[string]uint16) (uint16, error) {
	if strings.HasPrefix(tok, "#") {
		return parseNumber(tok[1:])
	}
	if addr, ok := labels[tok]; ok {
		return addr, nil
	}
	return 0, fmt.Errorf("undefined label %q", tok)
}

func parseNumber(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return uint16(v), nil
}
