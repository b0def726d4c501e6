// cpu.go - dual-stack bytecode interpreter

/*
Package cpu implements the 8/16-bit stack machine at the heart of the
virtual machine: 64 KiB of RAM, a 256-byte device page, a working stack
and a return stack, and a fetch/decode/execute loop that runs until a BRK
instruction or falls through unknown opcodes as no-ops.

The interpreter never returns an error. Stack underflow and overflow wrap
modulo 256, program counter arithmetic wraps modulo 0x10000, division by
zero yields zero, and unmapped device writes are absorbed by the host.
This mirrors the source machine's behaviour: a guest program can misbehave
without ever being able to crash the interpreter.
*/
package cpu

import (
	"github.com/coco8/uxnhost/internal/isa"
	"github.com/coco8/uxnhost/internal/stack"
)

// ProgStart is the RAM offset where ROM images are loaded.
const ProgStart = 0x0100

// RAMSize is the full 64 KiB address space.
const RAMSize = 0x10000

// Host is the capability set a CPU needs from its embedder to service
// device I/O opcodes. DEO is called once the port byte(s) have been
// written into the device page; DEI is called before the device byte(s)
// are copied onto the stack, so the host can populate the port with a
// fresh value first.
type Host interface {
	DEO(c *CPU, target byte)
	DEI(c *CPU, target byte)
}

// CPU holds the full machine state: RAM, device page, both stacks, and
// the program counter.
type CPU struct {
	ram [RAMSize]byte
	dev [256]byte

	wst *stack.Stack
	rst *stack.Stack

	pc uint16
}

// New allocates a CPU and copies rom into RAM starting at ProgStart. ROMs
// longer than the available space are truncated; shorter ROMs leave the
// remainder of RAM zeroed.
func New(rom []byte) *CPU {
	c := &CPU{
		wst: stack.New(),
		rst: stack.New(),
	}
	copy(c.ram[ProgStart:], rom)
	return c
}

// PC returns the current program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// SetPC lets a host install a vector mid-callback (e.g. jumping to a
// handler before the next opcode fetch).
func (c *CPU) SetPC(addr uint16) {
	c.pc = addr
}

// RAMPeekByte reads one byte from RAM.
func (c *CPU) RAMPeekByte(addr uint16) byte {
	return c.ram[addr]
}

// RAMPeekShort reads a big-endian 16-bit value from RAM.
func (c *CPU) RAMPeekShort(addr uint16) uint16 {
	hi := c.ram[addr]
	lo := c.ram[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

// RAMPokeByte writes one byte to RAM.
func (c *CPU) RAMPokeByte(addr uint16, v byte) {
	c.ram[addr] = v
}

// RAMPokeShort writes a big-endian 16-bit value to RAM.
func (c *CPU) RAMPokeShort(addr uint16, v uint16) {
	c.ram[addr] = byte(v >> 8)
	c.ram[addr+1] = byte(v)
}

// DevicePage returns a mutable 16-byte view of the device window owned by
// the device whose base address is base (the high nibble of its ports).
func (c *CPU) DevicePage(base byte) []byte {
	return c.dev[int(base) : int(base)+16]
}

// WorkingStack exposes the working stack for debug dumps and tests.
func (c *CPU) WorkingStack() *stack.Stack { return c.wst }

// ReturnStack exposes the return stack for debug dumps and tests.
func (c *CPU) ReturnStack() *stack.Stack { return c.rst }

func (c *CPU) fetchByte() byte {
	b := c.ram[c.pc]
	c.pc++
	return b
}

func (c *CPU) fetchShort() uint16 {
	hi := c.fetchByte()
	lo := c.fetchByte()
	return uint16(hi)<<8 | uint16(lo)
}

// selectedStack picks the working or return stack for an instruction
// according to its RETURN mode flag: RETURN mode targets the return
// stack in place of the working stack, uniformly across every opcode.
func (c *CPU) selectedStack(ret bool) *stack.Stack {
	if ret {
		return c.rst
	}
	return c.wst
}

// Run sets PC to addr and executes until BRK, returning the PC one past
// the halting instruction. Unknown opcodes are silently skipped; the
// fetch has already advanced PC past them.
func (c *CPU) Run(addr uint16, host Host) uint16 {
	c.pc = addr
	for {
		opcode := c.fetchByte()
		if opcode == isa.BRK {
			break
		}
		c.execute(opcode, host)
	}
	return c.pc
}

func (c *CPU) execute(opcode byte, host Host) {
	base, short, ret, keep := isa.Decode(opcode)
	s := c.selectedStack(ret)

	switch base {
	case isa.BRK: // only reached with KEEP set: PUSH / PUSH2 immediate load
		if !keep {
			return // undefined combination of flags on the BRK slot: no-op
		}
		if short {
			s.PushShort(c.fetchShort())
		} else {
			s.PushByte(c.fetchByte())
		}

	case isa.INC:
		a := pop(s, short)
		result := a + 1
		if keep {
			push(s, short, a)
		}
		push(s, short, result)

	case isa.DUP:
		a := pop(s, short)
		if keep {
			push(s, short, a)
		}
		push(s, short, a)
		push(s, short, a)

	case isa.EQU:
		b := pop(s, short)
		a := pop(s, short)
		var result uint16
		if a == b {
			result = 1
		}
		if keep {
			push(s, short, a)
			push(s, short, b)
		}
		s.PushByte(byte(result))

	case isa.JMP:
		if short {
			addr := pop(s, true)
			if keep {
				push(s, true, addr)
			}
			c.pc = addr
		} else {
			off := int8(byte(pop(s, false)))
			if keep {
				push(s, false, uint16(byte(off)))
			}
			c.pc = uint16(int32(c.pc) + int32(off))
		}

	case isa.JNZ:
		cond := s.PopByte()
		var target uint16
		var offset int8
		if short {
			target = pop(s, true)
		} else {
			offset = int8(byte(pop(s, false)))
		}
		if keep {
			if short {
				push(s, true, target)
			} else {
				push(s, false, uint16(byte(offset)))
			}
			s.PushByte(cond)
		}
		if cond != 0 {
			if short {
				c.pc = target
			} else {
				c.pc = uint16(int32(c.pc) + int32(offset))
			}
		}

	case isa.LDZ:
		addr := s.PopByte()
		if keep {
			s.PushByte(addr)
		}
		if short {
			push(s, true, c.RAMPeekShort(uint16(addr)))
		} else {
			push(s, false, uint16(c.RAMPeekByte(uint16(addr))))
		}

	case isa.STZ:
		addr := s.PopByte()
		value := pop(s, short)
		if short {
			c.RAMPokeShort(uint16(addr), value)
		} else {
			c.RAMPokeByte(uint16(addr), byte(value))
		}
		if keep {
			push(s, short, value)
			s.PushByte(addr)
		}

	case isa.DEI:
		port := s.PopByte()
		if keep {
			s.PushByte(port)
		}
		if host != nil {
			host.DEI(c, port)
		}
		if short {
			hi := c.dev[port]
			lo := c.dev[byte(port+1)]
			push(s, true, uint16(hi)<<8|uint16(lo))
		} else {
			push(s, false, uint16(c.dev[port]))
		}

	case isa.DEO:
		port := s.PopByte()
		value := pop(s, short)
		if short {
			c.dev[port] = byte(value >> 8)
			c.dev[byte(port+1)] = byte(value)
		} else {
			c.dev[port] = byte(value)
		}
		if keep {
			push(s, short, value)
			s.PushByte(port)
		}
		if host != nil {
			host.DEO(c, port)
		}

	case isa.ADD:
		b := pop(s, short)
		a := pop(s, short)
		if keep {
			push(s, short, a)
			push(s, short, b)
		}
		push(s, short, a+b)

	case isa.SUB:
		b := pop(s, short)
		a := pop(s, short)
		if keep {
			push(s, short, a)
			push(s, short, b)
		}
		push(s, short, a-b)

	case isa.MUL:
		b := pop(s, short)
		a := pop(s, short)
		if keep {
			push(s, short, a)
			push(s, short, b)
		}
		push(s, short, a*b)

	case isa.DIV:
		b := pop(s, short)
		a := pop(s, short)
		if keep {
			push(s, short, a)
			push(s, short, b)
		}
		var result uint16
		if b != 0 {
			result = a / b
		}
		push(s, short, result)

	default:
		// unassigned base opcode: no-op, PC already advanced past it
	}
}

// pop removes a byte or short value from s depending on short, widening a
// byte result to uint16.
func pop(s *stack.Stack, short bool) uint16 {
	if short {
		return s.PopShort()
	}
	return uint16(s.PopByte())
}

// push writes a byte or short value to s depending on short, wrapping a
// byte result to its low 8 bits.
func push(s *stack.Stack, short bool, v uint16) {
	if short {
		s.PushShort(v)
	} else {
		s.PushByte(byte(v))
	}
}
