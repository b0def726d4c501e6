// system.go - the System device: reset vector, debug dump, halt/expansion

/*
Package sysdev implements the System device: a reset vector port readable
through ResetVector, a debug port that dumps CPU state to a flushable
stdout buffer, and two supplemental ports (halt, expansion) carried over
from the wider Uxn/Varvara System device family. Neither supplemental port
is required by the core spec: a non-zero write to halt records the value
for Halted, and writes to expansion are not handled.
*/
package sysdev

import (
	"fmt"

	"github.com/coco8/uxnhost/internal/cpu"
)

// Base is the device's high-nibble address.
const Base = 0x00

// Port offsets within the System window.
const (
	portResetVector = 0x00 // short
	portDebug       = 0x02 // byte
	portHalt        = 0x04 // byte, supplemental
	portExpansion   = 0x06 // short, supplemental
)

// System is the host's System device.
type System struct {
	stdout  []byte
	halted  bool
	haltVal byte
}

// New returns a System with a zeroed reset vector and empty stdout buffer.
func New() *System {
	return &System{}
}

// Base identifies this device to the bus.
func (s *System) Base() byte { return Base }

// DEO handles a device-output write at offset (already masked to 0x00-0x0F).
func (s *System) DEO(c *cpu.CPU, offset byte) {
	page := c.DevicePage(Base)
	switch offset {
	case portDebug:
		if page[portDebug] != 0 {
			s.dump(c)
			page[portDebug] = 0
		}
	case portHalt:
		if page[portHalt] != 0 {
			s.halted = true
			s.haltVal = page[portHalt]
		}
	}
}

// DEI handles a device-input read at offset; System has nothing to
// lazily populate, so this is a no-op.
func (s *System) DEI(c *cpu.CPU, offset byte) {}

// dump appends the canonical debug dump to stdout:
//
//	WRK: [<hex bytes, space separated, up to last 8>]
//	RET: [<same, for the return stack>]
//
// with a single newline between the two lines and none trailing.
func (s *System) dump(c *cpu.CPU) {
	s.stdout = append(s.stdout, fmt.Sprintf("WRK: [%s]\nRET: [%s]", c.WorkingStack().Dump(), c.ReturnStack().Dump())...)
}

// Stdout flushes the accumulated debug output, returning its contents and
// resetting the buffer to empty.
func (s *System) Stdout() string {
	out := string(s.stdout)
	s.stdout = s.stdout[:0]
	return out
}

// ResetVector returns the reset vector currently held in the device page.
func (s *System) ResetVector(c *cpu.CPU) uint16 {
	page := c.DevicePage(Base)
	return uint16(page[portResetVector])<<8 | uint16(page[portResetVector+1])
}

// Halted reports whether a guest program has written a non-zero value to
// the halt port, and the value it wrote.
func (s *System) Halted() (bool, byte) {
	return s.halted, s.haltVal
}
