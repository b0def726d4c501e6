// bus.go - device dispatch by port high nibble

/*
Package bus demultiplexes the CPU's device-I/O callbacks to a fixed table
of devices. Each device owns a contiguous 16-port window identified by its
BASE, the high nibble of every port address routed to it; the low nibble
is passed to the device as a small offset, so devices never see their own
absolute port numbers.
*/
package bus

import "github.com/coco8/uxnhost/internal/cpu"

// Device is anything the bus can route port I/O to. Offset is already
// masked to the low nibble (0x00-0x0F) by the bus.
type Device interface {
	Base() byte
	DEO(c *cpu.CPU, offset byte)
	DEI(c *cpu.CPU, offset byte)
}

// Bus owns up to sixteen devices, one per base nibble, and implements
// cpu.Host by routing to whichever device claims a given target's high
// nibble. Writes to an unmapped window are silently absorbed.
type Bus struct {
	devices [16]Device
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Register installs d at its own Base() nibble, overwriting anything
// previously registered there.
func (b *Bus) Register(d Device) {
	b.devices[d.Base()>>4] = d
}

// DEO implements cpu.Host by forwarding to the device owning target's high
// nibble, with the low nibble as the device-relative offset.
func (b *Bus) DEO(c *cpu.CPU, target byte) {
	d := b.devices[target>>4]
	if d == nil {
		return
	}
	d.DEO(c, target&0x0F)
}

// DEI implements cpu.Host the same way as DEO.
func (b *Bus) DEI(c *cpu.CPU, target byte) {
	d := b.devices[target>>4]
	if d == nil {
		return
	}
	d.DEI(c, target&0x0F)
}
