// vm.go - host VM composing the System and Video devices

/*
Package vm assembles the reference host: a System device and a Video
device wired onto a bus, implementing the CPU's host-callback contract
and exposing the two frame-driving entry points a front end calls every
run: OnReset once at startup, OnVideo once per frame.
*/
package vm

import (
	"github.com/coco8/uxnhost/internal/bus"
	"github.com/coco8/uxnhost/internal/cpu"
	"github.com/coco8/uxnhost/internal/sysdev"
	"github.com/coco8/uxnhost/internal/video"
)

// defaultVideoVector is the fallback frame entry point used when the
// Video device's VECTOR port has never been written (reads as zero).
const defaultVideoVector = 0x0200

// VM bundles the System and Video devices behind a bus and implements
// cpu.Host by delegating to it.
type VM struct {
	bus    *bus.Bus
	system *sysdev.System
	video  *video.Video
}

// New constructs a VM with zeroed System and Video devices registered on
// a fresh bus.
func New() *VM {
	v := &VM{
		bus:    bus.New(),
		system: sysdev.New(),
		video:  video.New(),
	}
	v.bus.Register(v.system)
	v.bus.Register(v.video)
	return v
}

// DEO implements cpu.Host by forwarding to the bus.
func (v *VM) DEO(c *cpu.CPU, target byte) { v.bus.DEO(c, target) }

// DEI implements cpu.Host by forwarding to the bus.
func (v *VM) DEI(c *cpu.CPU, target byte) { v.bus.DEI(c, target) }

// OnReset runs the program at 0x100 until BRK and returns the flushed
// system stdout.
func (v *VM) OnReset(c *cpu.CPU) string {
	c.Run(cpu.ProgStart, v)
	return v.system.Stdout()
}

// OnVideo runs the program at the Video device's current VECTOR, falling
// back to 0x0200 when the vector has never been set, and returns the
// flushed system stdout.
func (v *VM) OnVideo(c *cpu.CPU) string {
	addr := v.video.Vector(c)
	if addr == 0 {
		addr = defaultVideoVector
	}
	c.Run(addr, v)
	return v.system.Stdout()
}

// Pixels delegates to the Video device's composite accessor.
func (v *VM) Pixels() []byte {
	return v.video.Pixels()
}

// Palette exposes the Video device's palette table for a front end that
// wants to expand palette indices to RGB itself.
func (v *VM) Palette() [16][3]byte {
	return v.video.Palette()
}

// Halted reports whether the System device's supplemental halt port has
// been written.
func (v *VM) Halted() (bool, byte) {
	return v.system.Halted()
}
