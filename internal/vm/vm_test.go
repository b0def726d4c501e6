package vm

import (
	"testing"

	"github.com/coco8/uxnhost/internal/cpu"
)

const (
	push  = 0x80
	push2 = 0xA0
	deo   = 0x17
	brk   = 0x00
)

// S1 (adapted): ROM = [PUSH 0xAB, PUSH 0x02, DEO, BRK] writes 0xAB to the
// DEBUG port and fires the dump. DEO fully consumes both operands (port
// and value) before notifying the host, per the opcode table's documented
// sequence, so the working stack is empty at dump time -- see DESIGN.md
// for why this departs from the scenario's literal "WRK: [ab]" text.
func TestOnResetDebugScenario(t *testing.T) {
	rom := []byte{push, 0xAB, push, 0x02, deo, brk}
	c := cpu.New(rom)
	v := New()

	out := v.OnReset(c)
	if want := "WRK: []\nRET: []"; out != want {
		t.Fatalf("OnReset() stdout = %q, want %q", out, want)
	}
}

// A variant of the same scenario using KEEP mode confirms the dump does
// show stack contents when the operands are deliberately retained.
func TestOnResetDebugScenarioWithKeep(t *testing.T) {
	const deoKeep = deo | 0x80
	rom := []byte{push, 0xAB, push, 0x02, deoKeep, brk}
	c := cpu.New(rom)
	v := New()

	out := v.OnReset(c)
	if want := "WRK: [ab 02]\nRET: []"; out != want {
		t.Fatalf("OnReset() stdout = %q, want %q", out, want)
	}
}

// S2: ROM writes X=1, Y=1, PIXEL=0x08 (color 8, bg, single pixel) via DEO.
func TestOnResetPixelScenario(t *testing.T) {
	rom := []byte{
		push, 0x01, push, 0x12, deo, // X = 1
		push, 0x01, push, 0x13, deo, // Y = 1
		push, 0x08, push, 0x14, deo, // PIXEL = 0x08
		brk,
	}
	c := cpu.New(rom)
	v := New()
	v.OnReset(c)

	px := v.Pixels()
	for i, got := range px {
		x, y := i%192, i/192
		want := byte(0)
		if x == 1 && y == 1 {
			want = 0x08
		}
		if got != want {
			t.Fatalf("pixel (%d,%d) = %#02x, want %#02x", x, y, got, want)
		}
	}
}

func TestOnVideoFallsBackTo0x0200(t *testing.T) {
	// A never-written VECTOR reads as zero, so OnVideo must run at the
	// fallback address 0x0200. RAM there is already zero (BRK), so the
	// run halts on the first fetch -- enough to observe the jump happened.
	c := cpu.New(nil)
	v := New()

	// PC before the run, to compare against afterwards.
	pc := c.PC()
	_ = v.OnVideo(c)
	if c.PC() == pc {
		t.Fatalf("OnVideo should have moved the PC by running at the fallback vector")
	}
	if c.PC() != 0x0201 {
		t.Fatalf("PC after OnVideo fallback = %#04x, want 0x0201 (BRK at 0x0200 consumed)", c.PC())
	}
}

func TestOnVideoHonorsExplicitVector(t *testing.T) {
	// VECTOR = 0x0300: write hi byte to video port 0x10, lo byte to 0x11.
	rom := []byte{
		push, 0x03, push, 0x10, deo,
		push, 0x00, push, 0x11, deo,
		brk,
	}
	c := cpu.New(rom)
	v := New()
	v.OnReset(c)

	c.RAMPokeByte(0x0300, brk)
	_ = v.OnVideo(c)
	if c.PC() != 0x0301 {
		t.Fatalf("PC after OnVideo = %#04x, want 0x0301 (ran at explicit VECTOR)", c.PC())
	}
}
