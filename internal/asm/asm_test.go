package asm

import (
	"bytes"
	"testing"
)

func TestAssembleSimplePush(t *testing.T) {
	got, err := Assemble("PUSH #2a\nBRK\n")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	want := []byte{0x80, 0x2a, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble() = % x, want % x", got, want)
	}
}

func TestAssemblePush2(t *testing.T) {
	got, err := Assemble("PUSH2 #1234\nBRK\n")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	want := []byte{0xA0, 0x12, 0x34, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble() = % x, want % x", got, want)
	}
}

func TestAssembleModeSuffixes(t *testing.T) {
	got, err := Assemble("ADD2k\nBRK\n")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	// ADD=0x18, short|keep = 0x20|0x80 = 0xa0 -> 0x18|0xa0 = 0xb8
	want := []byte{0xb8, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble() = % x, want % x", got, want)
	}
}

func TestAssembleLabelForwardReference(t *testing.T) {
	src := "PUSH2 loop\nBRK\nloop:\nINC\nBRK\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	// loop sits right after PUSH2(3 bytes)+BRK(1) = offset 4 from 0x100
	want := []byte{0xA0, 0x01, 0x04, 0x00, 0x01, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble() = % x, want % x", got, want)
	}
}

func TestAssembleOrgDirective(t *testing.T) {
	src := ".org 0x0200\nBRK\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(got) != 0x100+1 {
		t.Fatalf("len(Assemble()) = %d, want %d", len(got), 0x101)
	}
	if got[len(got)-1] != 0x00 {
		t.Fatalf("final byte = %#02x, want BRK", got[len(got)-1])
	}
}

func TestAssembleUnknownMnemonicErrors(t *testing.T) {
	if _, err := Assemble("NOPE\n"); err == nil {
		t.Fatalf("Assemble() should fail on an unknown mnemonic")
	}
}

func TestAssembleUndefinedLabelErrors(t *testing.T) {
	if _, err := Assemble("PUSH2 ghost\nBRK\n"); err == nil {
		t.Fatalf("Assemble() should fail on an undefined label")
	}
}

func TestAssembleCommentsAndBlankLinesIgnored(t *testing.T) {
	src := "; a comment\n\nBRK ; trailing comment\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	want := []byte{0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble() = % x, want % x", got, want)
	}
}
