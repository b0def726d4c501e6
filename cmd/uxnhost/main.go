// main.go - reference front end: loads a ROM and drives it through ebiten

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/coco8/uxnhost/internal/cpu"
	"github.com/coco8/uxnhost/internal/video"
	"github.com/coco8/uxnhost/internal/vm"
)

func main() {
	romPath := flag.String("rom", "", "path to a ROM image")
	scale := flag.Int("scale", 3, "window scale factor")
	debug := flag.Bool("debug", false, "print the System device's debug dump to stdout each frame it fires")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: uxnhost -rom <path> [-scale N] [-debug]")
		os.Exit(1)
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Printf("Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	c := cpu.New(rom)
	machine := vm.New()

	if out := machine.OnReset(c); out != "" {
		fmt.Println(out)
	}

	g := newGame(c, machine, *romPath, *debug)

	ebiten.SetWindowSize(video.Width*(*scale), video.Height*(*scale))
	ebiten.SetWindowTitle("uxnhost")
	ebiten.SetWindowResizable(true)

	if err := ebiten.RunGame(g); err != nil {
		fmt.Printf("Error running game: %v\n", err)
		os.Exit(1)
	}
}
