// game.go - ebiten.Game adapter driving the VM's per-frame vector

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/coco8/uxnhost/internal/cpu"
	"github.com/coco8/uxnhost/internal/video"
	"github.com/coco8/uxnhost/internal/vm"
)

// game implements ebiten.Game, calling OnVideo once per tick and
// expanding the palette-indexed composite buffer into an RGBA image.
type game struct {
	cpu   *cpu.CPU
	vm    *vm.VM
	debug bool

	rgba       *image.RGBA
	overlay    *image.RGBA
	romName    string
	frameCount uint64
}

func newGame(c *cpu.CPU, v *vm.VM, romName string, debug bool) *game {
	return &game{
		cpu:     c,
		vm:      v,
		debug:   debug,
		rgba:    image.NewRGBA(image.Rect(0, 0, video.Width, video.Height)),
		overlay: image.NewRGBA(image.Rect(0, 0, video.Width, 13)),
		romName: romName,
	}
}

func (g *game) Update() error {
	out := g.vm.OnVideo(g.cpu)
	if g.debug && out != "" {
		fmt.Println(out)
	}
	g.frameCount++
	if halted, code := g.vm.Halted(); halted {
		return fmt.Errorf("guest halted the machine (code %#02x)", code)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	palette := g.vm.Palette()
	pixels := g.vm.Pixels()
	for i, idx := range pixels {
		rgb := palette[idx&0x0f]
		x, y := i%video.Width, i/video.Width
		g.rgba.Set(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff})
	}
	screen.WritePixels(g.rgba.Pix)

	label := fmt.Sprintf("%s f%d", g.romName, g.frameCount)
	if halted, code := g.vm.Halted(); halted {
		label = fmt.Sprintf("%s HALT %#02x", label, code)
	}
	drawLabel(g.overlay, basicfont.Face7x13, label)
	overlayImg := ebiten.NewImageFromImage(g.overlay)
	op := &ebiten.DrawImageOptions{}
	screen.DrawImage(overlayImg, op)
}

// drawLabel renders label into dst's top-left corner using face, clearing
// dst first so stale glyphs from a shorter previous label don't linger.
func drawLabel(dst *image.RGBA, face font.Face, label string) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(1, 10),
	}
	d.DrawString(label)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return video.Width, video.Height
}
