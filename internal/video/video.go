// video.go - dual-layer framebuffer device: pixel, fill, and sprite drawing

/*
Package video implements the Video device: two independent palette-index
framebuffers (background, foreground), a pixel port that can draw a single
pixel or fill a rectangle, a sprite port that blits an 8x8 4-bit-per-pixel
tile from RAM, and a dirty-flag compositor that lazily merges the two
layers (foreground wins wherever it is non-zero).
*/
package video

import "github.com/coco8/uxnhost/internal/cpu"

// Base is the device's high-nibble address.
const Base = 0x10

// Screen dimensions, in palette-index bytes.
const (
	Width  = 192
	Height = 144
)

// Port offsets within the Video window.
const (
	portVectorHi = 0x00
	portVectorLo = 0x01
	portX        = 0x02
	portY        = 0x03
	portPixel    = 0x04
	portAddrHi   = 0x08
	portAddrLo   = 0x09
	portSprite   = 0x0a
)

// Pixel command bit layout.
const (
	pixelColorMask = 0x0f
	pixelLayerBit  = 1 << 4
	pixelFillBit   = 1 << 5
	pixelFlipYBit  = 1 << 6
	pixelFlipXBit  = 1 << 7
)

// Sprite command bit layout.
const spriteLayerBit = 1 << 4

// spriteBytes is the size of one 8x8, 4-bits-per-pixel tile.
const spriteBytes = 32

// Video is the host's Video device.
type Video struct {
	background [Width * Height]byte
	foreground [Width * Height]byte
	composite  [Width * Height]byte
	dirty      bool

	palette [16][3]byte
}

// New returns a Video device with empty layers and the default Varvara-
// family grayscale-ramp palette.
func New() *Video {
	v := &Video{}
	for i := 0; i < 16; i++ {
		shade := byte(i * 17) // 0,17,...,255 -- evenly spaced ramp
		v.palette[i] = [3]byte{shade, shade, shade}
	}
	return v
}

// Base identifies this device to the bus.
func (v *Video) Base() byte { return Base }

// Vector returns the current frame-entry address.
func (v *Video) Vector(c *cpu.CPU) uint16 {
	page := c.DevicePage(Base)
	return uint16(page[portVectorHi])<<8 | uint16(page[portVectorLo])
}

// DEO handles a device-output write at offset.
func (v *Video) DEO(c *cpu.CPU, offset byte) {
	switch offset {
	case portPixel:
		v.doPixel(c)
	case portSprite:
		v.doSprite(c)
	}
}

// DEI handles a device-input read at offset; Video has no lazily
// populated ports, so this is a no-op.
func (v *Video) DEI(c *cpu.CPU, offset byte) {}

func (v *Video) doPixel(c *cpu.CPU) {
	page := c.DevicePage(Base)
	cmd := page[portPixel]
	x := int(page[portX])
	y := int(page[portY])
	color := cmd & pixelColorMask
	layer := v.layerFor(cmd & pixelLayerBit)

	if cmd&pixelFillBit == 0 {
		v.setPixel(layer, clamp(x, Width-1), clamp(y, Height-1), color)
		v.dirty = true
		return
	}

	flipX := cmd&pixelFlipXBit != 0
	flipY := cmd&pixelFlipYBit != 0

	startX, endX := 0, Width-1
	if !flipX {
		startX, endX = clamp(x, Width-1), Width-1
	} else {
		startX, endX = 0, clamp(x, Width-1)
	}
	startY, endY := 0, Height-1
	if !flipY {
		startY, endY = clamp(y, Height-1), Height-1
	} else {
		startY, endY = 0, clamp(y, Height-1)
	}

	for py := startY; py <= endY; py++ {
		for px := startX; px <= endX; px++ {
			v.setPixel(layer, px, py, color)
		}
	}
	v.dirty = true
}

func (v *Video) doSprite(c *cpu.CPU) {
	page := c.DevicePage(Base)
	cmd := page[portSprite]
	x := int(page[portX])
	y := int(page[portY])
	addr := uint16(page[portAddrHi])<<8 | uint16(page[portAddrLo])
	layer := v.layerFor(cmd & spriteLayerBit)

	for row := 0; row < 8; row++ {
		rowBase := addr + uint16(row*4)
		for col := 0; col < 8; col++ {
			b := c.RAMPeekByte(rowBase + uint16(col/2))
			var px byte
			if col%2 == 0 {
				px = b >> 4
			} else {
				px = b & 0x0f
			}
			dx, dy := x+col, y+row
			if dx < 0 || dx >= Width || dy < 0 || dy >= Height {
				continue
			}
			v.setPixel(layer, dx, dy, px)
		}
	}
	v.dirty = true
}

func (v *Video) layerFor(bit byte) []byte {
	if bit != 0 {
		return v.foreground[:]
	}
	return v.background[:]
}

func (v *Video) setPixel(layer []byte, x, y int, color byte) {
	layer[y*Width+x] = color
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Pixels returns a read-only view of the composite buffer, rebuilding it
// first if any draw has happened since the last call.
func (v *Video) Pixels() []byte {
	if v.dirty {
		for i := range v.composite {
			if v.foreground[i] != 0 {
				v.composite[i] = v.foreground[i]
			} else {
				v.composite[i] = v.background[i]
			}
		}
		v.dirty = false
	}
	return v.composite[:]
}

// Palette returns the 16-entry RGB palette table. Supplemental: never
// consulted by Pixels(), purely a convenience for a front end that wants
// to expand palette indices to RGB itself.
func (v *Video) Palette() [16][3]byte {
	return v.palette
}

// SetPaletteEntry overwrites one palette slot (index 0-15).
func (v *Video) SetPaletteEntry(index int, rgb [3]byte) {
	if index < 0 || index >= len(v.palette) {
		return
	}
	v.palette[index] = rgb
}
