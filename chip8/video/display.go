package video

import "github.com/valerio/go-chip8/chip8/bit"

// Display is the monochrome drawing surface. It can only be changed through
// Clear and DrawSprite; readers get a FrameBuffer snapshot.
type Display struct {
	width  int
	height int
	pixels []bool
	dirty  bool
}

// NewDisplay creates a blank display of the given size.
func NewDisplay(width, height int) *Display {
	return &Display{
		width:  width,
		height: height,
		pixels: make([]bool, width*height),
	}
}

func (d *Display) Width() int  { return d.width }
func (d *Display) Height() int { return d.height }

// Clear turns every pixel off and marks the display for redraw.
func (d *Display) Clear() {
	clear(d.pixels)
	d.dirty = true
}

// DrawSprite XORs the sprite rows onto the display, starting at (x mod width, y mod height).
// Each row is 8 pixels wide, most significant bit first. The sprite is clipped at the
// right and bottom edges, it never wraps. Returns true if any lit pixel was turned off.
func (d *Display) DrawSprite(x, y uint8, rows []byte) bool {
	startX := int(x) % d.width
	startY := int(y) % d.height
	collision := false

	for row, data := range rows {
		py := startY + row
		if py >= d.height {
			break
		}

		for col := 0; col < 8; col++ {
			px := startX + col
			if px >= d.width {
				break
			}

			if !bit.IsSet(uint8(7-col), data) {
				continue
			}

			idx := py*d.width + px
			if d.pixels[idx] {
				collision = true
			}
			d.pixels[idx] = !d.pixels[idx]
		}
	}

	// a draw always owes a redraw, even when nothing changed
	d.dirty = true
	return collision
}

// Pixel reports whether the pixel at (x, y) is lit. Out of range coordinates are off.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.pixels[y*d.width+x]
}

// Dirty reports whether the display changed since the last ClearDirty.
func (d *Display) Dirty() bool {
	return d.dirty
}

// ClearDirty is called by the consumer once a frame has been presented.
func (d *Display) ClearDirty() {
	d.dirty = false
}

// Frame renders the current pixels into a new FrameBuffer using the given colors.
func (d *Display) Frame(fg, bg Color) *FrameBuffer {
	fb := NewFrameBuffer(uint(d.width), uint(d.height))
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			color := bg
			if d.pixels[y*d.width+x] {
				color = fg
			}
			fb.setPixel(uint(x), uint(y), color)
		}
	}
	return fb
}
