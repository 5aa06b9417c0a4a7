package render

// Half-block rendering packs two display rows into one terminal cell: the
// upper pixel is drawn with the foreground color of '▀' and the lower one
// with its background.

// HalfBlock returns the rune to draw for a cell whose upper and lower pixels
// are on or off. Empty cells are drawn as a space.
func HalfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// ScaledPixels reports whether each of the two display rows packed into
// terminal row cellY is on, for the given pixel lookup.
func ScaledPixels(pixel func(x, y int) bool, x, cellY, height int) (top, bottom bool) {
	y := cellY * 2
	top = y < height && pixel(x, y)
	bottom = y+1 < height && pixel(x, y+1)
	return top, bottom
}
