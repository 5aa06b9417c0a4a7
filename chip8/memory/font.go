package memory

const (
	// FontAddress is where the built-in hex font starts.
	FontAddress uint16 = 0x000
	// GlyphSize is the number of bytes (rows) of a single font glyph.
	GlyphSize = 5
)

// font is the standard hex digit set, 0 through F, 4x5 pixels each.
var font = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns a copy of the font rows for the given hex digit (only the low nibble is used).
func Glyph(digit uint8) []byte {
	start := int(digit&0x0F) * GlyphSize
	out := make([]byte, GlyphSize)
	copy(out, font[start:start+GlyphSize])
	return out
}

func (m *Memory) loadFont() {
	copy(m.data[FontAddress:], font[:])
}
