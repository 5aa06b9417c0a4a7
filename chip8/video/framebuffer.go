package video

// Color is a packed 0xRRGGBBAA pixel value.
type Color uint32

const (
	WhiteColor Color = 0xFFFFFFFF
	BlackColor Color = 0x000000FF
)

const (
	// FramebufferWidth and FramebufferHeight are the size of the standard display.
	FramebufferWidth  = 64
	FramebufferHeight = 32
)

// FrameBuffer is an immutable RGBA snapshot of the display, handed to backends.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the specified size, filled with color 0.
func NewFrameBuffer(width, height uint) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: make([]uint32, width*height),
	}
}

func (fb *FrameBuffer) Width() uint  { return fb.width }
func (fb *FrameBuffer) Height() uint { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) setPixel(x, y uint, color Color) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// ToSlice returns a copy of the pixel data, row major.
func (fb *FrameBuffer) ToSlice() []uint32 {
	out := make([]uint32, len(fb.buffer))
	copy(out, fb.buffer)
	return out
}
