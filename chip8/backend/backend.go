package backend

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend represents a complete emulator platform (rendering + input).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Surfacing the sound signal (there is no audio output)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update polls platform events and presents the frame.
	// frame is nil when the display has not changed since the last call;
	// backends keep showing what they already have.
	Update(frame *video.FrameBuffer, soundActive bool) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// ActionHandler is implemented by backends that react to emulator actions
// themselves, such as taking snapshots or toggling the debug view.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// InputEvent is a platform input translated to an action.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// DebugDataProvider gives backends access to machine state for debug panels.
type DebugDataProvider interface {
	ExtractDebugData() *debug.Data
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title      string
	Width      int // display size in pixels, 0 means the standard 64x32
	Height     int
	Scale      int
	Foreground video.Color
	Background video.Color
	ShowDebug  bool // Backends may ignore unsupported features

	DebugProvider DebugDataProvider
}

// WindowSize returns the display size multiplied by the scale, filling in the
// standard display size and a scale of 1 where they are unset.
func (c BackendConfig) WindowSize() (width, height int) {
	width, height, scale := c.Width, c.Height, c.Scale
	if width <= 0 || height <= 0 {
		width, height = video.FramebufferWidth, video.FramebufferHeight
	}
	if scale <= 0 {
		scale = 1
	}
	return width * scale, height * scale
}
