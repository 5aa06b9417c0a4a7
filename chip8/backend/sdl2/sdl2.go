//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

const bytesPerPixel = 4

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig

	textureWidth  int
	textureHeight int
	pixels        []byte

	keyMapping map[sdl.Keycode]action.Action
	events     []backend.InputEvent

	currentFrame *video.FrameBuffer
	soundActive  bool
	title        string
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	if s.config.Scale <= 0 {
		s.config.Scale = 10
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	width, height := s.config.WindowSize()
	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(width),
		int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	s.keyMapping = buildKeyMapping()
	s.running = true

	slog.Info("SDL2 backend initialized", "width", width, "height", height, "scale", s.config.Scale)
	return nil
}

// buildKeyMapping resolves the shared default key names to SDL keycodes.
func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action, len(input.DefaultKeyMap))
	for name, act := range input.DefaultKeyMap {
		if key := sdl.GetKeyFromName(name); key != sdl.K_UNKNOWN {
			mapping[key] = act
		}
	}
	return mapping
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer, soundActive bool) ([]backend.InputEvent, error) {
	s.events = s.events[:0]

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	events := make([]backend.InputEvent, len(s.events))
	copy(events, s.events)

	if !s.running {
		return events, nil
	}

	if frame != nil {
		s.currentFrame = frame
		if err := s.renderFrame(frame); err != nil {
			return events, err
		}
	}

	s.soundActive = soundActive
	s.updateTitle()

	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// HandleAction processes backend-specific actions
func (s *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame)
	case action.EmulatorDebugToggle:
		s.config.ShowDebug = !s.config.ShowDebug
		slog.Info("Debug title toggled", "enabled", s.config.ShowDebug)
	}
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.running = false
		s.events = append(s.events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})

	case *sdl.KeyboardEvent:
		act, ok := s.keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}

		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat != 0:
			if act.IsKeypad() {
				s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		case e.Type == sdl.KEYDOWN:
			if act == action.EmulatorQuit {
				s.running = false
			}
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Press})
		case e.Type == sdl.KEYUP && act.IsKeypad():
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
}

func (s *Backend) ensureTexture(width, height int) error {
	if s.texture != nil && s.textureWidth == width && s.textureHeight == height {
		return nil
	}
	if s.texture != nil {
		s.texture.Destroy()
	}

	texture, err := s.renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width),
		int32(height),
	)
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}

	s.texture = texture
	s.textureWidth = width
	s.textureHeight = height
	s.pixels = make([]byte, width*height*bytesPerPixel)
	return nil
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	width, height := int(frame.Width()), int(frame.Height())
	if err := s.ensureTexture(width, height); err != nil {
		return err
	}

	for i, pixel := range frame.ToSlice() {
		r, g, b, a := video.Color(pixel).RGBA()
		idx := i * bytesPerPixel

		// ABGR byte order for little-endian RGBA8888
		s.pixels[idx] = a
		s.pixels[idx+1] = b
		s.pixels[idx+2] = g
		s.pixels[idx+3] = r
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), width*bytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	r, g, b, a := s.config.Background.RGBA()
	s.renderer.SetDrawColor(r, g, b, a)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

func (s *Backend) updateTitle() {
	title := s.config.Title
	if s.soundActive {
		title += " ♪"
	}
	if s.config.ShowDebug && s.config.DebugProvider != nil {
		if data := s.config.DebugProvider.ExtractDebugData(); data != nil && data.CPU != nil {
			title += fmt.Sprintf(" | PC %03X I %03X | %s", data.CPU.PC, data.CPU.I, data.DebuggerState)
		}
	}

	if title != s.title {
		s.window.SetTitle(title)
		s.title = title
	}
}
