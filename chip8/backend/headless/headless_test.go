package headless_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

func testFrame() *video.FrameBuffer {
	display := video.NewDisplay(video.FramebufferWidth, video.FramebufferHeight)
	display.DrawSprite(0, 0, []byte{0xF0})
	return display.Frame(video.WhiteColor, video.BlackColor)
}

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})

		err := h.Init(backend.BackendConfig{Title: "Test"})
		assert.NoError(t, err)

		frame := testFrame()

		// initial presentation, before any frame has run
		events, err := h.Update(frame, false)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, 0, h.FrameCount())

		for i := 0; i < 3; i++ {
			events, err := h.Update(frame, false)
			assert.NoError(t, err)

			if i < 2 {
				assert.Empty(t, events)
			} else {
				// Should send quit event on last frame
				require.Len(t, events, 1)
				assert.Equal(t, action.EmulatorQuit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
		}

		assert.Equal(t, 3, h.FrameCount())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("unlimited frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{}))

		for i := 0; i < 100; i++ {
			events, err := h.Update(nil, false)
			require.NoError(t, err)
			require.Empty(t, events)
		}
	})

	t.Run("keeps the last frame when the display is unchanged", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{}))

		frame := testFrame()
		_, _ = h.Update(frame, false)
		_, _ = h.Update(nil, false)

		assert.Same(t, frame, h.LastFrame())
	})

	t.Run("counts sound frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{}))

		for _, active := range []bool{false, true, true, false, true} {
			_, _ = h.Update(nil, active)
		}

		assert.Equal(t, 3, h.SoundFrames())
	})
}

func TestHeadlessSnapshots(t *testing.T) {
	dir := t.TempDir()
	config, err := headless.CreateSnapshotConfig(2, dir, "/roms/pong.ch8")
	require.NoError(t, err)
	config.Text = true
	assert.Equal(t, "pong", config.ROMName)

	h := headless.New(5, config)
	require.NoError(t, h.Init(backend.BackendConfig{Foreground: video.WhiteColor}))

	frame := testFrame()
	for i := 0; i <= 5; i++ {
		_, err := h.Update(frame, false)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var pngs, texts int
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".png":
			pngs++
			assert.True(t, strings.HasPrefix(entry.Name(), "pong_frame_"))
		case ".txt":
			texts++
		}
	}
	// frames 2 and 4, plus the final frame 5
	assert.Equal(t, 3, pngs)
	assert.Equal(t, 3, texts)

	text, err := os.ReadFile(filepath.Join(dir, "pong_frame_2.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "████····")
}

func TestCreateSnapshotConfig_Disabled(t *testing.T) {
	config, err := headless.CreateSnapshotConfig(0, "", "rom.ch8")

	require.NoError(t, err)
	assert.False(t, config.Enabled)
	assert.Empty(t, config.Directory)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	// Compile-time check that headless.Backend implements backend.Backend
	var _ backend.Backend = (*headless.Backend)(nil)
}
