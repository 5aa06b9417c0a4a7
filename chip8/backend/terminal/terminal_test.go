package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type staticProvider struct{ data *debug.Data }

func (p staticProvider) ExtractDebugData() *debug.Data { return p.data }

func newTestBackend(t *testing.T, config backend.BackendConfig) (*Backend, tcell.SimulationScreen, *fakeClock) {
	t.Helper()

	screen := tcell.NewSimulationScreen("")
	b := NewWithScreen(screen)
	clock := &fakeClock{now: time.Unix(0, 0)}
	b.now = clock.Now

	require.NoError(t, b.Init(config))
	screen.SetSize(100, 30)
	t.Cleanup(func() { _ = b.Cleanup() })

	return b, screen, clock
}

func screenRow(screen tcell.SimulationScreen, y int) string {
	width, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func screenText(screen tcell.SimulationScreen) string {
	_, height := screen.Size()
	rows := make([]string, height)
	for y := range rows {
		rows[y] = screenRow(screen, y)
	}
	return strings.Join(rows, "\n")
}

func TestRender_HalfBlocks(t *testing.T) {
	b, screen, _ := newTestBackend(t, backend.BackendConfig{})

	display := video.NewDisplay(video.FramebufferWidth, video.FramebufferHeight)
	display.DrawSprite(0, 0, []byte{0xC0, 0x80, 0x00, 0x40})
	frame := display.Frame(video.WhiteColor, video.BlackColor)

	_, err := b.Update(frame, false)
	require.NoError(t, err)

	r, _, _, _ := screen.GetContent(0, 1)
	assert.Equal(t, '█', r, "both rows lit")
	r, _, _, _ = screen.GetContent(1, 1)
	assert.Equal(t, '▀', r, "upper row lit")
	r, _, _, _ = screen.GetContent(1, 2)
	assert.Equal(t, '▄', r, "lower row lit")
	r, _, _, _ = screen.GetContent(5, 5)
	assert.Equal(t, ' ', r)
}

func TestRender_KeepsLastFrame(t *testing.T) {
	b, screen, _ := newTestBackend(t, backend.BackendConfig{})

	display := video.NewDisplay(video.FramebufferWidth, video.FramebufferHeight)
	display.DrawSprite(0, 0, []byte{0x80, 0x80})
	_, _ = b.Update(display.Frame(video.WhiteColor, video.BlackColor), false)
	_, _ = b.Update(nil, false)

	r, _, _, _ := screen.GetContent(0, 1)
	assert.Equal(t, '█', r)
}

func TestRender_SoundIndicator(t *testing.T) {
	b, screen, _ := newTestBackend(t, backend.BackendConfig{})

	_, _ = b.Update(nil, true)
	assert.Contains(t, screenText(screen), "♪ SOUND")

	_, _ = b.Update(nil, false)
	assert.NotContains(t, screenText(screen), "♪ SOUND")
}

func TestRender_TooSmall(t *testing.T) {
	b, screen, _ := newTestBackend(t, backend.BackendConfig{})
	screen.SetSize(40, 10)

	_, _ = b.Update(nil, false)

	assert.Contains(t, screenText(screen), "Terminal too small")
}

func TestRender_DebugPanel(t *testing.T) {
	data := &debug.Data{
		CPU: &debug.CPUState{
			PC:    0x202,
			I:     0x300,
			Stack: []uint16{0x204},
			Fault: "stack underflow",
		},
		Memory: &debug.MemorySnapshot{StartAddr: 0x200, Bytes: []byte{0x60, 0x05, 0x70, 0x03}},
	}
	data.CPU.V[0xA] = 0x42
	data.Keys[0xC] = true

	b, screen, _ := newTestBackend(t, backend.BackendConfig{
		ShowDebug:     true,
		DebugProvider: staticProvider{data},
	})

	_, _ = b.Update(nil, false)
	text := screenText(screen)

	assert.Contains(t, text, "VA:42")
	assert.Contains(t, text, "I: 0x300  PC: 0x202")
	assert.Contains(t, text, "Stack: 204")
	assert.Contains(t, text, "Keys: ............C...")
	assert.Contains(t, text, "Fault: stack underflow")
	assert.Contains(t, text, "→ 0x202: ADD V0, 0x03")
	assert.Contains(t, text, "0x200: LD V0, 0x05")

	b.HandleAction(action.EmulatorDebugToggle)
	_, _ = b.Update(nil, false)
	assert.NotContains(t, screenText(screen), "VA:42")
}

func TestKeypadEvents(t *testing.T) {
	b, screen, clock := newTestBackend(t, backend.BackendConfig{})

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	events, err := b.Update(nil, false)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.Key4, Type: event.Press}}, events)

	clock.Advance(keyTimeout / 2)
	events, _ = b.Update(nil, false)
	assert.Equal(t, []backend.InputEvent{{Action: action.Key4, Type: event.Hold}}, events)

	clock.Advance(keyTimeout)
	events, _ = b.Update(nil, false)
	assert.Equal(t, []backend.InputEvent{{Action: action.Key4, Type: event.Release}}, events)

	events, _ = b.Update(nil, false)
	assert.Empty(t, events)
}

func TestKeypadEvents_Uppercase(t *testing.T) {
	b, screen, _ := newTestBackend(t, backend.BackendConfig{})

	screen.InjectKey(tcell.KeyRune, 'V', tcell.ModShift)
	events, _ := b.Update(nil, false)

	assert.Equal(t, []backend.InputEvent{{Action: action.KeyF, Type: event.Press}}, events)
}

func TestEmulatorKeys(t *testing.T) {
	tests := []struct {
		name     string
		key      tcell.Key
		r        rune
		expected action.Action
	}{
		{"space pauses", tcell.KeyRune, ' ', action.EmulatorPauseToggle},
		{"n steps", tcell.KeyRune, 'n', action.EmulatorStepInstruction},
		{"F8 dumps state", tcell.KeyF8, 0, action.EmulatorStateDump},
		{"F12 snapshots", tcell.KeyF12, 0, action.EmulatorSnapshot},
		{"escape quits", tcell.KeyEscape, 0, action.EmulatorQuit},
		{"ctrl-c quits", tcell.KeyCtrlC, 0, action.EmulatorQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, screen, _ := newTestBackend(t, backend.BackendConfig{})

			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			events, err := b.Update(nil, false)

			require.NoError(t, err)
			assert.Equal(t, []backend.InputEvent{{Action: tt.expected, Type: event.Press}}, events)
		})
	}
}

func TestChangeLogLevel(t *testing.T) {
	b, screen, _ := newTestBackend(t, backend.BackendConfig{})

	b.HandleAction(action.DebugLogLevelIncrease)
	_, _ = b.Update(nil, false)
	assert.Contains(t, screenText(screen), "Logs [DBG]")

	b.HandleAction(action.DebugLogLevelDecrease)
	b.HandleAction(action.DebugLogLevelDecrease)
	_, _ = b.Update(nil, false)
	assert.Contains(t, screenText(screen), "Logs [WRN]")
}

func TestTerminalImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*Backend)(nil)
	var _ backend.ActionHandler = (*Backend)(nil)
}
