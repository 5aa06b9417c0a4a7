package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	registerHeight = 11
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24
	logCapacity    = 200

	// Terminals have no key release events, so a key counts as held until
	// it has not repeated for this long.
	keyTimeout = 150 * time.Millisecond
)

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	running   bool
	logBuffer *render.LogBuffer
	logLevel  slog.Level
	config    backend.BackendConfig

	eventMu    sync.Mutex
	eventQueue []backend.InputEvent // non keypad events, collected between updates

	keyStates  map[action.Action]time.Time // Last time each key was seen
	activeKeys map[action.Action]bool      // Keys active in previous update
	now        func() time.Time

	signals chan os.Signal

	// For accessing emulator state
	debugProvider backend.DebugDataProvider

	currentFrame *video.FrameBuffer // last frame presented, kept for redraws and snapshots
	soundActive  bool
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		logLevel: slog.LevelInfo,
		now:      time.Now,
	}
}

// NewWithScreen creates a terminal backend drawing on an existing screen,
// such as a tcell simulation screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// Capture logs in a ring buffer shown in the log panel
	t.logBuffer = render.NewLogBuffer(logCapacity)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	slog.Info("Terminal backend initialized")
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// Set up signal handling for graceful shutdown
	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go t.handleSignals(t.signals)

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer, soundActive bool) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := t.now()

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Track which keys are currently active this update
	currentlyActive := make(map[action.Action]bool)

	for act, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}

		currentlyActive[act] = true
		if !t.activeKeys[act] {
			slog.Debug("Key press", "action", action.GetInfo(act).Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}

	// Keys active last update but not this one are released
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", action.GetInfo(act).Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	t.eventMu.Lock()
	events = append(events, t.eventQueue...)
	t.eventQueue = nil
	t.eventMu.Unlock()

	if !t.running {
		return events, nil
	}

	if frame != nil {
		t.currentFrame = frame
	}
	t.soundActive = soundActive

	t.render()
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
		close(t.signals)
		t.signals = nil
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			slog.Info("Debug display enabled")
		} else {
			slog.Info("Debug display disabled")
		}
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) handleSignals(signals <-chan os.Signal) {
	if _, ok := <-signals; !ok {
		return
	}
	t.queueEvent(backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
}

func (t *Backend) queueEvent(e backend.InputEvent) {
	t.eventMu.Lock()
	defer t.eventMu.Unlock()
	t.eventQueue = append(t.eventQueue, e)
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[unicode.ToLower(ev.Rune())]
	}
	if !ok {
		return
	}

	if act.IsKeypad() {
		t.keyStates[act] = now
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}
	slog.Debug("UI event", "action", action.GetInfo(act).Description)
	t.queueEvent(backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF8:     "F8",
	tcell.KeyF10:    "F10",
	tcell.KeyF12:    "F12",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// buildRuneMapping maps every single character default binding, plus space.
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		if runes := []rune(keyName); len(runes) == 1 {
			mapping[runes[0]] = act
		}
	}
	if act, ok := input.GetDefaultMapping("Space"); ok {
		mapping[' '] = act
	}

	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel
	switch direction {
	case -1:
		switch t.logLevel {
		case slog.LevelDebug:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelError
		}
	case 1:
		switch t.logLevel {
		case slog.LevelError:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelDebug
		}
	}
	if oldLevel != t.logLevel {
		slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
	}
}

func (t *Backend) render() {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	displayWidth, displayHeight := video.FramebufferWidth, video.FramebufferHeight
	if t.currentFrame != nil {
		displayWidth, displayHeight = int(t.currentFrame.Width()), int(t.currentFrame.Height())
	}
	dividerX := displayWidth + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX
	if rightPanelWidth < 0 {
		rightPanelWidth = 0
	}

	showDebug := t.config.ShowDebug && t.debugProvider != nil
	t.drawBorders(termWidth, termHeight, dividerX, showDebug)
	t.drawDisplay(displayWidth)
	t.drawSound(displayHeight)

	logsY := 0
	if showDebug {
		if data := t.debugProvider.ExtractDebugData(); data != nil {
			t.drawRegisters(data, rightPanelX, 1, rightPanelWidth, termHeight)
			t.drawDisassembly(data, rightPanelX, registerHeight+2, rightPanelWidth, termHeight)
		}
		logsY = registerHeight + disasmHeight + 2
	}
	t.drawLogs(rightPanelX, logsY, rightPanelWidth, termHeight)
}

func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= width {
			break
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int, showDebug bool) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " CHIP-8 "
	if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	startX := dividerX + 2
	width := termWidth - startX
	registerEndY := registerHeight + 1
	disasmEndY := registerEndY + disasmHeight + 1

	logsTitleY := 0
	if showDebug {
		for _, y := range []int{registerEndY, disasmEndY} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
		}
		t.drawText(startX, 0, width, " Registers ", titleStyle)
		t.drawText(startX, registerEndY, width, " Disassembly ", titleStyle)
		logsTitleY = disasmEndY
	}
	t.drawText(startX, logsTitleY, width, fmt.Sprintf(" Logs [%s] (-/+ filter) ", render.LevelTag(t.logLevel)), titleStyle)

	help := " F10=debug SPACE=pause N=step O=frame F8=dump F12=snapshot ESC=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

func (t *Backend) drawDisplay(displayWidth int) {
	frame := t.currentFrame
	if frame == nil {
		return
	}

	fg := t.config.Foreground
	if fg == 0 {
		fg = video.WhiteColor
	}
	bg := t.config.Background
	if bg == 0 {
		bg = video.BlackColor
	}
	style := tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))

	height := int(frame.Height())
	lit := func(x, y int) bool {
		return frame.GetPixel(uint(x), uint(y)) == uint32(fg)
	}

	for cellY := 0; cellY*2 < height; cellY++ {
		for x := 0; x < displayWidth; x++ {
			top, bottom := render.ScaledPixels(lit, x, cellY, height)
			t.screen.SetContent(x, cellY+1, render.HalfBlock(top, bottom), nil, style)
		}
	}
}

func (t *Backend) drawSound(displayHeight int) {
	y := (displayHeight+1)/2 + 2
	if t.soundActive {
		t.drawText(1, y, 16, "♪ SOUND", tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))
	} else {
		t.drawText(1, y, 16, "  -----", tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
}

func tcellColor(c video.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *Backend) drawRegisters(data *debug.Data, startX, startY, width, termHeight int) {
	cpu := data.CPU
	if cpu == nil || width <= 0 {
		return
	}

	lines := []string{
		fmt.Sprintf("Status: %s  Frame: %d", data.DebuggerState, data.Frames),
	}
	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			r := row*4 + col
			fmt.Fprintf(&sb, "V%X:%02X ", r, cpu.V[r])
		}
		lines = append(lines, strings.TrimSpace(sb.String()))
	}

	stack := make([]string, len(cpu.Stack))
	for i, addr := range cpu.Stack {
		stack[i] = fmt.Sprintf("%03X", addr)
	}

	var keys strings.Builder
	for k, pressed := range data.Keys {
		if pressed {
			fmt.Fprintf(&keys, "%X", k)
		} else {
			keys.WriteByte('.')
		}
	}

	lines = append(lines,
		fmt.Sprintf("I: 0x%03X  PC: 0x%03X  SP: %d", cpu.I, cpu.PC, cpu.SP),
		fmt.Sprintf("DT: %02X  ST: %02X  Op: %04X", cpu.DelayTimer, cpu.SoundTimer, cpu.Opcode),
		fmt.Sprintf("Stack: %s", strings.Join(stack, " ")),
		fmt.Sprintf("Keys: %s  Wait: %t", keys.String(), cpu.AwaitingKey),
		fmt.Sprintf("Instr: %d  Rejected: %d", cpu.Instructions, data.Rejected),
	)
	if cpu.Fault != "" {
		lines = append(lines, "Fault: "+cpu.Fault)
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	faultStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	for i, line := range lines {
		y := startY + i
		if y >= termHeight || i >= registerHeight {
			break
		}
		useStyle := style
		if strings.HasPrefix(line, "Fault") {
			useStyle = faultStyle
		}
		t.drawText(startX, y, width, line, useStyle)
	}
}

func (t *Backend) drawDisassembly(data *debug.Data, startX, startY, width, termHeight int) {
	if data.CPU == nil || data.Memory == nil || width <= 0 {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		y := startY + i
		if y >= termHeight {
			break
		}

		text := fmt.Sprintf("  0x%03X: %s", line.Address, line.Instruction)
		useStyle := style
		if line.IsCurrent {
			text = "→" + text[1:]
			useStyle = currentStyle
		}
		t.drawText(startX, y, width, text, useStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, width, termHeight int) {
	if width <= 0 {
		return
	}

	availableHeight := termHeight - startY - 2
	if availableHeight <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range t.logBuffer.GetRecent(availableHeight, t.logLevel) {
		style := infoStyle
		switch {
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		}

		text := render.FormatLogEntry(entry)
		if runes := []rune(text); len(runes) > width && width > 3 {
			text = string(runes[:width-3]) + "..."
		}
		t.drawText(startX, startY+1+i, width, text, style)
	}
}
