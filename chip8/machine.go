package chip8

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// RunState is the machine level execution state.
type RunState int

const (
	// Quit is both the state before a ROM is loaded and the state after
	// the machine stops, by request or because of a fault.
	Quit RunState = iota
	Running
	Paused
)

func (s RunState) String() string {
	switch s {
	case Quit:
		return "quit"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// debugWindow is how many bytes around PC are captured for the disassembly panel.
const debugWindow = 96

// Machine owns every part of the interpreter and drives it one frame at a time.
type Machine struct {
	config  Config
	cpu     *cpu.CPU
	mem     *memory.Memory
	display *video.Display
	keypad  *input.Keypad

	state  RunState
	loaded bool

	// counters are atomic so rate monitors can read them from another goroutine
	frames       atomic.Uint64
	instructions atomic.Uint64
}

// New creates a machine with the font loaded and no program. Invalid config
// values fall back to their defaults.
func New(cfg Config) *Machine {
	if err := cfg.Validate(); err != nil {
		slog.Warn("Using default config", "error", err)
		cfg = DefaultConfig()
	}

	m := &Machine{
		config:  cfg,
		mem:     memory.New(),
		display: video.NewDisplay(cfg.Width, cfg.Height),
		keypad:  input.NewKeypad(),
		state:   Quit,
	}
	m.cpu = cpu.New(m.mem, m.display, m.keypad)
	if cfg.Seed != 0 {
		m.cpu.Seed(cfg.Seed)
	}

	return m
}

// NewWithFile creates a new machine and loads the ROM at path into it.
func NewWithFile(path string, cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	m := New(cfg)
	if err := m.LoadROM(data); err != nil {
		return nil, err
	}

	return m, nil
}

// LoadROM resets the machine and loads the program at 0x200. On success the
// machine is Running; on failure it is left in Quit.
func (m *Machine) LoadROM(data []byte) error {
	m.state = Quit
	m.loaded = false

	if err := m.mem.LoadROM(data); err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}

	m.cpu.Reset()
	if m.config.Seed != 0 {
		m.cpu.Seed(m.config.Seed)
	}
	m.display.Clear()
	m.keypad.Set([input.KeyCount]bool{})
	m.keypad.Latch()
	m.frames.Store(0)
	m.instructions.Store(0)
	m.loaded = true
	m.state = Running

	return nil
}

// RunFrame runs one 60Hz frame: the keypad is latched, a batch of instructions
// is executed and the timers tick once. It does nothing unless Running.
func (m *Machine) RunFrame() {
	if m.state != Running {
		return
	}
	m.runFrame()
}

// StepFrame runs a single frame while paused.
func (m *Machine) StepFrame() {
	if m.state == Quit {
		return
	}
	m.runFrame()
}

func (m *Machine) runFrame() {
	m.keypad.Latch()

	defer m.publishInstructions()

	for i := 0; i < m.config.InstructionsPerFrame(); i++ {
		m.cpu.Exec()
		if m.checkFault() {
			return
		}
	}

	m.cpu.TickTimers()
	m.frames.Add(1)
}

func (m *Machine) publishInstructions() {
	m.instructions.Store(m.cpu.GetInstructions())
}

// Step executes a single instruction without ticking the timers.
func (m *Machine) Step() {
	if m.state == Quit {
		return
	}

	m.keypad.Latch()
	m.cpu.Exec()
	m.publishInstructions()
	m.checkFault()
}

func (m *Machine) checkFault() bool {
	if !m.cpu.IsHalted() {
		return false
	}

	slog.Error("Machine stopped", "error", m.cpu.Fault(), "pc", fmt.Sprintf("0x%04X", m.cpu.GetPC()))
	m.state = Quit
	return true
}

func (m *Machine) State() RunState { return m.state }

// SetState changes the run state. A machine without a program stays in Quit.
func (m *Machine) SetState(state RunState) {
	if state != Quit && (!m.loaded || m.cpu.IsHalted()) {
		return
	}
	if m.state != state {
		slog.Debug("Run state changed", "from", m.state, "to", state)
	}
	m.state = state
}

// TogglePause switches between Running and Paused.
func (m *Machine) TogglePause() {
	switch m.state {
	case Running:
		m.SetState(Paused)
		slog.Info("Paused")
	case Paused:
		m.SetState(Running)
		slog.Info("Resumed")
	}
}

// Fault returns the error that halted the machine, if any.
func (m *Machine) Fault() error          { return m.cpu.Fault() }
func (m *Machine) SoundActive() bool     { return m.cpu.SoundActive() }
func (m *Machine) Dirty() bool           { return m.display.Dirty() }
func (m *Machine) Keypad() *input.Keypad { return m.keypad }
func (m *Machine) Config() Config        { return m.config }
func (m *Machine) FrameCount() uint64    { return m.frames.Load() }

func (m *Machine) InstructionCount() uint64 { return m.instructions.Load() }

// Frame returns a snapshot of the display and marks it as presented.
func (m *Machine) Frame() *video.FrameBuffer {
	frame := m.display.Frame(m.config.Foreground, m.config.Background)
	m.display.ClearDirty()
	return frame
}

// ExtractDebugData captures the CPU state and the memory around PC.
func (m *Machine) ExtractDebugData() *debug.Data {
	if m.cpu == nil || m.mem == nil {
		return nil
	}

	pc := m.cpu.GetPC()
	start := uint16(0)
	if pc > debugWindow/3 {
		start = pc - debugWindow/3
	}

	cpuState := &debug.CPUState{
		V:            m.cpu.GetVRegisters(),
		I:            m.cpu.GetI(),
		PC:           pc,
		SP:           m.cpu.GetSP(),
		Stack:        m.cpu.GetStack(),
		DelayTimer:   m.cpu.GetDelayTimer(),
		SoundTimer:   m.cpu.GetSoundTimer(),
		Opcode:       m.cpu.GetOpcode(),
		Instructions: m.cpu.GetInstructions(),
		AwaitingKey:  m.cpu.IsAwaitingKey(),
		Halted:       m.cpu.IsHalted(),
	}
	if err := m.cpu.Fault(); err != nil {
		cpuState.Fault = err.Error()
	}

	return &debug.Data{
		CPU: cpuState,
		Memory: &debug.MemorySnapshot{
			StartAddr: start,
			Bytes:     m.mem.ReadRange(start, debugWindow),
		},
		Keys:          m.keypad.State(),
		DebuggerState: m.debuggerState(),
		SoundActive:   m.cpu.SoundActive(),
		Frames:        m.frames.Load(),
		Rejected:      m.mem.Rejected(),
	}
}

func (m *Machine) debuggerState() debug.DebuggerState {
	switch m.state {
	case Running:
		return debug.DebuggerRunning
	case Paused:
		return debug.DebuggerPaused
	default:
		return debug.DebuggerStopped
	}
}
