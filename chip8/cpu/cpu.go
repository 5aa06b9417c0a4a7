package cpu

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/go-chip8/chip8/memory"
)

// Bus provides access to the machine memory
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Display is the drawing surface the CPU renders sprites onto.
type Display interface {
	Clear()
	DrawSprite(x, y uint8, rows []byte) bool
}

// Keypad is the latched hex keypad state.
type Keypad interface {
	IsPressed(key uint8) bool
}

// ErrPCOutOfRange is the fault raised when PC leaves memory, for example after
// a BNNN jump past 0xFFF. Execution stops instead of wrapping to address 0.
var ErrPCOutOfRange = errors.New("program counter out of range")

const (
	// EntryPoint is where execution starts, right after the reserved area.
	EntryPoint uint16 = 0x200
	// FontGlyphSize is the height in bytes of a built-in font glyph.
	FontGlyphSize = 5

	flagRegister = 0xF
	keyCount     = 16
)

// CPU holds the register file, stack, timers and the key wait state.
type CPU struct {
	// registers
	v  [16]uint8
	i  uint16
	pc uint16

	stack [StackSize]uint16
	sp    uint8

	timers Timers

	// FX0A state, kept across calls while the instruction stalls
	awaitingKey    bool
	hasCapturedKey bool
	capturedKey    uint8

	// metadata
	currentOpcode uint16
	instructions  uint64
	halted        bool
	fault         error

	bus     Bus
	display Display
	keypad  Keypad
	random  func() uint8
}

// New returns a CPU ready to run from EntryPoint.
func New(bus Bus, display Display, keypad Keypad) *CPU {
	c := &CPU{
		bus:     bus,
		display: display,
		keypad:  keypad,
	}
	c.Seed(rand.Uint64())
	c.Reset()

	return c
}

// Reset clears all registers, the stack, the timers and any fault.
func (c *CPU) Reset() {
	c.v = [16]uint8{}
	c.i = 0
	c.pc = EntryPoint
	c.stack = [StackSize]uint16{}
	c.sp = 0
	c.timers = Timers{}
	c.awaitingKey = false
	c.hasCapturedKey = false
	c.capturedKey = 0
	c.currentOpcode = 0
	c.instructions = 0
	c.halted = false
	c.fault = nil
}

// Seed makes CXNN deterministic for the given seed.
func (c *CPU) Seed(seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	c.random = func() uint8 { return uint8(r.UintN(256)) }
}

// SetRandomSource replaces the byte source used by CXNN.
func (c *CPU) SetRandomSource(fn func() uint8) {
	c.random = fn
}

// Exec executes a single instruction: fetch at PC, advance PC by 2, dispatch.
// Returns true if the instruction moved PC somewhere other than the next instruction
// (jump, call, return, taken skip, or a key wait stall).
// A halted CPU executes nothing.
func (c *CPU) Exec() bool {
	if c.halted {
		return false
	}

	if int(c.pc)+1 >= memory.Size {
		c.halt(fmt.Errorf("%w: 0x%04X", ErrPCOutOfRange, c.pc))
		return false
	}

	c.currentOpcode = c.fetch()
	instruction := Decode(c.currentOpcode)
	c.pc += 2

	redirected := opcodes[instruction.Family()](c, instruction)
	c.instructions++

	return redirected
}

// TickTimers advances the delay and sound timers by one 60Hz tick.
func (c *CPU) TickTimers() {
	c.timers.Tick()
}

// SoundActive reports whether the buzzer should be on.
func (c *CPU) SoundActive() bool {
	return c.timers.SoundActive()
}

// halt stops execution for good, until the next Reset.
func (c *CPU) halt(err error) {
	c.halted = true
	c.fault = err
	slog.Error("Machine fault, CPU halted", "error", err, "opcode", fmt.Sprintf("0x%04X", c.currentOpcode))
}

func (c *CPU) setFlag(condition bool) {
	if condition {
		c.v[flagRegister] = 1
		return
	}
	c.v[flagRegister] = 0
}

// Debug getter methods for register display
func (c *CPU) GetV(index uint8) uint8   { return c.v[index&0x0F] }
func (c *CPU) GetVRegisters() [16]uint8 { return c.v }
func (c *CPU) GetI() uint16             { return c.i }
func (c *CPU) GetPC() uint16            { return c.pc }
func (c *CPU) GetSP() uint8             { return c.sp }
func (c *CPU) GetDelayTimer() uint8     { return c.timers.Delay() }
func (c *CPU) GetSoundTimer() uint8     { return c.timers.Sound() }
func (c *CPU) GetOpcode() uint16        { return c.currentOpcode }
func (c *CPU) GetInstructions() uint64  { return c.instructions }

// GetStack returns the occupied part of the stack, oldest first.
func (c *CPU) GetStack() []uint16 {
	out := make([]uint16, c.sp)
	copy(out, c.stack[:c.sp])
	return out
}

// State getters
func (c *CPU) IsHalted() bool      { return c.halted }
func (c *CPU) Fault() error        { return c.fault }
func (c *CPU) IsAwaitingKey() bool { return c.awaitingKey }
