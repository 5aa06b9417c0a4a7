package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	// Size is the amount of addressable memory, in bytes.
	Size = 0x1000
	// ProgramStart is the address programs are loaded at. Everything below it is
	// reserved for the interpreter (font data lives at FontAddress).
	ProgramStart uint16 = 0x200
	// MaxROMSize is the largest program that fits between ProgramStart and the end of memory.
	MaxROMSize = Size - int(ProgramStart)
)

var (
	// ErrROMTooLarge is returned when a program does not fit in memory.
	ErrROMTooLarge = errors.New("ROM too large")
	// ErrEmptyROM is returned when loading a program with no bytes.
	ErrEmptyROM = errors.New("ROM is empty")
)

// Memory is the flat 4KiB address space of the machine.
// Accesses outside of it are rejected: reads return 0 and writes are dropped.
type Memory struct {
	data     [Size]byte
	rejected uint64
}

// New creates a memory unit with the font already loaded in the reserved area.
func New() *Memory {
	m := &Memory{}
	m.loadFont()
	return m
}

// Read returns the byte at the given address, or 0 if the address is out of range.
func (m *Memory) Read(address uint16) byte {
	if int(address) >= Size {
		m.reject("read", address)
		return 0
	}

	return m.data[address]
}

// Write stores a byte at the given address. Out of range writes are dropped.
func (m *Memory) Write(address uint16, value byte) {
	if int(address) >= Size {
		m.reject("write", address)
		return
	}

	m.data[address] = value
}

// ReadRange copies up to length bytes starting at address. The copy stops at the end
// of memory, so the returned slice can be shorter than requested.
func (m *Memory) ReadRange(address uint16, length int) []byte {
	start := int(address)
	if start >= Size || length <= 0 {
		return nil
	}

	end := start + length
	if end > Size {
		end = Size
	}

	out := make([]byte, end-start)
	copy(out, m.data[start:end])
	return out
}

// Rejected returns how many out of range accesses have been dropped so far.
func (m *Memory) Rejected() uint64 {
	return m.rejected
}

func (m *Memory) reject(op string, address uint16) {
	m.rejected++
	slog.Debug("Rejected out of range memory access", "op", op, "address", fmt.Sprintf("0x%04X", address))
}

// LoadROM copies the program into memory starting at ProgramStart.
// Program memory is cleared first, so loading a second program leaves no trace of the first.
func (m *Memory) LoadROM(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyROM
	}

	if len(data) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max allowed is %d", ErrROMTooLarge, len(data), MaxROMSize)
	}

	clear(m.data[ProgramStart:])
	copy(m.data[ProgramStart:], data)

	slog.Info("Loaded ROM data", "bytes", len(data))
	return nil
}

// Reset wipes memory and reloads the font.
func (m *Memory) Reset() {
	clear(m.data[:])
	m.rejected = 0
	m.loadFont()
}
