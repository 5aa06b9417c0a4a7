package cpu

import "github.com/valerio/go-chip8/chip8/bit"

// Instruction is a decoded opcode. All fields are derived from Opcode.
type Instruction struct {
	Opcode uint16
	NNN    uint16 // 12 bit address
	NN     uint8  // 8 bit constant
	N      uint8  // 4 bit constant
	X      uint8  // 4 bit register index
	Y      uint8  // 4 bit register index
}

// Family returns the top nibble, used to pick the opcode group.
func (i Instruction) Family() uint8 {
	return bit.Nibble(i.Opcode, 3)
}

// Decode splits a raw opcode into its fields. Any 16 bit value decodes.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Opcode: opcode,
		NNN:    opcode & 0x0FFF,
		NN:     bit.Low(opcode),
		N:      bit.Nibble(opcode, 0),
		X:      bit.Nibble(opcode, 2),
		Y:      bit.Nibble(opcode, 1),
	}
}

// fetch reads the big endian opcode at PC. PC is not changed.
func (c *CPU) fetch() uint16 {
	high := c.bus.Read(c.pc)
	low := c.bus.Read(c.pc + 1)
	return bit.Combine(high, low)
}
