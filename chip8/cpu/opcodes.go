package cpu

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Opcode executes one instruction family. It returns true when PC was redirected.
type Opcode func(*CPU, Instruction) bool

// opcodes is indexed by the top nibble of the opcode.
var opcodes = [16]Opcode{
	opcode0x0, opcode0x1, opcode0x2, opcode0x3,
	opcode0x4, opcode0x5, opcode0x6, opcode0x7,
	opcode0x8, opcode0x9, opcode0xA, opcode0xB,
	opcode0xC, opcode0xD, opcode0xE, opcode0xF,
}

// opcodes8 is indexed by N for the 0x8XYN register operations; nil entries are no-ops.
var opcodes8 = [16]Opcode{
	0x0: opcode0x8XY0,
	0x1: opcode0x8XY1,
	0x2: opcode0x8XY2,
	0x3: opcode0x8XY3,
	0x4: opcode0x8XY4,
	0x5: opcode0x8XY5,
	0x6: opcode0x8XY6,
	0x7: opcode0x8XY7,
	0xE: opcode0x8XYE,
}

// opcodesF is indexed by NN for the 0xFXNN operations.
var opcodesF = map[uint8]Opcode{
	0x07: opcode0xFX07,
	0x0A: opcode0xFX0A,
	0x15: opcode0xFX15,
	0x18: opcode0xFX18,
	0x1E: opcode0xFX1E,
	0x29: opcode0xFX29,
	0x33: opcode0xFX33,
	0x55: opcode0xFX55,
	0x65: opcode0xFX65,
}

// ignore is used for malformed or unknown opcodes, which are tolerated as no-ops.
func ignore(c *CPU, in Instruction) bool {
	slog.Debug("Ignoring unknown opcode",
		"opcode", fmt.Sprintf("0x%04X", in.Opcode),
		"pc", fmt.Sprintf("0x%04X", c.pc-2))
	return false
}

// indexAddress returns I+offset. Sums past 0xFFFF saturate, so they stay outside
// memory and get rejected instead of wrapping around to low addresses.
func (c *CPU) indexAddress(offset uint16) uint16 {
	address := uint32(c.i) + uint32(offset)
	if address > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(address)
}

func (c *CPU) skipIf(condition bool) bool {
	if condition {
		c.pc += 2
	}
	return condition
}

// CLS / RET
// #0x00E0, #0x00EE
func opcode0x0(c *CPU, in Instruction) bool {
	switch in.NNN {
	case 0x0E0:
		c.display.Clear()
		return false
	case 0x0EE:
		address, err := c.popStack()
		if err != nil {
			c.halt(err)
			return false
		}
		c.pc = address
		return true
	default:
		// 0NNN machine code routines are not supported
		return ignore(c, in)
	}
}

// JP NNN
// #0x1NNN
func opcode0x1(c *CPU, in Instruction) bool {
	c.pc = in.NNN
	return true
}

// CALL NNN
// #0x2NNN
func opcode0x2(c *CPU, in Instruction) bool {
	if err := c.pushStack(c.pc); err != nil {
		c.halt(err)
		return false
	}
	c.pc = in.NNN
	return true
}

// SE VX, NN
// #0x3XNN
func opcode0x3(c *CPU, in Instruction) bool {
	return c.skipIf(c.v[in.X] == in.NN)
}

// SNE VX, NN
// #0x4XNN
func opcode0x4(c *CPU, in Instruction) bool {
	return c.skipIf(c.v[in.X] != in.NN)
}

// SE VX, VY
// #0x5XY0
func opcode0x5(c *CPU, in Instruction) bool {
	if in.N != 0 {
		return ignore(c, in)
	}
	return c.skipIf(c.v[in.X] == c.v[in.Y])
}

// LD VX, NN
// #0x6XNN
func opcode0x6(c *CPU, in Instruction) bool {
	c.v[in.X] = in.NN
	return false
}

// ADD VX, NN
// #0x7XNN
// VF is not affected.
func opcode0x7(c *CPU, in Instruction) bool {
	c.v[in.X], _ = bit.CheckedAdd(c.v[in.X], in.NN)
	return false
}

// #0x8XYN
func opcode0x8(c *CPU, in Instruction) bool {
	op := opcodes8[in.N]
	if op == nil {
		return ignore(c, in)
	}
	return op(c, in)
}

// LD VX, VY
// #0x8XY0
func opcode0x8XY0(c *CPU, in Instruction) bool {
	c.v[in.X] = c.v[in.Y]
	return false
}

// OR VX, VY
// #0x8XY1
func opcode0x8XY1(c *CPU, in Instruction) bool {
	c.v[in.X] |= c.v[in.Y]
	return false
}

// AND VX, VY
// #0x8XY2
func opcode0x8XY2(c *CPU, in Instruction) bool {
	c.v[in.X] &= c.v[in.Y]
	return false
}

// XOR VX, VY
// #0x8XY3
func opcode0x8XY3(c *CPU, in Instruction) bool {
	c.v[in.X] ^= c.v[in.Y]
	return false
}

// ADD VX, VY
// #0x8XY4
// VF is written last, so it holds the carry even when X is F.
func opcode0x8XY4(c *CPU, in Instruction) bool {
	result, carry := bit.CheckedAdd(c.v[in.X], c.v[in.Y])
	c.v[in.X] = result
	c.setFlag(carry)
	return false
}

// SUB VX, VY
// #0x8XY5
// VF is 1 when there is no borrow (VY <= VX).
func opcode0x8XY5(c *CPU, in Instruction) bool {
	result, borrow := bit.CheckedSub(c.v[in.X], c.v[in.Y])
	c.v[in.X] = result
	c.setFlag(!borrow)
	return false
}

// SHR VX
// #0x8XY6
func opcode0x8XY6(c *CPU, in Instruction) bool {
	shifted := c.v[in.X] & 0x1
	c.v[in.X] >>= 1
	c.setFlag(shifted == 1)
	return false
}

// SUBN VX, VY
// #0x8XY7
// VF is 1 when there is no borrow (VX <= VY).
func opcode0x8XY7(c *CPU, in Instruction) bool {
	result, borrow := bit.CheckedSub(c.v[in.Y], c.v[in.X])
	c.v[in.X] = result
	c.setFlag(!borrow)
	return false
}

// SHL VX
// #0x8XYE
func opcode0x8XYE(c *CPU, in Instruction) bool {
	shifted := bit.IsSet(7, c.v[in.X])
	c.v[in.X] = uint8((uint16(c.v[in.X]) << 1) & 0xFF)
	c.setFlag(shifted)
	return false
}

// SNE VX, VY
// #0x9XY0
func opcode0x9(c *CPU, in Instruction) bool {
	if in.N != 0 {
		return ignore(c, in)
	}
	return c.skipIf(c.v[in.X] != c.v[in.Y])
}

// LD I, NNN
// #0xANNN
func opcode0xA(c *CPU, in Instruction) bool {
	c.i = in.NNN
	return false
}

// JP V0, NNN
// #0xBNNN
func opcode0xB(c *CPU, in Instruction) bool {
	c.pc = uint16(c.v[0]) + in.NNN
	return true
}

// RND VX, NN
// #0xCXNN
func opcode0xC(c *CPU, in Instruction) bool {
	c.v[in.X] = c.random() & in.NN
	return false
}

// DRW VX, VY, N
// #0xDXYN
func opcode0xD(c *CPU, in Instruction) bool {
	var rows [15]byte
	for row := uint8(0); row < in.N; row++ {
		rows[row] = c.bus.Read(c.indexAddress(uint16(row)))
	}

	collision := c.display.DrawSprite(c.v[in.X], c.v[in.Y], rows[:in.N])
	c.setFlag(collision)
	return false
}

// SKP VX / SKNP VX
// #0xEX9E, #0xEXA1
func opcode0xE(c *CPU, in Instruction) bool {
	switch in.NN {
	case 0x9E:
		return c.skipIf(c.keypad.IsPressed(c.v[in.X]))
	case 0xA1:
		return c.skipIf(!c.keypad.IsPressed(c.v[in.X]))
	default:
		return ignore(c, in)
	}
}

// #0xFXNN
func opcode0xF(c *CPU, in Instruction) bool {
	op, ok := opcodesF[in.NN]
	if !ok {
		return ignore(c, in)
	}
	return op(c, in)
}

// LD VX, DT
// #0xFX07
func opcode0xFX07(c *CPU, in Instruction) bool {
	c.v[in.X] = c.timers.Delay()
	return false
}

// LD VX, K
// #0xFX0A
// Waits for a key to be pressed and then released. While waiting, PC is moved back
// so the same instruction runs again on the next Exec.
func opcode0xFX0A(c *CPU, in Instruction) bool {
	if !c.hasCapturedKey {
		for key := uint8(0); key < keyCount; key++ {
			if c.keypad.IsPressed(key) {
				c.capturedKey = key
				c.hasCapturedKey = true
				break
			}
		}
	}

	if !c.hasCapturedKey || c.keypad.IsPressed(c.capturedKey) {
		c.awaitingKey = true
		c.pc -= 2
		return true
	}

	c.v[in.X] = c.capturedKey
	c.awaitingKey = false
	c.hasCapturedKey = false
	c.capturedKey = 0
	return false
}

// LD DT, VX
// #0xFX15
func opcode0xFX15(c *CPU, in Instruction) bool {
	c.timers.SetDelay(c.v[in.X])
	return false
}

// LD ST, VX
// #0xFX18
func opcode0xFX18(c *CPU, in Instruction) bool {
	c.timers.SetSound(c.v[in.X])
	return false
}

// ADD I, VX
// #0xFX1E
// I saturates at 0xFFFF instead of wrapping back into the reserved area.
func opcode0xFX1E(c *CPU, in Instruction) bool {
	c.i = c.indexAddress(uint16(c.v[in.X]))
	return false
}

// LD F, VX
// #0xFX29
func opcode0xFX29(c *CPU, in Instruction) bool {
	c.i = uint16(c.v[in.X]) * FontGlyphSize
	return false
}

// LD B, VX
// #0xFX33
func opcode0xFX33(c *CPU, in Instruction) bool {
	value := c.v[in.X]
	c.bus.Write(c.indexAddress(0), value/100)
	c.bus.Write(c.indexAddress(1), (value/10)%10)
	c.bus.Write(c.indexAddress(2), value%10)
	return false
}

// LD [I], VX
// #0xFX55
// Stores V0 through VX inclusive. I is left unchanged.
func opcode0xFX55(c *CPU, in Instruction) bool {
	for r := uint8(0); r <= in.X; r++ {
		c.bus.Write(c.indexAddress(uint16(r)), c.v[r])
	}
	return false
}

// LD VX, [I]
// #0xFX65
// Loads V0 through VX inclusive. I is left unchanged.
func opcode0xFX65(c *CPU, in Instruction) bool {
	for r := uint8(0); r <= in.X; r++ {
		c.v[r] = c.bus.Read(c.indexAddress(uint16(r)))
	}
	return false
}
