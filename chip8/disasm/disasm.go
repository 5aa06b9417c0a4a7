package disasm

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// InstructionLength is the size in bytes of every CHIP-8 instruction.
const InstructionLength = 2

// Reader is anything addressable the disassembler can fetch opcodes from.
type Reader interface {
	Read(address uint16) byte
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Opcode      uint16
	Instruction string
}

// Disassemble returns the mnemonic form of a single opcode. Opcodes the
// interpreter treats as no-ops are rendered as data words.
func Disassemble(opcode uint16) string {
	nnn := opcode & 0x0FFF
	nn := bit.Low(opcode)
	n := bit.Nibble(opcode, 0)
	x := bit.Nibble(opcode, 2)
	y := bit.Nibble(opcode, 1)

	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch nnn {
		case 0x0E0:
			return "CLS"
		case 0x0EE:
			return "RET"
		}
		return fmt.Sprintf("SYS 0x%03X", nnn)
	case 0x1:
		return fmt.Sprintf("JP 0x%03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL 0x%03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%02X", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, nn)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%02X", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, nn)
	case 0x8:
		switch n {
		case 0x0:
			return fmt.Sprintf("LD V%X, V%X", x, y)
		case 0x1:
			return fmt.Sprintf("OR V%X, V%X", x, y)
		case 0x2:
			return fmt.Sprintf("AND V%X, V%X", x, y)
		case 0x3:
			return fmt.Sprintf("XOR V%X, V%X", x, y)
		case 0x4:
			return fmt.Sprintf("ADD V%X, V%X", x, y)
		case 0x5:
			return fmt.Sprintf("SUB V%X, V%X", x, y)
		case 0x6:
			return fmt.Sprintf("SHR V%X", x)
		case 0x7:
			return fmt.Sprintf("SUBN V%X, V%X", x, y)
		case 0xE:
			return fmt.Sprintf("SHL V%X", x)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, 0x%03X", nnn)
	case 0xB:
		return fmt.Sprintf("JP V0, 0x%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%X, 0x%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, n)
	case 0xE:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		switch nn {
		case 0x07:
			return fmt.Sprintf("LD V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("LD V%X, K", x)
		case 0x15:
			return fmt.Sprintf("LD DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("LD ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("ADD I, V%X", x)
		case 0x29:
			return fmt.Sprintf("LD F, V%X", x)
		case 0x33:
			return fmt.Sprintf("LD B, V%X", x)
		case 0x55:
			return fmt.Sprintf("LD [I], V%X", x)
		case 0x65:
			return fmt.Sprintf("LD V%X, [I]", x)
		}
	}

	return fmt.Sprintf("DW 0x%04X", opcode)
}

// DisassembleBytes disassembles the instruction at offset within data,
// returning the mnemonic and the number of bytes consumed.
func DisassembleBytes(data []byte, offset int) (string, int) {
	if offset < 0 || offset >= len(data) {
		return "??", 1
	}
	if offset+1 >= len(data) {
		return fmt.Sprintf("DB 0x%02X", data[offset]), 1
	}

	return Disassemble(bit.Combine(data[offset], data[offset+1])), InstructionLength
}

// DisassembleAt disassembles the instruction at the given program counter
func DisassembleAt(pc uint16, r Reader) DisassemblyLine {
	opcode := bit.Combine(r.Read(pc), r.Read(pc+1))

	return DisassemblyLine{
		Address:     pc,
		Opcode:      opcode,
		Instruction: Disassemble(opcode),
	}
}

// DisassembleRange disassembles data as if it were loaded at start. A trailing
// odd byte is emitted as a data byte.
func DisassembleRange(start uint16, data []byte) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, len(data)/InstructionLength+1)

	for i := 0; i < len(data); {
		instruction, length := DisassembleBytes(data, i)
		var opcode uint16
		if length == InstructionLength {
			opcode = bit.Combine(data[i], data[i+1])
		} else {
			opcode = uint16(data[i])
		}

		lines = append(lines, DisassemblyLine{
			Address:     start + uint16(i),
			Opcode:      opcode,
			Instruction: instruction,
		})
		i += length
	}

	return lines
}
