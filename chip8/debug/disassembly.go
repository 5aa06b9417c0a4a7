package debug

import (
	"github.com/valerio/go-chip8/chip8/disasm"
)

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly returns up to maxLines instructions from the snapshot,
// centered on pc when it falls inside the snapshot.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	end := uint32(snapshot.StartAddr) + uint32(len(snapshot.Bytes))
	pcInSnapshot := pc >= snapshot.StartAddr && uint32(pc) < end

	// decode in the instruction grid that goes through pc
	offset := 0
	if pcInSnapshot && (pc-snapshot.StartAddr)%disasm.InstructionLength != 0 {
		offset = 1
	}

	all := make([]DisasmLine, 0, len(snapshot.Bytes)/disasm.InstructionLength+1)
	pcIndex := -1
	for i := offset; i < len(snapshot.Bytes); {
		addr := snapshot.StartAddr + uint16(i)
		instruction, length := disasm.DisassembleBytes(snapshot.Bytes, i)
		if addr == pc {
			pcIndex = len(all)
		}
		all = append(all, DisasmLine{
			Address:     addr,
			Instruction: instruction,
			IsCurrent:   addr == pc,
		})
		i += length
	}

	if pcIndex < 0 {
		if len(all) > maxLines-1 {
			all = all[:maxLines-1]
		}
		return append(all, DisasmLine{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		})
	}

	startIdx := pcIndex - maxLines/2
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + maxLines
	if endIdx > len(all) {
		endIdx = len(all)
		startIdx = endIdx - maxLines
		if startIdx < 0 {
			startIdx = 0
		}
	}

	return all[startIdx:endIdx]
}
