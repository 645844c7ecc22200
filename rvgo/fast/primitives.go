package fast

import (
	"fmt"

	"github.com/minirv/golden/rvgo/riscv"
)

// Reference values for the individual miniRV hardware blocks.
// The per-block drivers compare the circuit outputs against these.

// ALU computes the R-type result for the given funct3/funct7.
// Unknown combinations produce 0.
func ALU(a, b uint32, funct3, funct7 uint32) uint32 {
	switch funct3 {
	case 0: // 000 = ADD/SUB
		if funct7 == riscv.Funct7SUB {
			return a - b
		}
		return a + b
	case 1: // 001 = SLL
		return a << (b & 0x1F)
	case 2: // 010 = SLT
		if int32(a) < int32(b) {
			return 1
		}
		return 0
	case 3: // 011 = SLTU
		if a < b {
			return 1
		}
		return 0
	case 4: // 100 = XOR
		return a ^ b
	case 5: // 101 = SR~
		if funct7 == riscv.Funct7SUB {
			return uint32(int32(a) >> (b & 0x1F))
		}
		return a >> (b & 0x1F)
	case 6: // 110 = OR
		return a | b
	case 7: // 111 = AND
		return a & b
	}
	return 0
}

const (
	WritebackALU = iota
	WritebackMem
	WritebackPCPlus4
	WritebackImmU
)

// WritebackSelect is the register-file write-data multiplexer. Only the low 2 bits of sel are used.
func WritebackSelect(sel uint32, aluResult, memData, pcPlus4, immU uint32) uint32 {
	switch sel & 3 {
	case WritebackALU:
		return aluResult
	case WritebackMem:
		return memData
	case WritebackPCPlus4:
		return pcPlus4
	default:
		return immU
	}
}

// ZeroExtend8 keeps the low byte, as LBU and SB do.
func ZeroExtend8(v uint32) uint32 {
	return v & 0xFF
}

func ZeroExtend12(v uint32) uint32 {
	return v & 0xFFF
}

func SignExtend12(v uint32) uint32 {
	v &= 0xFFF
	if v&0x800 != 0 {
		return v | 0xFFFFF000
	}
	return v
}

// RegisterFile models the 16-entry register file block: x0 reads as zero and ignores writes.
type RegisterFile struct {
	regs [riscv.RegisterCount]uint32
}

func (rf *RegisterFile) Read(i uint32) (uint32, error) {
	if i >= riscv.RegisterCount {
		return 0, fmt.Errorf("%w: x%d", ErrIllegalRegister, i)
	}
	return rf.regs[i], nil
}

func (rf *RegisterFile) Write(i uint32, v uint32) error {
	if i >= riscv.RegisterCount {
		return fmt.Errorf("%w: x%d", ErrIllegalRegister, i)
	}
	if i != 0 {
		rf.regs[i] = v
	}
	return nil
}

func (rf *RegisterFile) Reset() {
	rf.regs = [riscv.RegisterCount]uint32{}
}

func (rf *RegisterFile) Values() [riscv.RegisterCount]uint32 {
	return rf.regs
}
