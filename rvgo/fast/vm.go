package fast

import (
	"fmt"

	"github.com/minirv/golden/rvgo/riscv"
)

// Effect describes what retiring one instruction changed.
type Effect struct {
	Instr Instruction
	PC    uint32

	RegWritten bool
	Rd         uint32
	RdValue    uint32

	MemWritten bool
	MemIndex   uint32
	MemValue   uint32

	NextPC uint32
}

// Step runs a single instruction.
// A failed step commits nothing and halts the state until Reset.
func Step(s *VMState) error {
	_, err := Execute(s)
	return err
}

// Execute is Step, additionally reporting the effect of the retired instruction.
func Execute(s *VMState) (eff Effect, outErr error) {
	if s.Halted {
		return eff, fmt.Errorf("revert %x: %w", riscv.ErrHalted, ErrHalted)
	}
	var revertCode uint64
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				outErr = err
			} else {
				outErr = fmt.Errorf("err: %v", r)
			}
			s.Halted = true
		}
		if revertCode != 0 {
			outErr = fmt.Errorf("revert %x: %w", revertCode, outErr)
		}
	}()

	revertWithCode := func(code uint64, err error) {
		revertCode = code
		panic(err)
	}

	checkRegister := func(reg uint32) {
		if reg >= riscv.RegisterCount {
			revertWithCode(riscv.ErrIllegalRegister, fmt.Errorf("%w: x%d, register file has %d entries", ErrIllegalRegister, reg, riscv.RegisterCount))
		}
	}

	loadRegister := func(reg uint32) uint32 {
		checkRegister(reg)
		return s.Registers[reg]
	}

	// register and memory writes are buffered in eff, and committed once the instruction cannot fault anymore
	writeRegister := func(reg uint32, v uint32) {
		checkRegister(reg)
		if reg == 0 {
			return
		}
		eff.RegWritten = true
		eff.Rd = reg
		eff.RdValue = v
	}

	loadMem := func(addr uint32) uint32 {
		v, err := s.DMem.ReadWord(addr >> 2)
		if err != nil {
			revertWithCode(riscv.ErrIllegalAddress, fmt.Errorf("%w: load from %08x: %w", ErrIllegalAddress, addr, err))
		}
		return v
	}

	storeMem := func(addr uint32, v uint32) {
		index := addr >> 2
		if index >= s.DMem.Capacity() {
			revertWithCode(riscv.ErrIllegalAddress, fmt.Errorf("%w: store to %08x (word %#x), capacity %#x", ErrIllegalAddress, addr, index, s.DMem.Capacity()))
		}
		eff.MemWritten = true
		eff.MemIndex = index
		eff.MemValue = v
	}

	pc := s.PC
	instr, err := s.IMem.ReadWord(pc >> 2)
	if err != nil {
		revertWithCode(riscv.ErrFetchOutOfBounds, fmt.Errorf("%w: pc %08x: %w", ErrFetchOutOfBounds, pc, err))
	}

	in := Decode(instr)
	eff.Instr = in
	eff.PC = pc
	nextPC := pc + 4

	// the rd value goes through the same writeback mux and ALU as the hardware blocks
	writeback := func(sel uint32, aluResult uint32, memData uint32) {
		writeRegister(in.Rd, WritebackSelect(sel, aluResult, memData, pc+4, in.ImmU))
	}
	addrOf := func(base uint32, imm uint32) uint32 {
		return ALU(base, imm, riscv.Funct3ADD, riscv.Funct7ADD)
	}

	switch op := in.Op(); op {
	case OpADD:
		rs1Value := loadRegister(in.Rs1)
		rs2Value := loadRegister(in.Rs2)
		writeback(WritebackALU, ALU(rs1Value, rs2Value, in.Funct3, in.Funct7), 0)
	case OpADDI:
		rs1Value := loadRegister(in.Rs1)
		writeback(WritebackALU, ALU(rs1Value, in.ImmI, in.Funct3, riscv.Funct7ADD), 0)
	case OpLUI:
		// unlike ADD/ADDI, the reference treats LUI to x0 as an illegal encoding
		if in.Rd == 0 {
			revertWithCode(riscv.ErrIllegalRegister, fmt.Errorf("%w: LUI to x0", ErrIllegalRegister))
		}
		writeback(WritebackImmU, 0, 0)
	case OpLW, OpLBU:
		rs1Value := loadRegister(in.Rs1)
		checkRegister(in.Rd)
		v := loadMem(addrOf(rs1Value, in.ImmI))
		if op == OpLBU {
			v = ZeroExtend8(v)
		}
		writeback(WritebackMem, 0, v)
	case OpSW, OpSB:
		rs1Value := loadRegister(in.Rs1)
		value := loadRegister(in.Rs2)
		if op == OpSB {
			// the whole word is replaced by the zero-extended byte
			value = ZeroExtend8(value)
		}
		storeMem(addrOf(rs1Value, in.ImmS), value)
	case OpJALR:
		rs1Value := loadRegister(in.Rs1)
		writeback(WritebackPCPlus4, 0, 0)
		nextPC = addrOf(rs1Value, in.ImmI) &^ 1 // least significant bit is set to 0
	case OpIllegal:
		revertWithCode(riscv.ErrIllegalFunction, fmt.Errorf("%w: opcode %#02x funct3 %03b funct7 %07b", ErrIllegalFunction, in.Opcode, in.Funct3, in.Funct7))
	case OpNop:
		// unknown instructions only advance the pc
	default:
		panic(fmt.Errorf("unhandled op %s", op))
	}

	if eff.RegWritten {
		s.Registers[eff.Rd] = eff.RdValue
	}
	if eff.MemWritten {
		if err := s.DMem.WriteWord(eff.MemIndex, eff.MemValue); err != nil {
			panic(err)
		}
	}
	eff.NextPC = nextPC
	s.PC = nextPC
	s.Registers[0] = 0
	s.Step++
	return eff, nil
}
