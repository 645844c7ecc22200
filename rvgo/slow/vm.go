package slow

import (
	"fmt"

	"github.com/minirv/golden/rvgo/fast"
	"github.com/minirv/golden/rvgo/riscv"
)

// RevertError is a fatal step failure, carrying the same numeric codes as the fast model.
type RevertError struct {
	Code uint64
	Msg  string
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("revert %x: %s", e.Code, e.Msg)
}

// Step retires one instruction of s, using only uint256 word arithmetic.
// The memories of s are only used as word storage; all bounds checks happen here.
// A failed step commits nothing and halts s, like fast.Step.
func Step(s *fast.VMState) (outErr error) {
	if s.Halted {
		return &RevertError{Code: riscv.ErrHalted, Msg: "cpu halted"}
	}
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(*RevertError)
			if !ok {
				panic(r)
			}
			s.Halted = true
			outErr = rerr
		}
	}()

	revertWithCode := func(code uint64, format string, args ...any) {
		panic(&RevertError{Code: code, Msg: fmt.Sprintf(format, args...)})
	}

	var registers [riscv.RegisterCount]U32
	for i, v := range s.Registers {
		registers[i] = wordToU32(v)
	}
	registerCount := toU32(riscv.RegisterCount)

	checkRegister := func(reg U32) {
		if iszero32(lt32(reg, registerCount)) {
			revertWithCode(riscv.ErrIllegalRegister, "register x%d outside the register file", reg.val())
		}
	}
	getRegister := func(reg U32) U32 {
		checkRegister(reg)
		return registers[reg.val()]
	}

	var (
		rdWritten  bool
		rdIndex    U32
		rdValue    U32
		memWritten bool
		memIndex   U32
		memValue   U32
	)
	setRegister := func(reg U32, v U32) {
		checkRegister(reg)
		if iszero32(reg) {
			return
		}
		rdWritten, rdIndex, rdValue = true, reg, v
	}

	dataIndex := func(addr U32) U32 {
		index := shr32(addr, toU32(2))
		if iszero32(lt32(index, wordToU32(s.DMem.Capacity()))) {
			revertWithCode(riscv.ErrIllegalAddress, "data address %08x out of bounds", addr.val())
		}
		return index
	}
	loadWord := func(addr U32) U32 {
		w, err := s.DMem.ReadWord(dataIndex(addr).val())
		if err != nil {
			panic(err)
		}
		return wordToU32(w)
	}
	storeWord := func(addr U32, v U32) {
		memWritten, memIndex, memValue = true, dataIndex(addr), v
	}

	pc := wordToU32(s.PC)
	fetchIndex := shr32(pc, toU32(2))
	if iszero32(lt32(fetchIndex, wordToU32(s.IMem.Capacity()))) {
		revertWithCode(riscv.ErrFetchOutOfBounds, "pc %08x out of bounds", pc.val())
	}
	raw, err := s.IMem.ReadWord(fetchIndex.val())
	if err != nil {
		panic(err)
	}
	instr := wordToU32(raw)

	opcode := parseOpcode(instr)
	rd := parseRd(instr)
	funct3 := parseFunct3(instr)
	rs1 := parseRs1(instr)
	rs2 := parseRs2(instr)
	funct7 := parseFunct7(instr)

	nextPC := add32(pc, toU32(4))

	switch opcode.val() {
	case riscv.OpcodeOp:
		if !iszero32(funct3) || !iszero32(funct7) {
			revertWithCode(riscv.ErrIllegalFunction, "op funct3 %d funct7 %d", funct3.val(), funct7.val())
		}
		setRegister(rd, add32(getRegister(rs1), getRegister(rs2)))
	case riscv.OpcodeOpImm:
		if !iszero32(funct3) {
			revertWithCode(riscv.ErrIllegalFunction, "op-imm funct3 %d", funct3.val())
		}
		setRegister(rd, add32(getRegister(rs1), parseImmTypeI(instr)))
	case riscv.OpcodeLUI:
		if iszero32(rd) {
			revertWithCode(riscv.ErrIllegalRegister, "lui to x0")
		}
		setRegister(rd, parseImmTypeU(instr))
	case riscv.OpcodeLoad:
		switch funct3.val() {
		case riscv.Funct3LW, riscv.Funct3LBU:
		default:
			revertWithCode(riscv.ErrIllegalFunction, "load funct3 %d", funct3.val())
		}
		addr := add32(getRegister(rs1), parseImmTypeI(instr))
		checkRegister(rd)
		v := loadWord(addr)
		if funct3.val() == riscv.Funct3LBU {
			v = and32(v, toU32(0xFF))
		}
		setRegister(rd, v)
	case riscv.OpcodeStore:
		switch funct3.val() {
		case riscv.Funct3SW, riscv.Funct3SB:
		default:
			revertWithCode(riscv.ErrIllegalFunction, "store funct3 %d", funct3.val())
		}
		addr := add32(getRegister(rs1), parseImmTypeS(instr))
		v := getRegister(rs2)
		if funct3.val() == riscv.Funct3SB {
			v = and32(v, toU32(0xFF))
		}
		storeWord(addr, v)
	case riscv.OpcodeJALR:
		if iszero32(funct3) {
			target := add32(getRegister(rs1), parseImmTypeI(instr))
			setRegister(rd, add32(pc, toU32(4)))
			nextPC = and32(target, not32(toU32(1)))
		}
	}

	if rdWritten {
		s.Registers[rdIndex.val()] = rdValue.val()
	}
	if memWritten {
		if err := s.DMem.WriteWord(memIndex.val(), memValue.val()); err != nil {
			panic(err)
		}
	}
	s.PC = nextPC.val()
	s.Registers[0] = 0
	s.Step++
	return nil
}
