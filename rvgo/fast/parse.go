package fast

import "github.com/minirv/golden/rvgo/riscv"

// Functions to parse the instruction field values from different types of RISC-V instructions.
// These should 1:1 match with the same definitions in the slow package.

func parseOpcode(instr uint32) uint32 {
	return instr & 0x7F
}

func parseRd(instr uint32) uint32 {
	return (instr >> 7) & 0x1F
}

func parseFunct3(instr uint32) uint32 {
	return (instr >> 12) & 0x7
}

func parseRs1(instr uint32) uint32 {
	return (instr >> 15) & 0x1F
}

func parseRs2(instr uint32) uint32 {
	return (instr >> 20) & 0x1F
}

func parseFunct7(instr uint32) uint32 {
	return (instr >> 25) & 0x7F
}

// arithmetic shift: bit 31 of the instruction is copied into bits [31:12]
func parseImmTypeI(instr uint32) uint32 {
	return uint32(int32(instr) >> 20)
}

func parseImmTypeS(instr uint32) uint32 {
	imm := uint32(int32(instr&0xFE000000)>>20) | ((instr >> 7) & 0x1F)
	if imm&0x800 != 0 {
		imm |= 0xFFFFF800
	}
	return imm
}

// upper 20 bits are already in place, the low 12 bits are zero
func parseImmTypeU(instr uint32) uint32 {
	return instr & 0xFFFFF000
}

// Op identifies one supported opcode+funct3 combination.
type Op uint8

const (
	// OpNop covers every opcode outside the supported subset; it only advances the pc.
	OpNop Op = iota
	// OpIllegal is a supported opcode with a funct3/funct7 combination the model does not implement.
	OpIllegal
	OpADD
	OpADDI
	OpLUI
	OpLW
	OpLBU
	OpSW
	OpSB
	OpJALR
)

var opNames = [...]string{
	OpNop:     "NOP",
	OpIllegal: "ILLEGAL",
	OpADD:     "ADD",
	OpADDI:    "ADDI",
	OpLUI:     "LUI",
	OpLW:      "LW",
	OpLBU:     "LBU",
	OpSW:      "SW",
	OpSB:      "SB",
	OpJALR:    "JALR",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op(?)"
}

// Instruction holds every field of a decoded instruction word.
// Fields that do not apply to the instruction format are still decoded.
type Instruction struct {
	Raw    uint32
	Opcode uint32
	Rd     uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
	Funct7 uint32
	ImmI   uint32
	ImmS   uint32
	ImmU   uint32
}

func Decode(instr uint32) Instruction {
	return Instruction{
		Raw:    instr,
		Opcode: parseOpcode(instr),
		Rd:     parseRd(instr),
		Funct3: parseFunct3(instr),
		Rs1:    parseRs1(instr),
		Rs2:    parseRs2(instr),
		Funct7: parseFunct7(instr),
		ImmI:   parseImmTypeI(instr),
		ImmS:   parseImmTypeS(instr),
		ImmU:   parseImmTypeU(instr),
	}
}

func (in Instruction) Op() Op {
	switch in.Opcode {
	case riscv.OpcodeOp:
		if in.Funct3 == riscv.Funct3ADD && in.Funct7 == riscv.Funct7ADD {
			return OpADD
		}
		return OpIllegal
	case riscv.OpcodeOpImm:
		if in.Funct3 == riscv.Funct3ADDI {
			return OpADDI
		}
		return OpIllegal
	case riscv.OpcodeLUI:
		return OpLUI
	case riscv.OpcodeLoad:
		switch in.Funct3 {
		case riscv.Funct3LW:
			return OpLW
		case riscv.Funct3LBU:
			return OpLBU
		default:
			return OpIllegal
		}
	case riscv.OpcodeStore:
		switch in.Funct3 {
		case riscv.Funct3SW:
			return OpSW
		case riscv.Funct3SB:
			return OpSB
		default:
			return OpIllegal
		}
	case riscv.OpcodeJALR:
		// the reference hardware ignores JALR with a non-zero funct3
		if in.Funct3 == riscv.Funct3JALR {
			return OpJALR
		}
		return OpNop
	default:
		return OpNop
	}
}
