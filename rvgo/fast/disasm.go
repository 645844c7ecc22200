package fast

import (
	"fmt"

	"github.com/minirv/golden/rvgo/riscv"
)

// Mnemonic names the instruction the way the hardware bench prints it.
// Unsupported funct3 values of loads and stores come out as "LOAD?" and "STORE?".
func Mnemonic(instr uint32) string {
	in := Decode(instr)
	switch in.Opcode {
	case riscv.OpcodeOp:
		return "ADD"
	case riscv.OpcodeOpImm:
		return "ADDI"
	case riscv.OpcodeLUI:
		return "LUI"
	case riscv.OpcodeLoad:
		switch in.Funct3 {
		case riscv.Funct3LW:
			return "LW"
		case riscv.Funct3LBU:
			return "LBU"
		}
		return "LOAD?"
	case riscv.OpcodeStore:
		switch in.Funct3 {
		case riscv.Funct3SW:
			return "SW"
		case riscv.Funct3SB:
			return "SB"
		}
		return "STORE?"
	case riscv.OpcodeJALR:
		return "JALR"
	default:
		return "UNKNOWN"
	}
}

func Disassemble(instr uint32) string {
	in := Decode(instr)
	switch in.Op() {
	case OpADD:
		return fmt.Sprintf("add x%d, x%d, x%d", in.Rd, in.Rs1, in.Rs2)
	case OpADDI:
		return fmt.Sprintf("addi x%d, x%d, %d", in.Rd, in.Rs1, int32(in.ImmI))
	case OpLUI:
		return fmt.Sprintf("lui x%d, %#x", in.Rd, in.ImmU>>12)
	case OpLW:
		return fmt.Sprintf("lw x%d, %d(x%d)", in.Rd, int32(in.ImmI), in.Rs1)
	case OpLBU:
		return fmt.Sprintf("lbu x%d, %d(x%d)", in.Rd, int32(in.ImmI), in.Rs1)
	case OpSW:
		return fmt.Sprintf("sw x%d, %d(x%d)", in.Rs2, int32(in.ImmS), in.Rs1)
	case OpSB:
		return fmt.Sprintf("sb x%d, %d(x%d)", in.Rs2, int32(in.ImmS), in.Rs1)
	case OpJALR:
		return fmt.Sprintf("jalr x%d, %d(x%d)", in.Rd, int32(in.ImmI), in.Rs1)
	case OpIllegal:
		return fmt.Sprintf("illegal %08x", instr)
	default:
		return fmt.Sprintf("nop %08x", instr)
	}
}
