package fast

// Instruction word encoders for tests.

func encR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(imm int32, rs1, funct3, rd, opcode uint32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7F)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1F)<<7 | opcode
}

func encU(imm20, rd, opcode uint32) uint32 {
	return imm20<<12 | rd<<7 | opcode
}

func add(rd, rs1, rs2 uint32) uint32 { return encR(0, rs2, rs1, 0, rd, 0x33) }
func addi(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 0, rd, 0x13) }
func lui(rd, imm20 uint32) uint32 { return encU(imm20, rd, 0x37) }
func lw(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 2, rd, 0x03) }
func lbu(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 4, rd, 0x03) }
func sw(rs2, rs1 uint32, imm int32) uint32 { return encS(imm, rs2, rs1, 2, 0x23) }
func sb(rs2, rs1 uint32, imm int32) uint32 { return encS(imm, rs2, rs1, 0, 0x23) }
func jalr(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 0, rd, 0x67) }

// newProgramState places the program at word 0 of both memories.
func newProgramState(words uint32, program ...uint32) *VMState {
	s := NewVMStateWithCapacity(words, words)
	for i, w := range program {
		if err := s.IMem.WriteWord(uint32(i), w); err != nil {
			panic(err)
		}
		if err := s.DMem.WriteWord(uint32(i), w); err != nil {
			panic(err)
		}
	}
	return s
}
