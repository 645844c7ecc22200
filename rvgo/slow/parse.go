package slow

// Functions to parse the instruction field values from different types of RISC-V instructions
// These should 1:1 match with the same definitions in the fast package.

func parseImmTypeI(instr U32) U32 {
	return signExtend32(shr32(instr, toU32(20)), toU32(11))
}

// the sign is filled in with an explicit or, instead of an arithmetic shift
func parseImmTypeS(instr U32) U32 {
	imm := or32(shl32(shr32(instr, toU32(25)), toU32(5)), and32(shr32(instr, toU32(7)), toU32(0x1F)))
	if !iszero32(and32(imm, shortToU32(0x800))) {
		imm = or32(imm, not32(shortToU32(0x7FF)))
	}
	return imm
}

func parseImmTypeU(instr U32) U32 {
	return shl32(shr32(instr, toU32(12)), toU32(12))
}

func parseOpcode(instr U32) U32 {
	return and32(instr, toU32(0x7F))
}

func parseRd(instr U32) U32 {
	return and32(shr32(instr, toU32(7)), toU32(0x1F))
}

func parseFunct3(instr U32) U32 {
	return and32(shr32(instr, toU32(12)), toU32(0x7))
}

func parseRs1(instr U32) U32 {
	return and32(shr32(instr, toU32(15)), toU32(0x1F))
}

func parseRs2(instr U32) U32 {
	return and32(shr32(instr, toU32(20)), toU32(0x1F))
}

func parseFunct7(instr U32) U32 {
	return shr32(instr, toU32(25))
}

// Exported for differential testing against the fast package.

func ParseImmTypeI(instr uint32) uint32 { return parseImmTypeI(wordToU32(instr)).val() }
func ParseImmTypeS(instr uint32) uint32 { return parseImmTypeS(wordToU32(instr)).val() }
func ParseImmTypeU(instr uint32) uint32 { return parseImmTypeU(wordToU32(instr)).val() }
func ParseOpcode(instr uint32) uint32 { return parseOpcode(wordToU32(instr)).val() }
func ParseRd(instr uint32) uint32 { return parseRd(wordToU32(instr)).val() }
func ParseFunct3(instr uint32) uint32 { return parseFunct3(wordToU32(instr)).val() }
func ParseRs1(instr uint32) uint32 { return parseRs1(wordToU32(instr)).val() }
func ParseRs2(instr uint32) uint32 { return parseRs2(wordToU32(instr)).val() }
func ParseFunct7(instr uint32) uint32 { return parseFunct7(wordToU32(instr)).val() }
