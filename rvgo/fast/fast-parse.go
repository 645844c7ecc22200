package fast

func ParseImmTypeI(instr uint32) uint32 {
	return parseImmTypeI(instr)
}

func ParseImmTypeS(instr uint32) uint32 {
	return parseImmTypeS(instr)
}

func ParseImmTypeU(instr uint32) uint32 {
	return parseImmTypeU(instr)
}

func ParseOpcode(instr uint32) uint32 {
	return parseOpcode(instr)
}

func ParseRd(instr uint32) uint32 {
	return parseRd(instr)
}

func ParseFunct3(instr uint32) uint32 {
	return parseFunct3(instr)
}

func ParseRs1(instr uint32) uint32 {
	return parseRs1(instr)
}

func ParseRs2(instr uint32) uint32 {
	return parseRs2(instr)
}

func ParseFunct7(instr uint32) uint32 {
	return parseFunct7(instr)
}
