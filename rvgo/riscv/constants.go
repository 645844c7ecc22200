package riscv

const (
	RegisterCount = 16

	// 128K words per memory, matching the miniRV hardware image size.
	DefaultMemoryWords = 128 * 1024

	// DefaultCycleLimit is the number of cycles a harness run takes when nothing else is configured.
	DefaultCycleLimit = 6000

	OpcodeLoad  = 0x03
	OpcodeOpImm = 0x13
	OpcodeStore = 0x23
	OpcodeOp    = 0x33
	OpcodeLUI   = 0x37
	OpcodeJALR  = 0x67

	Funct3ADD  = 0x0
	Funct3ADDI = 0x0
	Funct3LW   = 0x2
	Funct3LBU  = 0x4
	Funct3SW   = 0x2
	Funct3SB   = 0x0
	Funct3JALR = 0x0

	Funct7ADD = 0x00
	Funct7SUB = 0x20

	ErrFetchOutOfBounds = uint64(0xbadfe7c0)
	ErrIllegalFunction  = uint64(0xf001c0de)
	ErrIllegalAddress   = uint64(0xbad10ad0)
	ErrIllegalRegister  = uint64(0xbad4e9)
	ErrHalted           = uint64(0xdead)
)
