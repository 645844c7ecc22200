package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMnemonic(t *testing.T) {
	cases := []struct {
		instr uint32
		want  string
	}{
		{add(3, 1, 2), "ADD"},
		{addi(1, 0, 5), "ADDI"},
		{lui(1, 1), "LUI"},
		{lw(3, 1, 0), "LW"},
		{lbu(3, 1, 0), "LBU"},
		{encI(0, 1, 1, 3, 0x03), "LOAD?"},
		{sw(2, 1, 0), "SW"},
		{sb(2, 1, 0), "SB"},
		{encS(0, 2, 1, 1, 0x23), "STORE?"},
		{jalr(1, 5, 0), "JALR"},
		{0x00000073, "UNKNOWN"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Mnemonic(tc.instr), "instr %08x", tc.instr)
	}
}

func TestDisassemble(t *testing.T) {
	require.Equal(t, "addi x1, x0, 5", Disassemble(0x00500093))
	require.Equal(t, "addi x2, x1, -1", Disassemble(addi(2, 1, -1)))
	require.Equal(t, "add x3, x1, x2", Disassemble(add(3, 1, 2)))
	require.Equal(t, "lui x1, 0x1", Disassemble(0x000010B7))
	require.Equal(t, "sw x2, 0(x1)", Disassemble(sw(2, 1, 0)))
	require.Equal(t, "sb x2, -4(x1)", Disassemble(sb(2, 1, -4)))
	require.Equal(t, "lw x3, 8(x1)", Disassemble(lw(3, 1, 8)))
	require.Equal(t, "lbu x3, 0(x1)", Disassemble(lbu(3, 1, 0)))
	require.Equal(t, "jalr x1, 0(x5)", Disassemble(jalr(1, 5, 0)))
	require.Equal(t, "illegal 40000033", Disassemble(0x40000033))
	require.Equal(t, "nop 00000073", Disassemble(0x00000073))
}
