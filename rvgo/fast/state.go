package fast

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/olekukonko/tablewriter"

	"github.com/minirv/golden/rvgo/riscv"
)

type VMState struct {
	IMem *Memory `json:"imem"`
	DMem *Memory `json:"dmem"`

	PC uint32 `json:"pc"`

	Step uint64 `json:"step"`

	// Halted is set by a fatal execution error; the state must be reset before stepping again.
	Halted bool `json:"halted"`

	Registers [riscv.RegisterCount]uint32 `json:"registers"`
}

// UnmarshalJSON requires both memories to be present.
func (state *VMState) UnmarshalJSON(data []byte) error {
	type vmStateJSON VMState
	var in vmStateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.IMem == nil {
		return fmt.Errorf("%w: imem", ErrMissingMemory)
	}
	if in.DMem == nil {
		return fmt.Errorf("%w: dmem", ErrMissingMemory)
	}
	*state = VMState(in)
	return nil
}

func NewVMState() *VMState {
	return NewVMStateWithCapacity(riscv.DefaultMemoryWords, riscv.DefaultMemoryWords)
}

func NewVMStateWithCapacity(imemWords, dmemWords uint32) *VMState {
	return &VMState{
		IMem: NewMemory(imemWords),
		DMem: NewMemory(dmemWords),
	}
}

// Reset zeroes the pc, registers and step counter. Memory contents are kept.
func (state *VMState) Reset() {
	state.PC = 0
	state.Step = 0
	state.Halted = false
	state.Registers = [riscv.RegisterCount]uint32{}
}

// Run retires n instructions, stopping at the first error.
func (state *VMState) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := Step(state); err != nil {
			return fmt.Errorf("step %d (pc %08x): %w", state.Step, state.PC, err)
		}
	}
	return nil
}

func (state *VMState) GetPC() uint32 {
	return state.PC
}

// Register returns the value of register i, or 0 for an index outside the register file.
func (state *VMState) Register(i int) uint32 {
	if i < 0 || i >= riscv.RegisterCount {
		return 0
	}
	return state.Registers[i]
}

// InstructionAt returns the instruction word at byte address addr, or 0 when out of range.
func (state *VMState) InstructionAt(addr uint32) uint32 {
	w, err := state.IMem.ReadWord(addr >> 2)
	if err != nil {
		return 0
	}
	return w
}

// DataAt returns the data word at byte address addr, or 0 when out of range.
func (state *VMState) DataAt(addr uint32) uint32 {
	w, err := state.DMem.ReadWord(addr >> 2)
	if err != nil {
		return 0
	}
	return w
}

func (state *VMState) Instr() uint32 {
	return state.InstructionAt(state.PC)
}

func (state *VMState) EncodeWitness() StateWitness {
	out := make([]byte, 0, 32+32+4+8+1+riscv.RegisterCount*4)
	imemRoot := state.IMem.Hash()
	dmemRoot := state.DMem.Hash()
	out = append(out, imemRoot[:]...)
	out = append(out, dmemRoot[:]...)
	out = binary.BigEndian.AppendUint32(out, state.PC)
	out = binary.BigEndian.AppendUint64(out, state.Step)
	if state.Halted {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	for _, r := range state.Registers {
		out = binary.BigEndian.AppendUint32(out, r)
	}
	return out
}

// StateWitness is the binary encoding of a VMState, with memories committed to by hash.
type StateWitness []byte

func (sw StateWitness) StateHash() common.Hash {
	return crypto.Keccak256Hash(sw)
}

// Dump writes the pc and register file, four registers per row.
func (state *VMState) Dump(w io.Writer) {
	_, _ = fmt.Fprintf(w, "PC: 0x%08x  step: %d\n", state.PC, state.Step)
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"reg", "value", "reg", "value", "reg", "value", "reg", "value"})
	for row := 0; row < riscv.RegisterCount; row += 4 {
		line := make([]string, 0, 8)
		for i := row; i < row+4 && i < riscv.RegisterCount; i++ {
			line = append(line, fmt.Sprintf("x%d", i), fmt.Sprintf("0x%08x", state.Registers[i]))
		}
		table.Append(line)
	}
	table.Render()
}
