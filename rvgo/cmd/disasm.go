package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/fast"
)

// WriteListing prints one line per populated word of mem: byte address, word, mnemonic and assembly.
func WriteListing(w io.Writer, mem *fast.Memory) error {
	return mem.ForEachNonZero(func(index uint32, word uint32) error {
		_, err := fmt.Fprintf(w, "%08x:  %08x  %-7s %s\n", index<<2, word, fast.Mnemonic(word), fast.Disassemble(word))
		return err
	})
}

func Disasm(ctx *cli.Context) error {
	fs := afero.NewOsFs()
	cfg, err := ConfigFromCLI(ctx, fs)
	if err != nil {
		return err
	}
	state := fast.NewVMStateWithCapacity(cfg.Memory.IMemWords, cfg.Memory.DMemWords)
	if err := fast.LoadHexFile(fs, ctx.Path(DisasmPathFlag.Name), state); err != nil {
		return err
	}
	return WriteListing(os.Stdout, state.IMem)
}

var DisasmCommand = &cli.Command{
	Name:        "disasm",
	Usage:       "List the instructions of a hex program",
	Description: "Print every populated instruction word of a Logisim v3.0 image with its disassembly",
	Action:      Disasm,
	Flags: []cli.Flag{
		DisasmPathFlag,
		IMemWordsFlag,
		DMemWordsFlag,
	},
}
