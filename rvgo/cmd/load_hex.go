package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/fast"
)

func LoadHex(ctx *cli.Context) error {
	fs := afero.NewOsFs()
	cfg, err := ConfigFromCLI(ctx, fs)
	if err != nil {
		return err
	}
	state := fast.NewVMStateWithCapacity(cfg.Memory.IMemWords, cfg.Memory.DMemWords)
	hexPath := ctx.Path(LoadHexPathFlag.Name)
	if err := fast.LoadHexFile(fs, hexPath, state); err != nil {
		return fmt.Errorf("failed to load hex program into VM state: %w", err)
	}
	return writeJSON(ctx.Path(LoadHexOutFlag.Name), state)
}

var LoadHexCommand = &cli.Command{
	Name:        "load-hex",
	Usage:       "Load a Logisim hex program into a JSON state",
	Description: "Load a Logisim v3.0 hex program into both memories of a reset JSON state",
	Action:      LoadHex,
	Flags: []cli.Flag{
		LoadHexPathFlag,
		LoadHexOutFlag,
		ConfigFlag,
		IMemWordsFlag,
		DMemWordsFlag,
	},
}
