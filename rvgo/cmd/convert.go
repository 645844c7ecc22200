package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/fast"
)

// Convert turns a Logisim v3.0 image into a $readmemh file, one word per line.
func Convert(ctx *cli.Context) error {
	fs := afero.NewOsFs()
	l := Logger(os.Stderr, log.LevelInfo)

	inPath := ctx.Path(ConvertInputFlag.Name)
	f, err := fs.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", inPath, err)
	}
	defer f.Close()
	words, err := fast.ReadHexWords(f)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", inPath, err)
	}

	start := ctx.Uint64(ConvertStartFlag.Name)
	if start > math.MaxUint32 {
		return fmt.Errorf("start word %d out of range", start)
	}
	outPath := ctx.Path(ConvertOutputFlag.Name)
	out, finish, err := openOutput(outPath)
	if err != nil {
		return fmt.Errorf("failed to open output %q: %w", outPath, err)
	}
	n, err := fast.WriteReadmemh(out, words, uint32(start), ctx.Int64(ConvertCountFlag.Name), ctx.Bool(ConvertFillMissingFlag.Name))
	if ferr := finish(err == nil); err == nil {
		err = ferr
	}
	if err != nil {
		return fmt.Errorf("failed to convert %q: %w", inPath, err)
	}
	l.Info("converted", "input", inPath, "output", outPath, "words", n, "start", start)
	return nil
}

var ConvertCommand = &cli.Command{
	Name:        "convert",
	Usage:       "Convert a Logisim hex image to $readmemh format",
	Description: "Convert a Logisim v3.0 'hex words addressed' image to one 8-digit word per line, for Verilog $readmemh",
	Action:      Convert,
	Flags: []cli.Flag{
		ConvertInputFlag,
		ConvertOutputFlag,
		ConvertStartFlag,
		ConvertCountFlag,
		ConvertFillMissingFlag,
	},
}
