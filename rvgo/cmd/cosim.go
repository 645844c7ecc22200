package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/cosim"
	"github.com/minirv/golden/rvgo/fast"
)

// WriteMismatchReport prints one line per diverging value, golden value in green and device value in red.
func WriteMismatchReport(w io.Writer, err error, colored bool) {
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	if colored {
		good.EnableColor()
		bad.EnableColor()
	} else {
		good.DisableColor()
		bad.DisableColor()
	}
	for _, m := range cosim.Mismatches(err) {
		_, _ = fmt.Fprintf(w, "cycle %d  %-3s  golden %s  dut %s\n",
			m.Cycle, m.Field, good.Sprintf("%08x", m.Golden), bad.Sprintf("%08x", m.DUT))
	}
}

// recordTrace writes the golden trace after the lead cycles, so that comparing against it
// with the same lead matches cycle for cycle.
func recordTrace(ctx *cli.Context, golden *cosim.Golden, path string, cfg CosimConfig, l log.Logger) (err error) {
	for i := 0; i < cfg.Lead; i++ {
		if err := golden.Step(); err != nil {
			return fmt.Errorf("golden lead cycle %d: %w", i, err)
		}
	}
	out, finish, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("failed to open trace output %q: %w", path, err)
	}
	defer func() {
		if ferr := finish(err == nil); err == nil && ferr != nil {
			err = fmt.Errorf("failed to close trace output %q: %w", path, ferr)
		}
	}()
	rec := cosim.NewRecorder(golden, out)
	for i := uint64(0); i < cfg.Cycles; i++ {
		if i%100 == 0 {
			if err := ctx.Context.Err(); err != nil {
				return err
			}
		}
		if err := rec.Step(); err != nil {
			return fmt.Errorf("failed to record cycle %d: %w", i, err)
		}
	}
	l.Info("recorded golden trace", "path", path, "cycles", cfg.Cycles, "lead", cfg.Lead)
	return nil
}

func Cosim(ctx *cli.Context) error {
	fs := afero.NewOsFs()
	cfg, err := ConfigFromCLI(ctx, fs)
	if err != nil {
		return err
	}
	lvl, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	l := Logger(os.Stderr, lvl)

	state := fast.NewVMStateWithCapacity(cfg.Memory.IMemWords, cfg.Memory.DMemWords)
	if err := fast.LoadHexFile(fs, cfg.Program, state); err != nil {
		return err
	}
	golden := cosim.NewGolden(fast.NewInstrumentedState(state, fast.RunConfig{}, l))

	tracePath := ctx.Path(CosimTraceFileFlag.Name)
	if ctx.Bool(CosimRecordFlag.Name) {
		return recordTrace(ctx, golden, tracePath, cfg.Cosim, l)
	}

	dut, err := cosim.OpenTraceDevice(fs, tracePath)
	if err != nil {
		return err
	}
	defer dut.Close()

	h := &cosim.Harness{
		Golden:     golden,
		DUT:        dut,
		Cycles:     cfg.Cosim.Cycles,
		GoldenLead: cfg.Cosim.Lead,
		Log:        l,
	}
	matched, err := h.Run(ctx.Context)
	if errors.Is(err, cosim.ErrMismatch) {
		WriteMismatchReport(os.Stderr, err, isatty.IsTerminal(os.Stderr.Fd()))
		state.Dump(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("cosimulation failed after %d matching cycles: %w", matched, err)
	}
	return nil
}

var CosimCommand = &cli.Command{
	Name:        "cosim",
	Usage:       "Compare the golden model against a recorded device trace",
	Description: "Run the golden model in lock-step with a JSON-lines device trace, comparing pc and registers every cycle",
	Action:      Cosim,
	Flags: []cli.Flag{
		ConfigFlag,
		LogLevelFlag,
		IMemWordsFlag,
		DMemWordsFlag,
		CosimProgramFlag,
		CosimTraceFileFlag,
		CosimCyclesFlag,
		CosimLeadFlag,
		CosimRecordFlag,
	},
}
