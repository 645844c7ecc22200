package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/profile"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/fast"
)

// traceOutput picks the trace destination: the terminal when stdout is one, colored, otherwise the log.
func traceOutput(l log.Logger) (io.Writer, bool) {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return os.Stdout, true
	}
	return &LoggingWriter{Name: "trace", Log: l}, false
}

func Run(ctx *cli.Context) error {
	if ctx.Bool(RunPProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

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
	l.Info("loaded program", "path", cfg.Program, "words", state.IMem.UsedWords())

	us := fast.NewInstrumentedState(state, fast.RunConfig{MaxSteps: cfg.MaxSteps, Trace: cfg.Trace}, l)
	if cfg.Trace {
		us.SetTraceOutput(traceOutput(l))
	}

	infoAt := MustStepMatcherFlag(cfg.InfoAt).Matcher()
	stopAt := ctx.Generic(RunStopAtFlag.Name).(*StepMatcherFlag).Matcher()
	snapshotAt := ctx.Generic(RunSnapshotAtFlag.Name).(*StepMatcherFlag).Matcher()
	snapshotFmt := ctx.String(RunSnapshotFmtFlag.Name)
	stopAtPC := ctx.IsSet(RunStopAtPCFlag.Name)
	stopPC := ctx.Uint64(RunStopAtPCFlag.Name)
	dump := ctx.Bool(RunDumpFlag.Name)

	var bar *progressbar.ProgressBar
	if ctx.Bool(RunProgressFlag.Name) {
		total := int64(cfg.MaxSteps)
		if cfg.MaxSteps == 0 {
			total = -1 // unknown length, shows a spinner
		}
		bar = progressbar.Default(total, "running")
	}

	start := time.Now()
	startStep := state.Step

	var runErr error
	// a zero step limit runs until a fault, a stop condition or interruption
	for cfg.MaxSteps == 0 || state.Step < cfg.MaxSteps {
		if state.Step%100 == 0 { // don't do the ctx err check (includes lock) too often
			if err := ctx.Context.Err(); err != nil {
				return err
			}
		}

		step := state.Step

		if infoAt(state) {
			delta := time.Since(start)
			l.Info("processing",
				"step", step,
				"pc", fast.HexU32(state.PC),
				"insn", fast.HexU32(state.Instr()),
				"ips", float64(step-startStep)/(float64(delta)/float64(time.Second)),
			)
		}

		if stopAt(state) || (stopAtPC && uint64(state.PC) == stopPC) {
			l.Info("stopping", "step", step, "pc", fast.HexU32(state.PC))
			break
		}

		if snapshotAt(state) {
			if err := writeJSON(fmt.Sprintf(snapshotFmt, step), state); err != nil {
				return fmt.Errorf("failed to write state snapshot: %w", err)
			}
		}

		if err := us.Step(); err != nil {
			runErr = fmt.Errorf("failed at step %d (pc %08x): %w", step, state.PC, err)
			break
		}
		if dump {
			state.Dump(os.Stdout)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	l.Info("finished", "steps", state.Step, "pc", fast.HexU32(state.PC), "halted", state.Halted)
	state.Dump(os.Stdout)

	if err := writeJSON(ctx.Path(RunOutputFlag.Name), state); err != nil {
		return fmt.Errorf("failed to write state output: %w", err)
	}
	return runErr
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run a hex program on the golden model",
	Description: "Load a Logisim v3.0 hex program, run it from reset and print the final register file.",
	ArgsUsage:   "[program.hex]",
	Action:      Run,
	Flags: []cli.Flag{
		ConfigFlag,
		LogLevelFlag,
		IMemWordsFlag,
		DMemWordsFlag,
		RunMaxStepsFlag,
		RunTraceFlag,
		RunInfoAtFlag,
		RunStopAtFlag,
		RunStopAtPCFlag,
		RunSnapshotAtFlag,
		RunSnapshotFmtFlag,
		RunOutputFlag,
		RunDumpFlag,
		RunProgressFlag,
		RunPProfCPUFlag,
	},
}
