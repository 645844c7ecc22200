package cmd

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/fast"
	"github.com/minirv/golden/rvgo/riscv"
)

// DefaultProgramPath is the image the run command loads when no program is given.
const DefaultProgramPath = "logisim-bin/sum.hex"

type StepMatcher func(st *fast.VMState) bool

// StepMatcherFlag parses "never", "always", "=N" (exactly step N) and "%N" (every N steps).
type StepMatcherFlag struct {
	repr    string
	matcher StepMatcher
}

var _ cli.Generic = (*StepMatcherFlag)(nil)

func MustStepMatcherFlag(pattern string) *StepMatcherFlag {
	out := new(StepMatcherFlag)
	if err := out.Set(pattern); err != nil {
		panic(err)
	}
	return out
}

func (m *StepMatcherFlag) Set(value string) error {
	m.repr = value
	if value == "" || value == "never" {
		m.matcher = func(st *fast.VMState) bool {
			return false
		}
	} else if value == "always" {
		m.matcher = func(st *fast.VMState) bool {
			return true
		}
	} else if value[0] == '=' {
		// exact matching
		at, err := strconv.ParseUint(value[1:], 0, 64)
		if err != nil {
			return fmt.Errorf("failed to parse step number: %w", err)
		}
		m.matcher = func(st *fast.VMState) bool {
			return st.Step == at
		}
	} else if value[0] == '%' {
		// modulo matching
		every, err := strconv.ParseUint(value[1:], 0, 64)
		if err != nil {
			return fmt.Errorf("failed to parse step interval number: %w", err)
		}
		if every == 0 {
			return fmt.Errorf("step interval must not be zero")
		}
		m.matcher = func(st *fast.VMState) bool {
			return st.Step%every == 0
		}
	} else {
		return fmt.Errorf("unrecognized step matcher: %q", value)
	}
	return nil
}

func (m *StepMatcherFlag) String() string {
	return m.repr
}

func (m *StepMatcherFlag) Matcher() StepMatcher {
	if m.matcher == nil { // Set(value) is not called for the default value
		return func(st *fast.VMState) bool {
			return false
		}
	}
	return m.matcher
}

func (m *StepMatcherFlag) Clone() any {
	var out StepMatcherFlag
	if err := out.Set(m.repr); err != nil {
		panic(fmt.Errorf("invalid repr: %w", err))
	}
	return &out
}

var (
	ConfigFlag = &cli.PathFlag{
		Name:      "config",
		Usage:     "TOML configuration file. Flags override values from the file.",
		TakesFile: true,
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "Log level: trace, debug, info, warn, error, crit",
		Value: "info",
	}
	IMemWordsFlag = &cli.Uint64Flag{
		Name:  "imem-words",
		Usage: "Instruction memory capacity, in 32-bit words",
		Value: riscv.DefaultMemoryWords,
	}
	DMemWordsFlag = &cli.Uint64Flag{
		Name:  "dmem-words",
		Usage: "Data memory capacity, in 32-bit words",
		Value: riscv.DefaultMemoryWords,
	}

	LoadHexPathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to the Logisim v3.0 hex program image",
		TakesFile: true,
		Required:  true,
	}
	LoadHexOutFlag = &cli.PathFlag{
		Name:     "output",
		Usage:    "Output path for the JSON state. Use '-' for stdout.",
		Value:    "state.json",
		Required: false,
	}

	RunMaxStepsFlag = &cli.Uint64Flag{
		Name:  "max-steps",
		Usage: "Number of instructions to retire before stopping, 0 for no limit",
		Value: riscv.DefaultCycleLimit,
	}
	RunTraceFlag = &cli.BoolFlag{
		Name:  "trace",
		Usage: "Print every retired instruction and its effect",
	}
	RunInfoAtFlag = &cli.GenericFlag{
		Name:  "info-at",
		Usage: "step pattern to print info at: " + patternHelp,
		Value: MustStepMatcherFlag("%1000"),
	}
	RunStopAtFlag = &cli.GenericFlag{
		Name:  "stop-at",
		Usage: "step pattern to stop at " + patternHelp,
		Value: new(StepMatcherFlag),
	}
	RunStopAtPCFlag = &cli.Uint64Flag{
		Name:  "stop-at-pc",
		Usage: "stop before executing the instruction at this pc",
	}
	RunSnapshotAtFlag = &cli.GenericFlag{
		Name:  "snapshot-at",
		Usage: "step pattern to output snapshots at: " + patternHelp,
		Value: new(StepMatcherFlag),
	}
	RunSnapshotFmtFlag = &cli.StringFlag{
		Name:  "snapshot-fmt",
		Usage: "format for snapshot output file names.",
		Value: "state-%d.json",
	}
	RunOutputFlag = &cli.PathFlag{
		Name:  "output",
		Usage: "path of the final JSON state. Not written if empty, use '-' for stdout.",
	}
	RunDumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "print the register file after every step",
	}
	RunProgressFlag = &cli.BoolFlag{
		Name:  "progress",
		Usage: "show a progress bar towards --max-steps",
	}
	RunPProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "enable pprof cpu profiling",
	}

	WitnessInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state.",
		TakesFile: true,
		Required:  true,
	}
	WitnessOutputFlag = &cli.PathFlag{
		Name:     "output",
		Usage:    "path to write the witness JSON to. Not written if empty, use '-' for stdout.",
		Required: false,
	}

	ConvertInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "Logisim v3.0 hex image to convert",
		TakesFile: true,
		Required:  true,
	}
	ConvertOutputFlag = &cli.PathFlag{
		Name:  "output",
		Usage: "readmemh output path, use '-' for stdout",
		Value: "-",
	}
	ConvertStartFlag = &cli.Uint64Flag{
		Name:  "start",
		Usage: "first word index to write",
	}
	ConvertCountFlag = &cli.Int64Flag{
		Name:  "count",
		Usage: "number of words to write, negative for up to the highest populated word",
		Value: -1,
	}
	ConvertFillMissingFlag = &cli.BoolFlag{
		Name:  "fill-missing",
		Usage: "write zero words for indices missing from the image",
	}

	CosimProgramFlag = &cli.PathFlag{
		Name:      "program",
		Usage:     "Logisim v3.0 hex program image",
		TakesFile: true,
		Value:     DefaultProgramPath,
	}
	CosimTraceFileFlag = &cli.PathFlag{
		Name:      "trace-file",
		Usage:     "JSON-lines trace of the device under test, one record per cycle",
		TakesFile: true,
		Required:  true,
	}
	CosimCyclesFlag = &cli.Uint64Flag{
		Name:  "cycles",
		Usage: "number of compared cycles",
		Value: riscv.DefaultCycleLimit,
	}
	CosimLeadFlag = &cli.IntFlag{
		Name:  "lead",
		Usage: "cycles the golden model runs before lock-step comparison starts",
		Value: 1,
	}
	CosimRecordFlag = &cli.BoolFlag{
		Name:  "record",
		Usage: "write the golden model trace to --trace-file instead of comparing against it. Recording starts after --lead cycles, so the trace replays with the same --lead",
	}

	DisasmPathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Logisim v3.0 hex program image",
		TakesFile: true,
		Required:  true,
	}
)

const patternHelp = "'never' (default), 'always', '=123' at exactly step 123, '%123' for every 123 steps"
