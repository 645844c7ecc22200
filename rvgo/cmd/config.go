package cmd

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/minirv/golden/rvgo/riscv"
)

type MemoryConfig struct {
	IMemWords uint32 `toml:"imem-words"`
	DMemWords uint32 `toml:"dmem-words"`
}

type CosimConfig struct {
	Lead   int    `toml:"lead"`
	Cycles uint64 `toml:"cycles"`
}

// Config is the file form of the command line options.
type Config struct {
	Program  string `toml:"program"`
	MaxSteps uint64 `toml:"max-steps"`
	Trace    bool   `toml:"trace"`
	InfoAt   string `toml:"info-at"`
	LogLevel string `toml:"log-level"`

	Memory MemoryConfig `toml:"memory"`
	Cosim  CosimConfig  `toml:"cosim"`
}

func DefaultConfig() Config {
	return Config{
		Program:  DefaultProgramPath,
		MaxSteps: riscv.DefaultCycleLimit,
		InfoAt:   "%1000",
		LogLevel: "info",
		Memory: MemoryConfig{
			IMemWords: riscv.DefaultMemoryWords,
			DMemWords: riscv.DefaultMemoryWords,
		},
		Cosim: CosimConfig{
			Lead:   1,
			Cycles: riscv.DefaultCycleLimit,
		},
	}
}

// LoadConfig reads a TOML config on top of the defaults. Unknown keys are rejected.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to decode config %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return cfg, fmt.Errorf("unknown keys in config %q: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Check()
}

func (c *Config) Check() error {
	if c.Memory.IMemWords == 0 {
		return errors.New("memory.imem-words must not be zero")
	}
	if c.Memory.DMemWords == 0 {
		return errors.New("memory.dmem-words must not be zero")
	}
	if c.Cosim.Lead < 0 {
		return fmt.Errorf("cosim.lead must not be negative, got %d", c.Cosim.Lead)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := new(StepMatcherFlag).Set(c.InfoAt); err != nil {
		return fmt.Errorf("info-at: %w", err)
	}
	return nil
}

// ConfigFromCLI loads the --config file, if any, and applies the flags that were set explicitly.
func ConfigFromCLI(ctx *cli.Context, fs afero.Fs) (Config, error) {
	cfg := DefaultConfig()
	if path := ctx.Path(ConfigFlag.Name); path != "" {
		var err error
		if cfg, err = LoadConfig(fs, path); err != nil {
			return cfg, err
		}
	}
	if ctx.Args().Present() {
		cfg.Program = ctx.Args().First()
	}
	if ctx.IsSet(RunMaxStepsFlag.Name) {
		cfg.MaxSteps = ctx.Uint64(RunMaxStepsFlag.Name)
	}
	if ctx.IsSet(RunTraceFlag.Name) {
		cfg.Trace = ctx.Bool(RunTraceFlag.Name)
	}
	if ctx.IsSet(RunInfoAtFlag.Name) {
		cfg.InfoAt = ctx.Generic(RunInfoAtFlag.Name).(*StepMatcherFlag).String()
	}
	if ctx.IsSet(LogLevelFlag.Name) {
		cfg.LogLevel = ctx.String(LogLevelFlag.Name)
	}
	for _, f := range []struct {
		name string
		dst  *uint32
	}{
		{IMemWordsFlag.Name, &cfg.Memory.IMemWords},
		{DMemWordsFlag.Name, &cfg.Memory.DMemWords},
	} {
		if !ctx.IsSet(f.name) {
			continue
		}
		v := ctx.Uint64(f.name)
		if v > math.MaxUint32 {
			return cfg, fmt.Errorf("--%s %d does not fit the 32-bit word index space", f.name, v)
		}
		*f.dst = uint32(v)
	}
	if ctx.IsSet(CosimProgramFlag.Name) {
		cfg.Program = ctx.Path(CosimProgramFlag.Name)
	}
	if ctx.IsSet(CosimCyclesFlag.Name) {
		cfg.Cosim.Cycles = ctx.Uint64(CosimCyclesFlag.Name)
	}
	if ctx.IsSet(CosimLeadFlag.Name) {
		cfg.Cosim.Lead = ctx.Int(CosimLeadFlag.Name)
	}
	if err := cfg.Check(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
