package fast

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
)

// RunConfig bounds and instruments a run. A zero MaxSteps means no limit.
type RunConfig struct {
	MaxSteps uint64
	Trace    bool
}

type InstrumentedState struct {
	state *VMState
	cfg   RunConfig
	log   log.Logger

	// trace, when set, gets one line per retired instruction
	trace io.Writer
	hl    *color.Color

	reset bool

	lastEffect Effect
	hasEffect  bool
}

func NewInstrumentedState(state *VMState, cfg RunConfig, logger log.Logger) *InstrumentedState {
	if logger == nil {
		logger = log.Root()
	}
	return &InstrumentedState{
		state: state,
		cfg:   cfg,
		log:   logger,
	}
}

// SetTraceOutput mirrors the trace to w. Register changes are highlighted when colored is set.
func (m *InstrumentedState) SetTraceOutput(w io.Writer, colored bool) {
	m.trace = w
	m.hl = color.New(color.FgGreen, color.Bold)
	if colored {
		m.hl.EnableColor()
	} else {
		m.hl.DisableColor()
	}
}

func (m *InstrumentedState) State() *VMState {
	return m.state
}

func (m *InstrumentedState) Config() RunConfig {
	return m.cfg
}

// Step retires one instruction.
func (m *InstrumentedState) Step() error {
	eff, err := Execute(m.state)
	if err != nil {
		m.hasEffect = false
		return err
	}
	m.lastEffect = eff
	m.hasEffect = true
	if m.cfg.Trace {
		m.traceEffect(eff)
	}
	return nil
}

// LastEffect returns the effect of the last successful Step.
func (m *InstrumentedState) LastEffect() (Effect, bool) {
	return m.lastEffect, m.hasEffect
}

// SetReset asserts or releases the reset line. Asserting it resets the CPU state.
func (m *InstrumentedState) SetReset(asserted bool) {
	m.reset = asserted
	if asserted {
		m.state.Reset()
		m.hasEffect = false
	}
}

func (m *InstrumentedState) InReset() bool {
	return m.reset
}

// ClockCycle advances one clock edge: a single Step, or nothing while reset is asserted.
func (m *InstrumentedState) ClockCycle() error {
	if m.reset {
		return nil
	}
	return m.Step()
}

// Run steps until the step limit is reached, an instruction faults, or ctx is done.
// It returns the number of instructions retired by this call.
func (m *InstrumentedState) Run(ctx context.Context) (uint64, error) {
	var n uint64
	for m.cfg.MaxSteps == 0 || m.state.Step < m.cfg.MaxSteps {
		if n%100 == 0 { // don't do the ctx err check too often
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if err := m.Step(); err != nil {
			m.log.Error("instruction failed", "step", m.state.Step, "pc", HexU32(m.state.PC), "insn", HexU32(m.state.Instr()), "err", err)
			return n, err
		}
		n++
	}
	m.log.Debug("step limit reached", "steps", m.state.Step, "limit", m.cfg.MaxSteps)
	return n, nil
}

func (m *InstrumentedState) traceEffect(eff Effect) {
	attrs := []any{
		"step", m.state.Step - 1,
		"pc", HexU32(eff.PC),
		"insn", HexU32(eff.Instr.Raw),
		"op", Mnemonic(eff.Instr.Raw),
		"asm", Disassemble(eff.Instr.Raw),
	}
	if eff.RegWritten {
		attrs = append(attrs, "rd", fmt.Sprintf("x%d", eff.Rd), "value", HexU32(eff.RdValue))
	}
	if eff.MemWritten {
		attrs = append(attrs, "mem", HexU32(eff.MemIndex<<2), "word", HexU32(eff.MemValue))
	}
	m.log.Debug("retired", attrs...)

	if m.trace == nil {
		return
	}
	line := fmt.Sprintf("%08x  %08x  %-24s", eff.PC, eff.Instr.Raw, Disassemble(eff.Instr.Raw))
	if eff.RegWritten {
		line += m.hl.Sprintf("  x%d <- %08x", eff.Rd, eff.RdValue)
	}
	if eff.MemWritten {
		line += fmt.Sprintf("  [%08x] <- %08x", eff.MemIndex<<2, eff.MemValue)
	}
	_, _ = fmt.Fprintln(m.trace, line)
}

// HexU32 formats as 8 digit hex in logs.
type HexU32 uint32

func (v HexU32) String() string {
	return fmt.Sprintf("%08x", uint32(v))
}

func (v HexU32) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
