package fast

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func testLogger(buf *bytes.Buffer) log.Logger {
	return log.NewLogger(log.LogfmtHandlerWithLevel(buf, slog.LevelDebug))
}

func TestInstrumentedRun(t *testing.T) {
	// addi x1, x1, 1 in a loop
	state := newProgramState(64, addi(1, 1, 1), jalr(0, 0, 0))
	us := NewInstrumentedState(state, RunConfig{MaxSteps: 10}, log.NewLogger(log.DiscardHandler()))

	n, err := us.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(10), n)
	require.Equal(t, uint64(10), state.Step)
	require.Equal(t, uint32(5), state.Registers[1])

	// the limit counts total steps, so a second run does nothing
	n, err = us.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(0), n)
}

func TestInstrumentedRunStopsOnFault(t *testing.T) {
	var buf bytes.Buffer
	state := newProgramState(64, addi(1, 0, 1), 0x40000033)
	us := NewInstrumentedState(state, RunConfig{MaxSteps: 100}, testLogger(&buf))

	n, err := us.Run(context.Background())
	require.ErrorIs(t, err, ErrIllegalFunction)
	require.Equal(t, uint64(1), n)
	require.Contains(t, buf.String(), "instruction failed")
	require.Contains(t, buf.String(), "insn=40000033")

	_, ok := us.LastEffect()
	require.False(t, ok)
}

func TestInstrumentedRunCancelled(t *testing.T) {
	state := newProgramState(64, jalr(0, 0, 0))
	us := NewInstrumentedState(state, RunConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := us.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, uint64(0), n)
}

func TestInstrumentedTrace(t *testing.T) {
	var logs, trace bytes.Buffer
	state := newProgramState(64, addi(1, 0, 5), sw(1, 0, 0x20))
	us := NewInstrumentedState(state, RunConfig{MaxSteps: 2, Trace: true}, testLogger(&logs))
	us.SetTraceOutput(&trace, false)

	_, err := us.Run(context.Background())
	require.NoError(t, err)

	require.Contains(t, logs.String(), "msg=retired")
	require.Contains(t, logs.String(), `asm="addi x1, x0, 5"`)
	require.Contains(t, logs.String(), "rd=x1")

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "00000000  00500093  addi x1, x0, 5"))
	require.Contains(t, lines[0], "x1 <- 00000005")
	require.Contains(t, lines[1], "[00000020] <- 00000005")

	eff, ok := us.LastEffect()
	require.True(t, ok)
	require.True(t, eff.MemWritten)
	require.Equal(t, uint32(8), eff.MemIndex)
}

func TestInstrumentedClockCycleReset(t *testing.T) {
	state := newProgramState(64, addi(1, 0, 5), addi(2, 0, 6))
	us := NewInstrumentedState(state, RunConfig{}, nil)

	us.SetReset(true)
	require.True(t, us.InReset())
	require.NoError(t, us.ClockCycle())
	require.NoError(t, us.ClockCycle())
	require.Equal(t, uint32(0), state.PC)
	require.Equal(t, uint64(0), state.Step)

	us.SetReset(false)
	require.NoError(t, us.ClockCycle())
	require.Equal(t, uint32(4), state.PC)
	require.Equal(t, uint32(5), state.Registers[1])

	// asserting reset again clears the cpu state, not the memories
	us.SetReset(true)
	require.Equal(t, uint32(0), state.PC)
	require.Equal(t, uint32(0), state.Registers[1])
	require.Equal(t, addi(1, 0, 5), state.Instr())
}
