package cosim

import (
	"github.com/minirv/golden/rvgo/fast"
	"github.com/minirv/golden/rvgo/riscv"
)

// Device is one side of a cosimulation: something that retires one instruction per Step
// and exposes its architectural state afterwards.
type Device interface {
	PC() uint32
	Register(i int) uint32
	Step() error
}

// Golden exposes the golden model as a Device. Each Step is one clock cycle.
type Golden struct {
	us *fast.InstrumentedState
}

var _ Device = (*Golden)(nil)

func NewGolden(us *fast.InstrumentedState) *Golden {
	return &Golden{us: us}
}

func (g *Golden) PC() uint32 {
	return g.us.State().GetPC()
}

func (g *Golden) Register(i int) uint32 {
	return g.us.State().Register(i)
}

func (g *Golden) Step() error {
	return g.us.ClockCycle()
}

func (g *Golden) Instrumented() *fast.InstrumentedState {
	return g.us
}

// Snapshot captures the state of d that cosimulation compares.
func Snapshot(d Device) (pc uint32, regs [riscv.RegisterCount]uint32) {
	pc = d.PC()
	for i := range regs {
		regs[i] = d.Register(i)
	}
	return
}
