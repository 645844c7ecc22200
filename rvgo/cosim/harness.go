package cosim

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/minirv/golden/rvgo/fast"
)

// Harness runs the golden model and a device in lock-step.
type Harness struct {
	Golden Device
	DUT    Device

	// Cycles is the number of compared cycles.
	Cycles uint64
	// GoldenLead is the number of cycles the golden model runs before the lock-step starts.
	GoldenLead int

	Log log.Logger
}

// Run steps both devices and compares them after every cycle, stopping at the first divergence.
// It returns the number of cycles that matched.
func (h *Harness) Run(ctx context.Context) (uint64, error) {
	logger := h.Log
	if logger == nil {
		logger = log.Root()
	}
	for i := 0; i < h.GoldenLead; i++ {
		if err := h.Golden.Step(); err != nil {
			return 0, fmt.Errorf("golden lead cycle %d: %w", i, err)
		}
	}
	var cycle uint64
	for cycle = 0; cycle < h.Cycles; cycle++ {
		if cycle%100 == 0 {
			if err := ctx.Err(); err != nil {
				return cycle, err
			}
		}
		if err := h.DUT.Step(); err != nil {
			return cycle, fmt.Errorf("dut cycle %d: %w", cycle, err)
		}
		if err := h.Golden.Step(); err != nil {
			return cycle, fmt.Errorf("golden cycle %d: %w", cycle, err)
		}
		if err := Compare(cycle, h.Golden, h.DUT); err != nil {
			attrs := []any{"cycle", cycle, "pc", fast.HexU32(h.Golden.PC())}
			for _, m := range Mismatches(err) {
				attrs = append(attrs, m.Field, fmt.Sprintf("%08x/%08x", m.Golden, m.DUT))
			}
			logger.Error("divergence", attrs...)
			return cycle, err
		}
	}
	logger.Info("cosimulation passed", "cycles", cycle)
	return cycle, nil
}
