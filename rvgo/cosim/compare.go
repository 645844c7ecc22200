package cosim

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/minirv/golden/rvgo/riscv"
)

var ErrMismatch = errors.New("golden model and device diverged")

// MismatchError is a single diverging value after a cycle.
type MismatchError struct {
	Cycle  uint64
	Field  string
	Golden uint32
	DUT    uint32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("cycle %d: %s mismatch, golden %08x, dut %08x", e.Cycle, e.Field, e.Golden, e.DUT)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Compare checks the pc first, and when it matches, every register.
// A pc mismatch is returned alone; register mismatches are all collected.
func Compare(cycle uint64, golden, dut Device) error {
	if gpc, dpc := golden.PC(), dut.PC(); gpc != dpc {
		return &MismatchError{Cycle: cycle, Field: "pc", Golden: gpc, DUT: dpc}
	}
	var result *multierror.Error
	for i := 0; i < riscv.RegisterCount; i++ {
		if g, d := golden.Register(i), dut.Register(i); g != d {
			result = multierror.Append(result, &MismatchError{Cycle: cycle, Field: fmt.Sprintf("x%d", i), Golden: g, DUT: d})
		}
	}
	return result.ErrorOrNil()
}

// Mismatches flattens an error returned by Compare.
func Mismatches(err error) []*MismatchError {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]*MismatchError, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			var m *MismatchError
			if errors.As(e, &m) {
				out = append(out, m)
			}
		}
		return out
	}
	var m *MismatchError
	if errors.As(err, &m) {
		return []*MismatchError{m}
	}
	return nil
}
