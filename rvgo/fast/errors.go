package fast

import (
	"errors"
	"fmt"
)

var (
	ErrFetchOutOfBounds  = errors.New("pc out of bounds")
	ErrIllegalFunction   = errors.New("illegal function")
	ErrIllegalAddress    = errors.New("illegal address")
	ErrIllegalRegister   = errors.New("illegal register")
	ErrMemoryOutOfBounds = errors.New("memory index out of bounds")
	ErrLoadOutOfBounds   = errors.New("program exceeds memory size")
	ErrHalted            = errors.New("cpu halted by a previous fault, reset required")
	ErrMissingMemory     = errors.New("state is missing a memory")
)

// LoadError is returned by the program loader. Line is 0 when the failure is not tied to a line.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("load %s:%d: %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("load line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("load: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
