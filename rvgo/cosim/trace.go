package cosim

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/afero"

	"github.com/minirv/golden/rvgo/riscv"
)

var ErrTraceExhausted = errors.New("trace has no more cycles")

// TraceRecord is the device state after one cycle, one JSON object per line.
type TraceRecord struct {
	Cycle     uint64           `json:"cycle"`
	PC        hexutil.Uint64   `json:"pc"`
	Registers []hexutil.Uint64 `json:"registers"`
}

func (r *TraceRecord) validate() error {
	if len(r.Registers) != riscv.RegisterCount {
		return fmt.Errorf("cycle %d: expected %d registers, got %d", r.Cycle, riscv.RegisterCount, len(r.Registers))
	}
	if uint64(r.PC) > 0xFFFF_FFFF {
		return fmt.Errorf("cycle %d: pc %x does not fit 32 bits", r.Cycle, uint64(r.PC))
	}
	for i, v := range r.Registers {
		if uint64(v) > 0xFFFF_FFFF {
			return fmt.Errorf("cycle %d: x%d value %x does not fit 32 bits", r.Cycle, i, uint64(v))
		}
	}
	return nil
}

// TraceDevice replays a recorded device trace. Before the first Step it reports the reset state.
type TraceDevice struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int

	current TraceRecord
}

var _ Device = (*TraceDevice)(nil)

func NewTraceDevice(r io.Reader) *TraceDevice {
	d := &TraceDevice{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}
	d.current.Registers = make([]hexutil.Uint64, riscv.RegisterCount)
	return d
}

func OpenTraceDevice(fs afero.Fs, path string) (*TraceDevice, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace %q: %w", path, err)
	}
	return NewTraceDevice(f), nil
}

func (d *TraceDevice) Step() error {
	for d.scanner.Scan() {
		d.line++
		line := d.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec TraceRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("trace line %d: %w", d.line, err)
		}
		if err := rec.validate(); err != nil {
			return fmt.Errorf("trace line %d: %w", d.line, err)
		}
		d.current = rec
		return nil
	}
	if err := d.scanner.Err(); err != nil {
		return fmt.Errorf("trace line %d: %w", d.line, err)
	}
	return ErrTraceExhausted
}

func (d *TraceDevice) PC() uint32 {
	return uint32(d.current.PC)
}

func (d *TraceDevice) Register(i int) uint32 {
	if i < 0 || i >= len(d.current.Registers) {
		return 0
	}
	return uint32(d.current.Registers[i])
}

// Cycle returns the cycle number of the current record.
func (d *TraceDevice) Cycle() uint64 {
	return d.current.Cycle
}

func (d *TraceDevice) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Recorder wraps a Device and writes a TraceRecord after every successful Step.
type Recorder struct {
	Device
	enc   *json.Encoder
	cycle uint64
}

func NewRecorder(d Device, w io.Writer) *Recorder {
	return &Recorder{Device: d, enc: json.NewEncoder(w)}
}

func (r *Recorder) Step() error {
	if err := r.Device.Step(); err != nil {
		return err
	}
	pc, regs := Snapshot(r.Device)
	rec := TraceRecord{Cycle: r.cycle, PC: hexutil.Uint64(pc), Registers: make([]hexutil.Uint64, len(regs))}
	for i, v := range regs {
		rec.Registers[i] = hexutil.Uint64(v)
	}
	r.cycle++
	return r.enc.Encode(&rec)
}
