package cmd

import (
	"io"
	"os"

	"github.com/ethereum-optimism/optimism/op-service/ioutil"
	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
)

var OutFilePerm = os.FileMode(0o755)

// writeJSON writes value as indented JSON. An empty path writes nothing, "-" writes to stdout.
func writeJSON[X any](path string, value X) error {
	return jsonutil.WriteJSON(value, ioutil.ToStdOutOrFileOrNoop(path, OutFilePerm))
}

// openOutput opens path for streaming output, with the same path rules as writeJSON.
// The returned finish func commits the output, or discards a partially written file when ok is false.
func openOutput(path string) (io.Writer, func(ok bool) error, error) {
	out, closer, abort, err := ioutil.ToStdOutOrFileOrNoop(path, OutFilePerm)()
	if err != nil {
		return nil, nil, err
	}
	if out == nil {
		return io.Discard, func(bool) error { return nil }, nil
	}
	return out, func(ok bool) error {
		if !ok {
			if abort != nil {
				abort()
			}
			return nil
		}
		if closer == nil {
			return nil
		}
		return closer.Close()
	}, nil
}
