package fast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// LogisimHeader is the first line of a Logisim "v3.0 hex words addressed" memory image.
const LogisimHeader = "v3.0 hex words addressed"

const hexWordsPerLine = 8

// ParseHex reads a Logisim v3.0 addressed hex image and calls fn for every word, with its word index.
// Addresses in the image are word indices, not byte addresses.
// Blank lines, lines without an address, and tokens that are not 1-8 hex digits are skipped.
func ParseHex(r io.Reader, fn func(index uint32, word uint32) error) error {
	scanner := bufio.NewScanner(r)
	first := true
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if strings.Contains(line, "v3.0") {
				continue
			}
		}
		addrPart, wordsPart, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		base, err := strconv.ParseUint(strings.TrimSpace(addrPart), 16, 32)
		if err != nil {
			continue
		}
		offset := uint64(0)
		for _, tok := range strings.Fields(wordsPart) {
			if len(tok) > 8 {
				continue
			}
			word, err := strconv.ParseUint(tok, 16, 32)
			if err != nil {
				continue
			}
			index := base + offset
			if index > 0xFFFF_FFFF {
				return &LoadError{Line: lineNum, Err: fmt.Errorf("%w: word index %#x", ErrLoadOutOfBounds, index)}
			}
			if err := fn(uint32(index), uint32(word)); err != nil {
				return &LoadError{Line: lineNum, Err: err}
			}
			offset++
		}
	}
	if err := scanner.Err(); err != nil {
		return &LoadError{Err: err}
	}
	return nil
}

// LoadHex places the program into both instruction and data memory, at the same word indices.
func (state *VMState) LoadHex(r io.Reader) error {
	return ParseHex(r, func(index uint32, word uint32) error {
		if index >= state.IMem.Capacity() || index >= state.DMem.Capacity() {
			return fmt.Errorf("%w: word index %#x, imem %#x words, dmem %#x words",
				ErrLoadOutOfBounds, index, state.IMem.Capacity(), state.DMem.Capacity())
		}
		if err := state.IMem.WriteWord(index, word); err != nil {
			return err
		}
		return state.DMem.WriteWord(index, word)
	})
}

func LoadHexFile(fs afero.Fs, path string, state *VMState) error {
	f, err := fs.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	if err := state.LoadHex(f); err != nil {
		var lerr *LoadError
		if errors.As(err, &lerr) {
			lerr.Path = path
			return lerr
		}
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// ReadHexWords collects the words of a hex image by word index.
func ReadHexWords(r io.Reader) (map[uint32]uint32, error) {
	out := make(map[uint32]uint32)
	err := ParseHex(r, func(index uint32, word uint32) error {
		out[index] = word
		return nil
	})
	return out, err
}

// WriteHex writes the non-zero runs of mem as a Logisim v3.0 addressed image.
func WriteHex(w io.Writer, mem *Memory) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, LogisimHeader); err != nil {
		return err
	}
	var (
		line    []uint32
		lineIdx uint32
	)
	flush := func() error {
		if len(line) == 0 {
			return nil
		}
		if _, err := fmt.Fprintf(bw, "%x:", lineIdx); err != nil {
			return err
		}
		for _, word := range line {
			if _, err := fmt.Fprintf(bw, " %08x", word); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
		line = line[:0]
		return nil
	}
	err := mem.ForEachNonZero(func(index uint32, word uint32) error {
		if len(line) > 0 && (index != lineIdx+uint32(len(line)) || len(line) == hexWordsPerLine) {
			if err := flush(); err != nil {
				return err
			}
		}
		if len(line) == 0 {
			lineIdx = index
		}
		line = append(line, word)
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteReadmemh writes one 8-digit lowercase word per line, for $readmemh.
// With count < 0 it writes up to the highest populated index.
// Missing words are skipped, or written as zero when fillMissing is set.
func WriteReadmemh(w io.Writer, words map[uint32]uint32, start uint32, count int64, fillMissing bool) (int, error) {
	if len(words) == 0 {
		return 0, errors.New("no words in image")
	}
	var end uint64
	if count < 0 {
		for i := range words {
			end = max(end, uint64(i))
		}
	} else {
		if count == 0 {
			return 0, nil
		}
		end = uint64(start) + uint64(count) - 1
	}
	// word indices stop at the top of the 32-bit index space
	end = min(end, math.MaxUint32)
	bw := bufio.NewWriter(w)
	n := 0
	for addr := uint64(start); addr <= end; addr++ {
		word, ok := words[uint32(addr)]
		if !ok && !fillMissing {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%08x\n", word); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}
