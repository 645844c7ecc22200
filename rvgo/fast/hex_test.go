package fast

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const sumProgram = `v3.0 hex words addressed
0: 00500093 00a00113 002081b3
10: deadbeef
`

func TestLoadHex(t *testing.T) {
	s := NewVMStateWithCapacity(64, 64)
	require.NoError(t, s.LoadHex(strings.NewReader(sumProgram)))

	require.Equal(t, uint32(0x00500093), s.InstructionAt(0))
	require.Equal(t, uint32(0x00a00113), s.InstructionAt(4))
	require.Equal(t, uint32(0x002081b3), s.InstructionAt(8))
	// the address is a word index
	require.Equal(t, uint32(0xdeadbeef), s.InstructionAt(0x10*4))
	require.Equal(t, uint32(0), s.InstructionAt(0x10))

	// both memories receive the image
	require.Equal(t, s.IMem.words, s.DMem.words)

	require.NoError(t, s.Run(3))
	require.Equal(t, uint32(15), s.Registers[3])
}

func TestParseHexSkipsMalformedInput(t *testing.T) {
	src := strings.Join([]string{
		"",
		"v3.0 hex words plain",
		"   ",
		"no address here",
		"zz: 00000001",
		"4: 00000002 nothex 123456789 00000003",
		"  8 :  a  ",
		"c:",
	}, "\n")
	words, err := ReadHexWords(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, map[uint32]uint32{
		4: 2,
		5: 3,
		8: 0xa,
	}, words)
}

func TestParseHexHeaderOnlyOnFirstLine(t *testing.T) {
	// a v3.0 line after data is an ordinary line without an address and is skipped
	words, err := ReadHexWords(strings.NewReader("0: 1\nv3.0 hex words addressed\n1: 2\n"))
	require.NoError(t, err)
	require.Equal(t, map[uint32]uint32{0: 1, 1: 2}, words)
}

func TestParseHexCallbackError(t *testing.T) {
	stop := errors.New("stop")
	err := ParseHex(strings.NewReader("v3.0\n\n0: 1 2\n"), func(index uint32, word uint32) error {
		return stop
	})
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, 3, lerr.Line)
	require.ErrorIs(t, err, stop)
}

func TestLoadHexOutOfBounds(t *testing.T) {
	s := NewVMStateWithCapacity(16, 16)
	err := s.LoadHex(strings.NewReader("e: 1 2 3\n"))
	require.ErrorIs(t, err, ErrLoadOutOfBounds)
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, 1, lerr.Line)
	require.Contains(t, err.Error(), "load line 1")

	// a smaller data memory bounds the image as well
	s = NewVMStateWithCapacity(64, 8)
	require.ErrorIs(t, s.LoadHex(strings.NewReader("8: 1\n")), ErrLoadOutOfBounds)
}

func TestLoadHexFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "logisim-bin/sum.hex", []byte(sumProgram), 0o644))

	s := NewVMStateWithCapacity(64, 64)
	require.NoError(t, LoadHexFile(fs, "logisim-bin/sum.hex", s))
	require.Equal(t, uint32(0x00500093), s.Instr())

	t.Run("missing file", func(t *testing.T) {
		err := LoadHexFile(fs, "missing.hex", NewVMStateWithCapacity(64, 64))
		var lerr *LoadError
		require.ErrorAs(t, err, &lerr)
		require.Equal(t, "missing.hex", lerr.Path)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("path and line", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "big.hex", []byte("v3.0 hex words addressed\n100: 1\n"), 0o644))
		err := LoadHexFile(fs, "big.hex", NewVMStateWithCapacity(64, 64))
		require.ErrorIs(t, err, ErrLoadOutOfBounds)
		require.Contains(t, err.Error(), "load big.hex:2")
	})
}

func TestWriteHexRoundTrip(t *testing.T) {
	s := NewVMStateWithCapacity(PageWords*2, PageWords*2)
	for i := uint32(0); i < 11; i++ {
		require.NoError(t, s.IMem.WriteWord(i, 0x1000+i))
	}
	require.NoError(t, s.IMem.WriteWord(300, 0xcafebabe))
	require.NoError(t, s.IMem.WriteWord(302, 0x1))

	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, s.IMem))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, LogisimHeader, lines[0])
	require.Equal(t, "0: 00001000 00001001 00001002 00001003 00001004 00001005 00001006 00001007", lines[1])
	require.Equal(t, "8: 00001008 00001009 0000100a", lines[2])
	require.Equal(t, "12c: cafebabe", lines[3])
	require.Equal(t, "12e: 00000001", lines[4])

	loaded := NewVMStateWithCapacity(PageWords*2, PageWords*2)
	require.NoError(t, loaded.LoadHex(&buf))
	require.Equal(t, s.IMem.words, loaded.IMem.words)

	// every word present in the file reads back unchanged
	words, err := ReadHexWords(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	for index, word := range words {
		require.Equal(t, word, loaded.InstructionAt(index<<2))
	}
}

func TestWriteReadmemh(t *testing.T) {
	words := map[uint32]uint32{0: 0x00500093, 1: 0x00a00113, 3: 0xdeadbeef}

	t.Run("skip missing", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := WriteReadmemh(&buf, words, 0, -1, false)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, "00500093\n00a00113\ndeadbeef\n", buf.String())
	})
	t.Run("fill missing", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := WriteReadmemh(&buf, words, 0, -1, true)
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, "00500093\n00a00113\n00000000\ndeadbeef\n", buf.String())
	})
	t.Run("window", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := WriteReadmemh(&buf, words, 1, 5, true)
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, "00a00113\n00000000\ndeadbeef\n00000000\n00000000\n", buf.String())
	})
	t.Run("zero count", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := WriteReadmemh(&buf, words, 0, 0, true)
		require.NoError(t, err)
		require.Equal(t, 0, n)
		require.Empty(t, buf.String())
	})
	t.Run("empty image", func(t *testing.T) {
		_, err := WriteReadmemh(&bytes.Buffer{}, map[uint32]uint32{}, 0, -1, false)
		require.Error(t, err)
	})
	t.Run("stops at the last word index", func(t *testing.T) {
		var buf bytes.Buffer
		top := map[uint32]uint32{0: 0x11, 0xFFFFFFFF: 0x22}
		n, err := WriteReadmemh(&buf, top, 0xFFFFFFFF, 2, true)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, "00000022\n", buf.String())
	})
}
