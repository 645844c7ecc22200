package fast

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Pages only exist in the serialized and hashed form of memory;
// in-memory storage is one flat word slice.
const (
	PageWordsSize = 8
	PageWords     = 1 << PageWordsSize
	PageWordsMask = PageWords - 1
)

// Memory is a fixed-capacity, word-indexed memory.
type Memory struct {
	words []uint32
}

func NewMemory(words uint32) *Memory {
	return &Memory{words: make([]uint32, words)}
}

func (m *Memory) Capacity() uint32 {
	return uint32(len(m.words))
}

func (m *Memory) ReadWord(index uint32) (uint32, error) {
	if index >= m.Capacity() {
		return 0, fmt.Errorf("%w: read of word %#x, capacity %#x", ErrMemoryOutOfBounds, index, m.Capacity())
	}
	return m.words[index], nil
}

func (m *Memory) WriteWord(index uint32, value uint32) error {
	if index >= m.Capacity() {
		return fmt.Errorf("%w: write of word %#x, capacity %#x", ErrMemoryOutOfBounds, index, m.Capacity())
	}
	m.words[index] = value
	return nil
}

func (m *Memory) Clear() {
	clear(m.words)
}

// ForEachNonZero calls fn for every populated word, in index order.
func (m *Memory) ForEachNonZero(fn func(index uint32, word uint32) error) error {
	for i, w := range m.words {
		if w == 0 {
			continue
		}
		if err := fn(uint32(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) UsedWords() (n int) {
	for _, w := range m.words {
		if w != 0 {
			n++
		}
	}
	return
}

func (m *Memory) pageCount() uint32 {
	return (m.Capacity() + PageWordsMask) >> PageWordsSize
}

// page returns the words of the given page, shorter than PageWords for a trailing partial page.
func (m *Memory) page(pageIndex uint32) []uint32 {
	start := pageIndex << PageWordsSize
	end := min(start+PageWords, m.Capacity())
	return m.words[start:end]
}

func pageIsZero(p []uint32) bool {
	for _, w := range p {
		if w != 0 {
			return false
		}
	}
	return true
}

func encodePage(p []uint32) []byte {
	out := make([]byte, 0, len(p)*4)
	for _, w := range p {
		out = binary.BigEndian.AppendUint32(out, w)
	}
	return out
}

// Hash commits to the capacity and every non-zero page of the memory.
func (m *Memory) Hash() common.Hash {
	out := binary.BigEndian.AppendUint32(nil, m.Capacity())
	for i := uint32(0); i < m.pageCount(); i++ {
		p := m.page(i)
		if pageIsZero(p) {
			continue
		}
		out = binary.BigEndian.AppendUint32(out, i)
		out = append(out, crypto.Keccak256(encodePage(p))...)
	}
	return crypto.Keccak256Hash(out)
}

type memoryPage struct {
	Index uint32        `json:"index"`
	Data  hexutil.Bytes `json:"data"`
}

type memoryJSON struct {
	Capacity uint32       `json:"capacity"`
	Pages    []memoryPage `json:"pages"`
}

func (m *Memory) MarshalJSON() ([]byte, error) {
	out := memoryJSON{Capacity: m.Capacity(), Pages: make([]memoryPage, 0)}
	for i := uint32(0); i < m.pageCount(); i++ {
		p := m.page(i)
		if pageIsZero(p) {
			continue
		}
		out.Pages = append(out.Pages, memoryPage{Index: i, Data: encodePage(p)})
	}
	return json.Marshal(out)
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var in memoryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	words := make([]uint32, in.Capacity)
	for _, p := range in.Pages {
		if len(p.Data)%4 != 0 || len(p.Data) > PageWords*4 {
			return fmt.Errorf("page %d has invalid data length %d", p.Index, len(p.Data))
		}
		start := uint64(p.Index) << PageWordsSize
		if start+uint64(len(p.Data)/4) > uint64(in.Capacity) {
			return fmt.Errorf("page %d exceeds memory capacity %#x", p.Index, in.Capacity)
		}
		for j := 0; j < len(p.Data); j += 4 {
			words[start+uint64(j/4)] = binary.BigEndian.Uint32(p.Data[j : j+4])
		}
	}
	m.words = words
	return nil
}
