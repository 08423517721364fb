// Package chunk implements the engine's compiled bytecode artifact:
// the Chunk wire format (opcodes, constant pool, variable-marker
// bitmap) and its bit-exact big-endian serialization (spec.md §4.6,
// §6).
package chunk

import (
	"encoding/binary"

	"github.com/exprflow/exprflow/exprerr"
)

// Chunk is the compiled artifact produced by the compiler: a code
// stream, a constant pool, and a bitmap marking which pool entries are
// variable names. It is immutable once built and may be freely shared
// read-only across threads (spec.md §5).
type Chunk struct {
	Codes     []byte
	Constants []byte
	Vars      []byte
}

// Encode renders c as the section-prefixed wire format from spec.md
// §6: three u32-length-prefixed sections, all integers big-endian.
func (c *Chunk) Encode() []byte {
	out := make([]byte, 0, 12+len(c.Codes)+len(c.Constants)+len(c.Vars))
	out = appendSection(out, c.Codes)
	out = appendSection(out, c.Constants)
	out = appendSection(out, c.Vars)
	return out
}

func appendSection(out []byte, section []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(section)))
	out = append(out, lenBuf[:]...)
	out = append(out, section...)
	return out
}

// Decode parses the wire format produced by Encode.
func Decode(data []byte) (*Chunk, error) {
	codes, rest, err := readSection(data)
	if err != nil {
		return nil, err
	}
	constants, rest, err := readSection(rest)
	if err != nil {
		return nil, err
	}
	vars, _, err := readSection(rest)
	if err != nil {
		return nil, err
	}
	return &Chunk{Codes: codes, Constants: constants, Vars: vars}, nil
}

func readSection(data []byte) (section []byte, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, exprerr.NewIOError("truncated chunk section length", nil)
	}
	n := int(binary.BigEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) < n {
		return nil, nil, exprerr.NewIOError("truncated chunk section body", nil)
	}
	return data[:n], data[n:], nil
}

// VarBit reports whether constant-pool index i is marked as a
// variable name (spec.md invariant 4).
func (c *Chunk) VarBit(i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(c.Vars) {
		return false
	}
	bitIdx := uint(i % 8)
	// MSB-first: bit 0 of index i is the high bit of its byte.
	return c.Vars[byteIdx]&(1<<(7-bitIdx)) != 0
}
