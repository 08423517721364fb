package chunk

import (
	"encoding/binary"

	"github.com/exprflow/exprflow/internal/invariant"
	"github.com/exprflow/exprflow/value"
)

// Writer accumulates a code stream and a constant pool during
// compilation, then flushes them into an immutable Chunk. Mirrors the
// teacher-adjacent original's explicit Writer/Reader split (buffer
// first, write once) rather than building the Chunk incrementally.
type Writer struct {
	code []byte
	pool *ConstantPool
	vars []bool // dense, index-aligned with pool entries
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{pool: NewConstantPool()}
}

// Clear resets the writer to start a new compilation.
func (w *Writer) Clear() {
	w.code = nil
	w.pool = NewConstantPool()
	w.vars = nil
}

// WriteOp appends a single opcode byte.
func (w *Writer) WriteOp(op OpCode) {
	w.code = append(w.code, byte(op))
}

// WriteInt appends a big-endian int32 operand.
func (w *Writer) WriteInt(v int32) {
	invariant.Precondition(int64(v) == int64(int32(v)), "jump/index operand %d does not fit in int32", v)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	w.code = append(w.code, buf[:]...)
}

// UpdateInt overwrites the int32 operand at byte offset index — used
// to patch a forward-jump placeholder once its target is known.
func (w *Writer) UpdateInt(index int, v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	copy(w.code[index:index+4], buf[:])
}

// Position returns the current length of the code buffer.
func (w *Writer) Position() int { return len(w.code) }

// AddConstant interns v into the constant pool, returning its index.
func (w *Writer) AddConstant(v value.Value) (int, error) {
	return w.pool.Add(v)
}

// SetVariables interns every name in names as a String constant and
// marks its pool-index bit in the vars bitmap (spec.md §4.6's
// post-pass over the union of all reads and writes).
func (w *Writer) SetVariables(names []string) error {
	for _, name := range names {
		idx, err := w.AddConstant(value.NewString(name))
		if err != nil {
			return err
		}
		w.markVar(idx)
	}
	return nil
}

func (w *Writer) markVar(idx int) {
	if idx >= len(w.vars) {
		grown := make([]bool, idx+1)
		copy(grown, w.vars)
		w.vars = grown
	}
	w.vars[idx] = true
}

// Flush produces an immutable Chunk from the accumulated state. The
// code buffer is handed off, not copied, since Clear/the next
// compilation allocates a fresh one.
func (w *Writer) Flush() *Chunk {
	return &Chunk{
		Codes:     w.code,
		Constants: w.pool.encode(),
		Vars:      packVarBits(w.vars),
	}
}

// packVarBits renders a dense []bool into an MSB-first packed bitmap,
// bit i set iff constant-pool index i names a variable (spec.md
// invariant 4).
func packVarBits(vars []bool) []byte {
	if len(vars) == 0 {
		return nil
	}
	out := make([]byte, (len(vars)+7)/8)
	for i, set := range vars {
		if set {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}
