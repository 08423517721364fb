package chunk

import (
	"encoding/binary"

	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/value"
)

// Reader wraps a Chunk's three byte slices for sequential instruction
// decoding by the Stack VM.
type Reader struct {
	code []byte
	pool *ConstantPool
	ip   int
}

// NewReader decodes c's constant pool and returns a Reader positioned
// at the start of its code stream.
func NewReader(c *Chunk) (*Reader, error) {
	pool, err := decodeConstantPool(c.Constants)
	if err != nil {
		return nil, err
	}
	return &Reader{code: c.Codes, pool: pool}, nil
}

// ReadByte returns the next raw byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.ip >= len(r.code) {
		return 0, exprerr.NewRuntimeError("unexpected end of code stream")
	}
	b := r.code[r.ip]
	r.ip++
	return b, nil
}

// ReadOp decodes the next opcode.
func (r *Reader) ReadOp() (OpCode, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return OpCode(b), nil
}

// ReadInt decodes a big-endian int32 operand.
func (r *Reader) ReadInt() (int32, error) {
	if r.ip+4 > len(r.code) {
		return 0, exprerr.NewRuntimeError("truncated instruction operand")
	}
	v := int32(binary.BigEndian.Uint32(r.code[r.ip : r.ip+4]))
	r.ip += 4
	return v, nil
}

// ReadConstant returns the pool entry at index.
func (r *Reader) ReadConstant(index int) (value.Value, error) {
	return r.pool.Get(index)
}

// Position returns the current instruction pointer.
func (r *Reader) Position() int { return r.ip }

// Seek moves the instruction pointer to an absolute byte offset,
// e.g. after applying a forward-jump offset.
func (r *Reader) Seek(pos int) { r.ip = pos }

// AtEnd reports whether the code stream is exhausted.
func (r *Reader) AtEnd() bool { return r.ip >= len(r.code) }
