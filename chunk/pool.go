package chunk

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/value"
)

// ConstantPool is the in-memory form of a Chunk's constants section:
// an ordered, deduplicated sequence of Values. Only Integer, Double,
// String and Boolean are admissible (spec.md §3) — Instance and Null
// have no wire representation.
type ConstantPool struct {
	values []value.Value
	byKey  map[string]int
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{byKey: make(map[string]int)}
}

// dedupKey renders a canonical key for v that distinguishes across
// Kind (so Integer(1) and String("1") never collide), matching the
// "canonical string rendering" dedup rule of spec.md §3.
func dedupKey(v value.Value) string {
	return fmt.Sprintf("%d:%s", v.Kind(), v.String())
}

// Add interns v, returning its existing index if already present.
func (p *ConstantPool) Add(v value.Value) (int, error) {
	switch v.Kind() {
	case value.Integer, value.Double, value.String, value.Boolean:
	default:
		return 0, exprerr.NewCompileError(fmt.Sprintf("unsupported constant type: %s", v.Kind()))
	}
	key := dedupKey(v)
	if idx, ok := p.byKey[key]; ok {
		return idx, nil
	}
	idx := len(p.values)
	p.values = append(p.values, v)
	p.byKey[key] = idx
	return idx, nil
}

// Get returns the value at index, or a RuntimeError if out of range.
func (p *ConstantPool) Get(index int) (value.Value, error) {
	if index < 0 || index >= len(p.values) {
		return value.NullValue, exprerr.NewRuntimeError(fmt.Sprintf("invalid constant index: %d", index))
	}
	return p.values[index], nil
}

// Len returns the number of interned constants.
func (p *ConstantPool) Len() int { return len(p.values) }

// All returns the pool's constants in index order.
func (p *ConstantPool) All() []value.Value { return p.values }

// encode renders the pool as the tagged byte sequence from spec.md §6:
// 01||i32 (Integer), 04||f64-bits (Double), 05||u16 len||bytes (String).
func (p *ConstantPool) encode() []byte {
	out := make([]byte, 0, len(p.values)*5)
	for _, v := range p.values {
		switch v.Kind() {
		case value.Integer:
			out = append(out, byte(value.Integer))
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], uint32(v.AsInteger()))
			out = append(out, buf[:]...)
		case value.Double:
			out = append(out, byte(value.Double))
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.AsDouble()))
			out = append(out, buf[:]...)
		case value.String:
			out = append(out, byte(value.String))
			s := v.AsString()
			var lenBuf [2]byte
			binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
			out = append(out, lenBuf[:]...)
			out = append(out, s...)
		case value.Boolean:
			out = append(out, byte(value.Boolean))
			if v.AsBool() {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

// decodeConstantPool parses the tagged byte sequence produced by
// encode back into a ConstantPool.
func decodeConstantPool(data []byte) (*ConstantPool, error) {
	p := NewConstantPool()
	i := 0
	for i < len(data) {
		tag := data[i]
		i++
		var v value.Value
		switch value.Kind(tag) {
		case value.Integer:
			if i+4 > len(data) {
				return nil, exprerr.NewIOError("truncated integer constant", nil)
			}
			v = value.NewInt(int32(binary.BigEndian.Uint32(data[i : i+4])))
			i += 4
		case value.Double:
			if i+8 > len(data) {
				return nil, exprerr.NewIOError("truncated double constant", nil)
			}
			bits := binary.BigEndian.Uint64(data[i : i+8])
			v = value.NewDouble(math.Float64frombits(bits))
			i += 8
		case value.String:
			if i+2 > len(data) {
				return nil, exprerr.NewIOError("truncated string length", nil)
			}
			n := int(binary.BigEndian.Uint16(data[i : i+2]))
			i += 2
			if i+n > len(data) {
				return nil, exprerr.NewIOError("truncated string constant", nil)
			}
			v = value.NewString(string(data[i : i+n]))
			i += n
		case value.Boolean:
			if i+1 > len(data) {
				return nil, exprerr.NewIOError("truncated boolean constant", nil)
			}
			v = value.NewBool(data[i] != 0)
			i++
		default:
			return nil, exprerr.NewIOError(fmt.Sprintf("unsupported constant tag: %d", tag), nil)
		}
		if _, err := p.Add(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}
