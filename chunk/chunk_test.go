package chunk_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/chunk"
	"github.com/exprflow/exprflow/value"
)

func TestWriterFlushThenDecodeRoundTrips(t *testing.T) {
	w := chunk.NewWriter()
	idx, err := w.AddConstant(value.NewInt(42))
	require.NoError(t, err)
	w.WriteOp(chunk.OpConstant)
	w.WriteInt(int32(idx))
	w.WriteOp(chunk.OpExit)
	require.NoError(t, w.SetVariables([]string{"a", "b"}))

	c := w.Flush()
	encoded := c.Encode()

	decoded, err := chunk.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, cmp.Equal(c, decoded))
}

func TestVarBitMarksInternedNames(t *testing.T) {
	w := chunk.NewWriter()
	require.NoError(t, w.SetVariables([]string{"x", "y", "z"}))
	c := w.Flush()

	r, err := chunk.NewReader(c)
	require.NoError(t, err)
	_ = r

	for i := 0; i < 3; i++ {
		assert.True(t, c.VarBit(i), "index %d should be marked as a variable", i)
	}
}

func TestConstantPoolRejectsInstance(t *testing.T) {
	pool := chunk.NewConstantPool()
	inst := value.NewInstanceValue(value.NewInstance())
	_, err := pool.Add(inst)
	assert.Error(t, err)
}

func TestConstantPoolDedupesEqualValues(t *testing.T) {
	pool := chunk.NewConstantPool()
	i1, err := pool.Add(value.NewInt(7))
	require.NoError(t, err)
	i2, err := pool.Add(value.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, i1, i2)

	i3, err := pool.Add(value.NewString("7"))
	require.NoError(t, err)
	assert.NotEqual(t, i1, i3, "Integer(7) and String(\"7\") must not collide")
}

func TestHashIsStableAcrossEncodings(t *testing.T) {
	w := chunk.NewWriter()
	w.WriteOp(chunk.OpExit)
	c1 := w.Flush()

	w2 := chunk.NewWriter()
	w2.WriteOp(chunk.OpExit)
	c2 := w2.Flush()

	assert.Equal(t, chunk.Hash(c1), chunk.Hash(c2))
}
