package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exprflow/exprflow/value"
)

func TestTruthy(t *testing.T) {
	assert.False(t, value.NullValue.Truthy())
	assert.False(t, value.NewBool(false).Truthy())
	assert.True(t, value.NewBool(true).Truthy())
	assert.False(t, value.NewString("").Truthy())
	assert.True(t, value.NewString("x").Truthy())
	assert.True(t, value.NewInt(0).Truthy())
	assert.True(t, value.NewDouble(0).Truthy())
}

func TestCoercions(t *testing.T) {
	assert.Equal(t, int32(9), value.NewDouble(9.7).AsInteger())
	assert.Equal(t, 9.0, value.NewInt(9).AsDouble())
	assert.Equal(t, "", value.NewInt(9).AsString())
	assert.Equal(t, "hi", value.NewString("hi").AsString())
}

func TestDisplayDoubleTrailingZero(t *testing.T) {
	assert.Equal(t, "9.0", value.NewDouble(9).String())
	assert.Equal(t, "9.5", value.NewDouble(9.5).String())
	assert.Equal(t, "7", value.NewInt(7).String())
}

func TestEqualNeverCoerces(t *testing.T) {
	assert.False(t, value.NewInt(1).Equal(value.NewDouble(1)))
	assert.True(t, value.NewInt(1).Equal(value.NewInt(1)))
	assert.True(t, value.NullValue.Equal(value.NullValue))
}

func TestInstanceReferenceSemantics(t *testing.T) {
	inst := value.NewInstance()
	v1 := value.NewInstanceValue(inst)
	v2 := v1 // copy of the Value, same underlying *Instance

	inst.Set("a", value.NewInt(1))
	got, ok := v2.AsInstance().Get("a")
	assert.True(t, ok)
	assert.Equal(t, int32(1), got.AsInteger())

	v1.AsInstance().Set("b", value.NewInt(2))
	got2, ok2 := v2.AsInstance().Get("b")
	assert.True(t, ok2)
	assert.Equal(t, int32(2), got2.AsInteger())
}
