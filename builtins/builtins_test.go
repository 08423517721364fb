package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/builtins"
	"github.com/exprflow/exprflow/value"
)

func TestDefaultRegistryHasClockAndAbs(t *testing.T) {
	r := builtins.NewRegistry()
	_, ok := r.Get("clock")
	assert.True(t, ok)
	_, ok = r.Get("abs")
	assert.True(t, ok)
	_, ok = r.Get("nope")
	assert.False(t, ok)
}

func TestRegisterRejectsCollision(t *testing.T) {
	r := builtins.NewRegistry()
	err := r.Register(fakeFn{"abs"})
	assert.Error(t, err)
}

func TestAbsPreservesVariant(t *testing.T) {
	r := builtins.NewRegistry()
	fn, ok := r.Get("abs")
	require.True(t, ok)

	intResult, err := fn.Call([]value.Value{value.NewInt(-4)})
	require.NoError(t, err)
	assert.True(t, intResult.IsInteger())
	assert.Equal(t, int32(4), intResult.AsInteger())

	doubleResult, err := fn.Call([]value.Value{value.NewDouble(-2.5)})
	require.NoError(t, err)
	assert.True(t, doubleResult.IsDouble())
	assert.Equal(t, 2.5, doubleResult.AsDouble())
}

func TestNamesIncludesAllRegistered(t *testing.T) {
	r := builtins.NewRegistry()
	assert.ElementsMatch(t, []string{"clock", "abs"}, r.Names())
}

type fakeFn struct{ name string }

func (f fakeFn) Name() string { return f.name }
func (f fakeFn) Arity() int   { return 0 }
func (f fakeFn) Call(args []value.Value) (value.Value, error) {
	return value.NullValue, nil
}
