package vars_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/parser"
	"github.com/exprflow/exprflow/vars"
)

func TestQueryOfAssignCombinesReadsAndWrites(t *testing.T) {
	p := parser.New("c = a + b")
	expr, err := p.Parse()
	require.NoError(t, err)

	set := vars.NewQuery().Of(expr)
	assert.Equal(t, map[string]struct{}{"c": {}}, set.Assigns)
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, set.Depends)
}

func TestQueryOfPlainExpressionHasNoAssigns(t *testing.T) {
	p := parser.New("a + b * 2")
	expr, err := p.Parse()
	require.NoError(t, err)

	set := vars.NewQuery().Of(expr)
	assert.Empty(t, set.Assigns)
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, set.Depends)
}

func TestQueryOfSetExprUsesDottedPath(t *testing.T) {
	p := parser.New("obj.field = x")
	expr, err := p.Parse()
	require.NoError(t, err)

	set := vars.NewQuery().Of(expr)
	assert.Contains(t, set.Assigns, "obj.field")
	assert.Contains(t, set.Depends, "x")
}

func TestSetStringOmitsEqualsWhenNoAssigns(t *testing.T) {
	p := parser.New("a + b")
	expr, err := p.Parse()
	require.NoError(t, err)

	set := vars.NewQuery().Of(expr)
	assert.Equal(t, "a,b", set.String())
}

func TestSetStringRendersAssignsAndDepends(t *testing.T) {
	p := parser.New("c = a + b")
	expr, err := p.Parse()
	require.NoError(t, err)

	set := vars.NewQuery().Of(expr)
	assert.Equal(t, "c = a,b", set.String())
}
