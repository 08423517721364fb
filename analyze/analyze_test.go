package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/analyze"
	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/parser"
)

func mustParse(t *testing.T, sources ...string) []ast.Expr {
	t.Helper()
	exprs := make([]ast.Expr, len(sources))
	for i, src := range sources {
		e, err := parser.New(src).Parse()
		require.NoError(t, err)
		exprs[i] = e
	}
	return exprs
}

func TestAnalyzeTopologicallySortsByWriteBeforeRead(t *testing.T) {
	exprs := mustParse(t, "b = a + 1", "a = 1", "c = b + a")
	infos, err := analyze.New(exprs, true).Analyze()
	require.NoError(t, err)

	order := make([]int, len(infos))
	for i, info := range infos {
		order[i] = info.Index
	}
	assert.Equal(t, []int{1, 0, 2}, order)
}

func TestAnalyzeWithoutSortKeepsInputOrder(t *testing.T) {
	exprs := mustParse(t, "b = a + 1", "a = 1")
	infos, err := analyze.New(exprs, false).Analyze()
	require.NoError(t, err)

	assert.Equal(t, 0, infos[0].Index)
	assert.Equal(t, 1, infos[1].Index)
}

func TestAnalyzeDetectsCycle(t *testing.T) {
	exprs := mustParse(t, "a = b", "b = a")
	_, err := analyze.New(exprs, true).Analyze()
	require.Error(t, err)
	var analyzeErr *exprerr.AnalyzeError
	assert.ErrorAs(t, err, &analyzeErr)
}

func TestAnalyzeFirstWriterWinsWitness(t *testing.T) {
	// Two formulas both write "a"; only the first in input order
	// becomes the vertex's witness and is the one emitted — the
	// second is shadowed out of the result entirely (spec.md §4.4
	// step 2/6).
	exprs := mustParse(t, "a = 1", "a = 2", "b = a")
	infos, err := analyze.New(exprs, true).Analyze()
	require.NoError(t, err)

	var order []int
	for _, info := range infos {
		order = append(order, info.Index)
	}
	assert.Equal(t, []int{0, 2}, order)
}

func TestAnalyzeNonAssignFormulasAppendedAfterWitnesses(t *testing.T) {
	exprs := mustParse(t, "a = 1", "a + 1")
	infos, err := analyze.New(exprs, true).Analyze()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 0, infos[0].Index)
	assert.Equal(t, 1, infos[1].Index)
}
