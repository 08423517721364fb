package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/env"
	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/runner"
	"github.com/exprflow/exprflow/value"
)

func TestExecuteArithmeticPrecedence(t *testing.T) {
	r := runner.New()
	v, err := r.Execute("2 + 3 * 4")
	require.NoError(t, err)
	assert.Equal(t, int32(14), v.AsInteger())
}

func TestExecutePowerRightAssociative(t *testing.T) {
	r := runner.New()
	v, err := r.Execute("2 ** 3 ** 2")
	require.NoError(t, err)
	assert.Equal(t, 512.0, v.AsDouble())
}

func TestExecuteMultipleReordersByDependency(t *testing.T) {
	r := runner.New()
	results, err := r.ExecuteMultiple([]string{
		"b = a + 1",
		"a = 1",
		"c = b + a",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int32(1), results[1].AsInteger())
	assert.Equal(t, int32(2), results[0].AsInteger())
	assert.Equal(t, int32(3), results[2].AsInteger())
}

func TestExecuteMultipleWithEnvSeesPriorAssignments(t *testing.T) {
	r := runner.New()
	e := env.NewMapEnv()
	_, err := r.ExecuteMultipleWithEnv([]string{"x = 10"}, e)
	require.NoError(t, err)

	v, err := r.ExecuteWithEnv("x * 2", e)
	require.NoError(t, err)
	assert.Equal(t, int32(20), v.AsInteger())
}

func TestExecuteMultipleDetectsCycle(t *testing.T) {
	r := runner.New()
	_, err := r.ExecuteMultiple([]string{
		"a = b",
		"b = a",
	})
	require.Error(t, err)
	var analyzeErr *exprerr.AnalyzeError
	assert.ErrorAs(t, err, &analyzeErr)
}

func TestChunkVMMatchesTreeWalker(t *testing.T) {
	sources := []string{
		"b = a + 1",
		"a = 3",
		"c = if(b > a, b, a)",
	}

	tree := runner.New()
	treeResults, err := tree.ExecuteMultiple(sources)
	require.NoError(t, err)

	vmRunner := runner.New().SetExecuteMode(runner.ChunkVM)
	vmResults, err := vmRunner.ExecuteMultiple(sources)
	require.NoError(t, err)

	require.Len(t, vmResults, len(treeResults))
	for i := range treeResults {
		assert.True(t, treeResults[i].Equal(vmResults[i]), "result %d: tree=%v vm=%v", i, treeResults[i], vmResults[i])
	}
}

func TestCompileSourceThenRunChunkMatchesDirectExecution(t *testing.T) {
	sources := []string{"a = 2 + 2", "b = a * 3"}

	direct := runner.New()
	directResults, err := direct.ExecuteMultiple(sources)
	require.NoError(t, err)

	r := runner.New()
	c, err := r.CompileSource(sources)
	require.NoError(t, err)

	chunkResults, err := r.RunChunk(c, env.NewMapEnv())
	require.NoError(t, err)

	require.Len(t, chunkResults, len(directResults))
	for i := range directResults {
		assert.True(t, directResults[i].Equal(chunkResults[i]))
	}
}

func TestParseUnknownBuiltinSuggestsCorrection(t *testing.T) {
	r := runner.New()
	_, err := r.Execute("clok()")
	require.Error(t, err)
	var parseErr *exprerr.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Suggestions, "clock")
}

func TestCJKStringConcat(t *testing.T) {
	r := runner.New()
	v, err := r.Execute(`"你好" + "世界"`)
	require.NoError(t, err)
	assert.Equal(t, "你好世界", v.AsString())
}

func TestBatchDependencyChainReordersAndComputes(t *testing.T) {
	r := runner.New()
	e := env.NewMapEnv()
	e.Put("m", value.NewInt(2))
	e.Put("n", value.NewInt(4))
	e.Put("w", value.NewInt(6))

	results, err := r.ExecuteMultipleWithEnv([]string{
		"x = a + b*c",
		"a = m + n",
		"b = a * 2",
		"c = n + w + b",
	}, e)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, int32(270), results[0].AsInteger())
	assert.Equal(t, int32(6), results[1].AsInteger())
	assert.Equal(t, int32(12), results[2].AsInteger())
	assert.Equal(t, int32(22), results[3].AsInteger())
}

func TestDoublePowerAndOperatorPrecedence(t *testing.T) {
	r := runner.New()
	v, err := r.Execute("1 + 2 * 2 ** 3 ** 2")
	require.NoError(t, err)
	assert.True(t, v.IsDouble())
	assert.Equal(t, 1025.0, v.AsDouble())
}

func TestIfExprPicksElseBranchOnFalseCondition(t *testing.T) {
	r := runner.New()
	e := env.NewMapEnv()
	e.Put("a", value.NewInt(3))
	e.Put("b", value.NewInt(5))
	v, err := r.ExecuteWithEnv("if(a > b, 1, 2)", e)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v.AsInteger())
}

func TestLongArithmeticExpression(t *testing.T) {
	r := runner.New()
	v, err := r.Execute("1000 + 100.0 * 99 - (600 - 3 * 15) / (((68 - 9) - 3) * 2 - 100) + 10000 % 7 * 71")
	require.NoError(t, err)
	assert.True(t, v.IsDouble())
	assert.Equal(t, 11138.0, v.AsDouble())
}

// TestLargeBatchOfIndependentTemplatesAllConverge exercises the
// analyzer/evaluator against the scale named in spec.md §8 scenario
// 10: thousands of formulas across many independent 5-variable
// dependency chains, distinguished only by a numeric suffix, must all
// resolve without tripping the cycle detector. Expected values are
// computed from the same template the formulas encode rather than a
// fixed original-source constant, since the template text itself
// isn't part of the spec's external contract.
func TestLargeBatchOfIndependentTemplatesAllConverge(t *testing.T) {
	const reps = 2000
	const m, n = int32(4), int32(5)
	g := m + n
	d := g*3 + 2
	c := d + n
	b := c*2 - m
	a := b + c*d

	sources := make([]string, 0, reps*5)
	for i := 0; i < reps; i++ {
		suffix := fmtSuffix(i)
		sources = append(sources,
			"A"+suffix+" = B"+suffix+" + C"+suffix+" * D"+suffix,
			"B"+suffix+" = C"+suffix+" * 2 - M"+suffix,
			"C"+suffix+" = D"+suffix+" + N"+suffix,
			"D"+suffix+" = G"+suffix+" * 3 + 2",
			"G"+suffix+" = M"+suffix+" + N"+suffix,
		)
	}

	e := env.NewMapEnv()
	for i := 0; i < reps; i++ {
		suffix := fmtSuffix(i)
		e.Put("M"+suffix, value.NewInt(m))
		e.Put("N"+suffix, value.NewInt(n))
	}

	r := runner.New()
	_, err := r.ExecuteMultipleWithEnv(sources, e)
	require.NoError(t, err)

	for i := 0; i < reps; i++ {
		suffix := fmtSuffix(i)
		gv, _ := e.Get("G" + suffix)
		assert.Equal(t, g, gv.AsInteger(), "G%s", suffix)
		dv, _ := e.Get("D" + suffix)
		assert.Equal(t, d, dv.AsInteger(), "D%s", suffix)
		cv, _ := e.Get("C" + suffix)
		assert.Equal(t, c, cv.AsInteger(), "C%s", suffix)
		bv, _ := e.Get("B" + suffix)
		assert.Equal(t, b, bv.AsInteger(), "B%s", suffix)
		av, _ := e.Get("A" + suffix)
		assert.Equal(t, a, av.AsInteger(), "A%s", suffix)
	}
}

func fmtSuffix(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "_0"
	}
	s := ""
	for i > 0 {
		s = string(digits[i%10]) + s
		i /= 10
	}
	return "_" + s
}
