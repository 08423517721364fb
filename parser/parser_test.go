package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/parser"
)

func parse(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := parser.New(src).Parse()
	require.NoError(t, err)
	return expr
}

func TestPrecedenceClimbing(t *testing.T) {
	expr := parse(t, "1 + 2 * 3")
	bin := expr.(*ast.BinaryExpr)
	assert.Equal(t, "+", bin.Operator.Lexeme)
	assert.IsType(t, &ast.LiteralExpr{}, bin.Left)
	assert.IsType(t, &ast.BinaryExpr{}, bin.Right)
}

func TestPowerIsRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 must parse as 2 ** (3 ** 2).
	expr := parse(t, "2 ** 3 ** 2")
	outer := expr.(*ast.BinaryExpr)
	assert.Equal(t, "**", outer.Operator.Lexeme)
	assert.IsType(t, &ast.LiteralExpr{}, outer.Left)
	inner := outer.Right.(*ast.BinaryExpr)
	assert.Equal(t, "**", inner.Operator.Lexeme)
}

func TestAssignIsRightAssociativeAndChains(t *testing.T) {
	// x = y = expr must write both x and y.
	expr := parse(t, "x = y = 5")
	outer := expr.(*ast.AssignExpr)
	assert.Equal(t, "x", outer.Left.(*ast.IdExpr).Name.Lexeme)
	inner := outer.Right.(*ast.AssignExpr)
	assert.Equal(t, "y", inner.Left.(*ast.IdExpr).Name.Lexeme)
	assert.IsType(t, &ast.LiteralExpr{}, inner.Right)
}

func TestGetOnAssignLeftRewritesToSet(t *testing.T) {
	expr := parse(t, "a.b = 1")
	set := expr.(*ast.SetExpr)
	assert.Equal(t, "b", set.Name.Lexeme)
	assert.Equal(t, "a", set.Object.(*ast.IdExpr).Name.Lexeme)
}

func TestIfExprIsAlwaysTernary(t *testing.T) {
	expr := parse(t, "if(a > b, 1, 2)")
	ifExpr := expr.(*ast.IfExpr)
	assert.IsType(t, &ast.BinaryExpr{}, ifExpr.Condition)
	assert.IsType(t, &ast.LiteralExpr{}, ifExpr.ThenBranch)
	assert.IsType(t, &ast.LiteralExpr{}, ifExpr.ElseBranch)
}

func TestGroupingDoesNotProduceADedicatedNode(t *testing.T) {
	expr := parse(t, "(1 + 2) * 3")
	bin := expr.(*ast.BinaryExpr)
	assert.Equal(t, "*", bin.Operator.Lexeme)
	assert.IsType(t, &ast.BinaryExpr{}, bin.Left)
}

func TestUnaryMinusAndBang(t *testing.T) {
	expr := parse(t, "-1")
	u := expr.(*ast.UnaryExpr)
	assert.Equal(t, "-", u.Operator.Lexeme)

	expr = parse(t, "!true")
	u = expr.(*ast.UnaryExpr)
	assert.Equal(t, "!", u.Operator.Lexeme)
}

func TestCallParsesArguments(t *testing.T) {
	expr := parse(t, "abs(x, y)")
	call := expr.(*ast.CallExpr)
	assert.Equal(t, "abs", call.Callee.(*ast.IdExpr).Name.Lexeme)
	require.Len(t, call.Arguments, 2)
}

func TestCallRejectsMoreThan255Arguments(t *testing.T) {
	src := "f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ","
		}
		src += "1"
	}
	src += ")"
	_, err := parser.New(src).Parse()
	require.Error(t, err)
}

func TestLogicOperatorsProduceLogicNode(t *testing.T) {
	expr := parse(t, "a && b || c")
	or := expr.(*ast.LogicExpr)
	assert.Equal(t, "||", or.Operator.Lexeme)
	and := or.Left.(*ast.LogicExpr)
	assert.Equal(t, "&&", and.Operator.Lexeme)
}

func TestDotChainsIntoGet(t *testing.T) {
	expr := parse(t, "a.b.c")
	outer := expr.(*ast.GetExpr)
	assert.Equal(t, "c", outer.Name.Lexeme)
	inner := outer.Object.(*ast.GetExpr)
	assert.Equal(t, "b", inner.Name.Lexeme)
}

func TestTrailingTokensAfterExpressionIsError(t *testing.T) {
	_, err := parser.New("1 + 2 3").Parse()
	require.Error(t, err)
}

func TestUnexpectedTokenIsParseError(t *testing.T) {
	_, err := parser.New(")").Parse()
	require.Error(t, err)
}

func TestKnownBuiltinsRejectsUnknownCallee(t *testing.T) {
	_, err := parser.New("clok()", parser.WithKnownBuiltins([]string{"clock", "abs"})).Parse()
	require.Error(t, err)
}

func TestKnownBuiltinsAcceptsRegisteredCallee(t *testing.T) {
	_, err := parser.New("clock()", parser.WithKnownBuiltins([]string{"clock", "abs"})).Parse()
	require.NoError(t, err)
}
