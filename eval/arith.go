package eval

import (
	"math"

	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// Binary applies one arithmetic/comparison/equality operator to two
// already-evaluated operands, per spec.md §4.5's shared helper — the
// tree-walking Evaluator and the Stack VM both dispatch through this
// function so the two backends agree on every coercion rule.
func Binary(left, right value.Value, op token.Type) (value.Value, error) {
	switch op {
	case token.Plus:
		return binaryAdd(left, right)
	case token.Minus:
		return numericOp(left, right, func(a, b float64) float64 { return a - b }, func(a, b int32) int32 { return a - b })
	case token.Star:
		return numericOp(left, right, func(a, b float64) float64 { return a * b }, func(a, b int32) int32 { return a * b })
	case token.Slash:
		return divide(left, right)
	case token.Percent:
		return modulo(left, right)
	case token.StarStar:
		if err := checkNumberOperands(left, right); err != nil {
			return value.NullValue, err
		}
		return value.NewDouble(math.Pow(left.AsDouble(), right.AsDouble())), nil
	case token.Greater:
		return compare(left, right, func(a, b float64) bool { return a > b })
	case token.GreaterEqual:
		return compare(left, right, func(a, b float64) bool { return a >= b })
	case token.Less:
		return compare(left, right, func(a, b float64) bool { return a < b })
	case token.LessEqual:
		return compare(left, right, func(a, b float64) bool { return a <= b })
	case token.EqualEqual:
		return value.NewBool(left.Equal(right)), nil
	case token.BangEqual:
		return value.NewBool(!left.Equal(right)), nil
	default:
		return value.NullValue, exprerr.NewRuntimeError("invalid binary operator")
	}
}

// Unary applies "-" or "!" to an already-evaluated operand.
func Unary(right value.Value, op token.Type) (value.Value, error) {
	switch op {
	case token.Bang:
		return value.NewBool(!right.Truthy()), nil
	case token.Minus:
		if !right.IsNumber() {
			return value.NullValue, exprerr.NewRuntimeError("operand must be a number")
		}
		if right.IsInteger() {
			return value.NewInt(-right.AsInteger()), nil
		}
		return value.NewDouble(-right.AsDouble()), nil
	default:
		return value.NullValue, exprerr.NewRuntimeError("invalid unary operator")
	}
}

func binaryAdd(left, right value.Value) (value.Value, error) {
	leftOk := left.IsNumber() || left.IsString()
	rightOk := right.IsNumber() || right.IsString()
	if !leftOk || !rightOk {
		return value.NullValue, exprerr.NewRuntimeError("operands must be number or string")
	}
	if left.IsString() || right.IsString() {
		return value.NewString(left.String() + right.String()), nil
	}
	if left.IsDouble() || right.IsDouble() {
		return value.NewDouble(left.AsDouble() + right.AsDouble()), nil
	}
	return value.NewInt(left.AsInteger() + right.AsInteger()), nil
}

func numericOp(left, right value.Value, doubleOp func(a, b float64) float64, intOp func(a, b int32) int32) (value.Value, error) {
	if err := checkNumberOperands(left, right); err != nil {
		return value.NullValue, err
	}
	if left.IsDouble() || right.IsDouble() {
		return value.NewDouble(doubleOp(left.AsDouble(), right.AsDouble())), nil
	}
	return value.NewInt(intOp(left.AsInteger(), right.AsInteger())), nil
}

func divide(left, right value.Value) (value.Value, error) {
	if err := checkNumberOperands(left, right); err != nil {
		return value.NullValue, err
	}
	if !left.IsDouble() && !right.IsDouble() {
		if right.AsInteger() == 0 {
			return value.NullValue, exprerr.NewRuntimeError("division by zero")
		}
		return value.NewInt(left.AsInteger() / right.AsInteger()), nil
	}
	// Double division by zero yields +-inf/NaN per IEEE-754, not an
	// error (spec.md §4.5).
	return value.NewDouble(left.AsDouble() / right.AsDouble()), nil
}

func modulo(left, right value.Value) (value.Value, error) {
	if err := checkNumberOperands(left, right); err != nil {
		return value.NullValue, err
	}
	if left.IsDouble() || right.IsDouble() {
		return value.NewDouble(math.Mod(left.AsDouble(), right.AsDouble())), nil
	}
	if right.AsInteger() == 0 {
		return value.NullValue, exprerr.NewRuntimeError("division by zero")
	}
	return value.NewInt(left.AsInteger() % right.AsInteger()), nil
}

func compare(left, right value.Value, cmp func(a, b float64) bool) (value.Value, error) {
	if err := checkNumberOperands(left, right); err != nil {
		return value.NullValue, err
	}
	return value.NewBool(cmp(left.AsDouble(), right.AsDouble())), nil
}

func checkNumberOperands(left, right value.Value) error {
	if left.IsNumber() && right.IsNumber() {
		return nil
	}
	return exprerr.NewRuntimeError("operands must be numbers")
}
