// Package eval implements the tree-walking Evaluator, the first of
// the engine's two interchangeable execution backends (spec.md §4.5).
package eval

import (
	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/builtins"
	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// Environment is the host collaborator an Evaluator reads from and
// writes to. It is an external contract (spec.md §6), not owned by
// this package.
type Environment interface {
	Get(name string) (value.Value, bool)
	Put(name string, v value.Value) bool
}

// Evaluator recursively interprets an expression tree against an
// Environment, implementing ast.Visitor so each node kind dispatches
// to its own Visit method (spec.md §4.5).
type Evaluator struct {
	env      Environment
	builtins *builtins.Registry
}

// New returns an Evaluator borrowing env for the duration of its
// calls. builtins may be nil, in which case NewRegistry's defaults
// are used.
func New(env Environment, registry *builtins.Registry) *Evaluator {
	if registry == nil {
		registry = builtins.NewRegistry()
	}
	return &Evaluator{env: env, builtins: registry}
}

// Evaluate walks expr and returns its Value.
func (e *Evaluator) Evaluate(expr ast.Expr) (value.Value, error) {
	result, err := expr.Accept(e)
	if err != nil {
		return value.NullValue, err
	}
	return result.(value.Value), nil
}

func (e *Evaluator) VisitBinary(ex *ast.BinaryExpr) (any, error) {
	left, err := e.Evaluate(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(ex.Right)
	if err != nil {
		return nil, err
	}
	return Binary(left, right, ex.Operator.Type)
}

func (e *Evaluator) VisitLogic(ex *ast.LogicExpr) (any, error) {
	left, err := e.Evaluate(ex.Left)
	if err != nil {
		return nil, err
	}
	// Short-circuit: the tree-walker coerces the short-circuit result
	// to Boolean (spec.md §9, open question 3 — the VM instead keeps
	// the original value on the stack; both preserve truthiness and
	// skip evaluating right when the left side determines the result).
	switch ex.Operator.Type {
	case token.PipePipe:
		if left.Truthy() {
			return value.NewBool(true), nil
		}
		right, err := e.Evaluate(ex.Right)
		if err != nil {
			return nil, err
		}
		return value.NewBool(right.Truthy()), nil
	case token.AmpAmp:
		if !left.Truthy() {
			return value.NewBool(false), nil
		}
		right, err := e.Evaluate(ex.Right)
		if err != nil {
			return nil, err
		}
		return value.NewBool(right.Truthy()), nil
	default:
		return nil, exprerr.NewRuntimeError("invalid logical operator")
	}
}

func (e *Evaluator) VisitLiteral(ex *ast.LiteralExpr) (any, error) {
	return ex.Value, nil
}

func (e *Evaluator) VisitUnary(ex *ast.UnaryExpr) (any, error) {
	right, err := e.Evaluate(ex.Right)
	if err != nil {
		return nil, err
	}
	return Unary(right, ex.Operator.Type)
}

// VisitId resolves a variable, defaulting to Null when absent — the
// tree-walker's deliberate divergence from the VM, which raises
// RuntimeError on an undefined read (spec.md §9, open question 1).
func (e *Evaluator) VisitId(ex *ast.IdExpr) (any, error) {
	v, ok := e.env.Get(ex.Name.Lexeme)
	if !ok {
		return value.NullValue, nil
	}
	return v, nil
}

func (e *Evaluator) VisitAssign(ex *ast.AssignExpr) (any, error) {
	id, ok := ex.Left.(*ast.IdExpr)
	if !ok {
		return nil, exprerr.NewRuntimeError("invalid assignment target")
	}
	v, err := e.Evaluate(ex.Right)
	if err != nil {
		return nil, err
	}
	if !e.env.Put(id.Name.Lexeme, v) {
		return nil, exprerr.NewRuntimeError("variable rejected: " + id.Name.Lexeme)
	}
	return v, nil
}

func (e *Evaluator) VisitCall(ex *ast.CallExpr) (any, error) {
	id, ok := ex.Callee.(*ast.IdExpr)
	if !ok {
		return nil, exprerr.NewRuntimeError("callee must be a function name")
	}
	fn, ok := e.builtins.Get(id.Name.Lexeme)
	if !ok {
		return nil, exprerr.NewRuntimeError("undefined function: " + id.Name.Lexeme)
	}
	if fn.Arity() != len(ex.Arguments) {
		return nil, exprerr.NewRuntimeError("wrong number of arguments to " + id.Name.Lexeme)
	}
	args := make([]value.Value, len(ex.Arguments))
	for i, arg := range ex.Arguments {
		v, err := e.Evaluate(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn.Call(args)
}

func (e *Evaluator) VisitIf(ex *ast.IfExpr) (any, error) {
	cond, err := e.Evaluate(ex.Condition)
	if err != nil {
		return nil, err
	}
	if cond.Truthy() {
		return e.Evaluate(ex.ThenBranch)
	}
	if ex.ElseBranch == nil {
		return value.NullValue, nil
	}
	return e.Evaluate(ex.ElseBranch)
}

func (e *Evaluator) VisitGet(ex *ast.GetExpr) (any, error) {
	obj, err := e.Evaluate(ex.Object)
	if err != nil {
		return nil, err
	}
	inst := obj.AsInstance()
	if inst == nil {
		return nil, exprerr.NewRuntimeError("only instances have properties")
	}
	v, ok := inst.Get(ex.Name.Lexeme)
	if !ok {
		// Missing field resolves to Null in the tree-walker (the VM
		// instead raises RuntimeError — spec.md §4.5/§9).
		return value.NullValue, nil
	}
	return v, nil
}

func (e *Evaluator) VisitSet(ex *ast.SetExpr) (any, error) {
	obj, err := e.Evaluate(ex.Object)
	if err != nil {
		return nil, err
	}
	inst := obj.AsInstance()
	if inst == nil {
		return nil, exprerr.NewRuntimeError("only instances have fields")
	}
	v, err := e.Evaluate(ex.Value)
	if err != nil {
		return nil, err
	}
	// Instance is reference-typed (*value.Instance), so this mutation
	// is observable through any other Value still holding the same
	// pointer, including a copy the environment holds — see
	// DESIGN.md, Open Question 2.
	inst.Set(ex.Name.Lexeme, v)
	return v, nil
}
