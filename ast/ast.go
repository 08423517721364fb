// Package ast defines the expression tree produced by the parser:
// a closed interface implemented by ten concrete node types, dispatched
// through a generic Visitor.
package ast

import (
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// Expr is any expression tree node. Accept performs double dispatch
// into a Visitor, the same role as the Rust original's accept/Visitor
// trait pair.
type Expr interface {
	Accept(v Visitor) (any, error)
}

// Visitor receives one method call per concrete Expr kind. Callers
// that want a typed result (Value, VariableSet, ...) type-assert the
// any returned by Accept; this mirrors the original's generic
// Visitor<R> without needing Go generics on the interface itself,
// since a single tree is walked by evaluator, compiler and VarsQuery
// visitors that each return a different R.
type Visitor interface {
	VisitBinary(e *BinaryExpr) (any, error)
	VisitLogic(e *LogicExpr) (any, error)
	VisitLiteral(e *LiteralExpr) (any, error)
	VisitUnary(e *UnaryExpr) (any, error)
	VisitId(e *IdExpr) (any, error)
	VisitAssign(e *AssignExpr) (any, error)
	VisitCall(e *CallExpr) (any, error)
	VisitIf(e *IfExpr) (any, error)
	VisitGet(e *GetExpr) (any, error)
	VisitSet(e *SetExpr) (any, error)
}

// BinaryExpr is `left operator right` for +, -, *, /, %, **, ==, !=,
// <, <=, >, >=.
type BinaryExpr struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (e *BinaryExpr) Accept(v Visitor) (any, error) { return v.VisitBinary(e) }

// LogicExpr is `left operator right` for && and ||, kept distinct
// from BinaryExpr since both backends must short-circuit it.
type LogicExpr struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (e *LogicExpr) Accept(v Visitor) (any, error) { return v.VisitLogic(e) }

// LiteralExpr carries a constant Value produced by the parser from a
// Number, String, True, False, or Null token.
type LiteralExpr struct {
	Value value.Value
}

func (e *LiteralExpr) Accept(v Visitor) (any, error) { return v.VisitLiteral(e) }

// UnaryExpr is `operator right` for - and !.
type UnaryExpr struct {
	Operator token.Token
	Right    Expr
}

func (e *UnaryExpr) Accept(v Visitor) (any, error) { return v.VisitUnary(e) }

// IdExpr reads a variable by name.
type IdExpr struct {
	Name token.Token
}

func (e *IdExpr) Accept(v Visitor) (any, error) { return v.VisitId(e) }

// AssignExpr is `left = right`. Left must be an *IdExpr. The parser
// rewrites a Get left-hand side into a SetExpr but builds an AssignExpr
// for any other left-hand side; a non-Id Left is rejected later, as a
// RuntimeError by the evaluator and a CompileError by the compiler.
type AssignExpr struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (e *AssignExpr) Accept(v Visitor) (any, error) { return v.VisitAssign(e) }

// CallExpr invokes a built-in function by name (the callee, always an
// *IdExpr in this grammar) with a fixed argument list.
type CallExpr struct {
	Callee    Expr
	Arguments []Expr
	RParen    token.Token
}

func (e *CallExpr) Accept(v Visitor) (any, error) { return v.VisitCall(e) }

// IfExpr is always the three-argument ternary form `if(cond, then,
// else)`; ElseBranch is nil only when the grammar allowed omitting it,
// which §4.2 does not, but the field stays optional to match the
// original's Option<Box<Expr>> shape.
type IfExpr struct {
	Condition  Expr
	ThenBranch Expr
	ElseBranch Expr
}

func (e *IfExpr) Accept(v Visitor) (any, error) { return v.VisitIf(e) }

// GetExpr reads Object.Name, where Object must evaluate to an Instance.
type GetExpr struct {
	Object Expr
	Name   token.Token
}

func (e *GetExpr) Accept(v Visitor) (any, error) { return v.VisitGet(e) }

// SetExpr assigns Object.Name = Value, where Object must evaluate to
// an Instance.
type SetExpr struct {
	Object Expr
	Name   token.Token
	Value  Expr
}

func (e *SetExpr) Accept(v Visitor) (any, error) { return v.VisitSet(e) }
