// Package compiler lowers a topologically sorted sequence of formulas
// into a chunk.Chunk: a portable bytecode artifact executable by the
// Stack VM (spec.md §4.6).
package compiler

import (
	"fmt"

	"github.com/exprflow/exprflow/analyze"
	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/builtins"
	"github.com/exprflow/exprflow/chunk"
	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/internal/invariant"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// maxJumpOffset is the largest forward-jump placeholder the compiler
// will ever need to patch; it exists only so Compile can assert the
// resource cap from spec.md §5 ("the compiler's forward-jump
// placeholder must fit in int32") rather than silently truncating.
const maxJumpOffset = int64(1)<<31 - 1

// Compiler lowers expression trees into a chunk.Writer's code stream.
type Compiler struct {
	w        *chunk.Writer
	varNames map[string]struct{}
	builtins *builtins.Registry
}

// New returns a Compiler. registry may be nil, in which case
// builtins.NewRegistry's defaults are used.
func New(registry *builtins.Registry) *Compiler {
	if registry == nil {
		registry = builtins.NewRegistry()
	}
	return &Compiler{
		w:        chunk.NewWriter(),
		varNames: make(map[string]struct{}),
		builtins: registry,
	}
}

// Compile lowers every formula in infos, in order, emitting
// "Begin <index> <bytecode> End" per formula followed by a single
// trailing Exit (spec.md §4.6).
func (c *Compiler) Compile(infos []analyze.ExprInfo) (*chunk.Chunk, error) {
	c.w.Clear()
	c.varNames = make(map[string]struct{})

	for _, info := range infos {
		if err := c.compileOne(info); err != nil {
			return nil, err
		}
	}

	c.w.WriteOp(chunk.OpExit)

	names := make([]string, 0, len(c.varNames))
	for n := range c.varNames {
		names = append(names, n)
	}
	if err := c.w.SetVariables(names); err != nil {
		return nil, err
	}
	return c.w.Flush(), nil
}

func (c *Compiler) compileOne(info analyze.ExprInfo) error {
	c.w.WriteOp(chunk.OpBegin)
	c.w.WriteInt(int32(info.Index))
	if _, err := info.Expr.Accept(c); err != nil {
		return err
	}
	c.w.WriteOp(chunk.OpEnd)
	for name := range info.Reads {
		c.varNames[name] = struct{}{}
	}
	for name := range info.Writes {
		c.varNames[name] = struct{}{}
	}
	return nil
}

func (c *Compiler) emitConstant(v value.Value) (any, error) {
	idx, err := c.w.AddConstant(v)
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(chunk.OpConstant)
	c.w.WriteInt(int32(idx))
	return nil, nil
}

func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.w.WriteOp(op)
	placeholder := c.w.Position()
	c.w.WriteInt(0x3fffffff) // patched by patchJump
	return placeholder
}

func (c *Compiler) patchJump(placeholder int) {
	offset := int64(c.w.Position() - placeholder - 4)
	invariant.Precondition(offset >= 0 && offset <= maxJumpOffset, "jump offset %d out of range", offset)
	c.w.UpdateInt(placeholder, int32(offset))
}

func (c *Compiler) VisitBinary(e *ast.BinaryExpr) (any, error) {
	if _, err := e.Left.Accept(c); err != nil {
		return nil, err
	}
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	op, err := binaryOpCode(e.Operator.Type)
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(op)
	return nil, nil
}

func binaryOpCode(t token.Type) (chunk.OpCode, error) {
	switch t {
	case token.Plus:
		return chunk.OpAdd, nil
	case token.Minus:
		return chunk.OpSubtract, nil
	case token.Star:
		return chunk.OpMultiply, nil
	case token.Slash:
		return chunk.OpDivide, nil
	case token.Percent:
		return chunk.OpMode, nil
	case token.StarStar:
		return chunk.OpPower, nil
	case token.Greater:
		return chunk.OpGreater, nil
	case token.GreaterEqual:
		return chunk.OpGreaterEqual, nil
	case token.Less:
		return chunk.OpLess, nil
	case token.LessEqual:
		return chunk.OpLessEqual, nil
	case token.EqualEqual:
		return chunk.OpEqualEqual, nil
	case token.BangEqual:
		return chunk.OpBangEqual, nil
	default:
		return 0, exprerr.NewCompileError(fmt.Sprintf("unknown binary operator: %s", t))
	}
}

func (c *Compiler) VisitLogic(e *ast.LogicExpr) (any, error) {
	if _, err := e.Left.Accept(c); err != nil {
		return nil, err
	}
	if e.Operator.Type == token.AmpAmp {
		j := c.emitJump(chunk.OpJumpIfFalse)
		c.w.WriteOp(chunk.OpPop)
		if _, err := e.Right.Accept(c); err != nil {
			return nil, err
		}
		c.patchJump(j)
		return nil, nil
	}
	j1 := c.emitJump(chunk.OpJumpIfFalse)
	j2 := c.emitJump(chunk.OpJump)
	c.patchJump(j1)
	c.w.WriteOp(chunk.OpPop)
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	c.patchJump(j2)
	return nil, nil
}

func (c *Compiler) VisitLiteral(e *ast.LiteralExpr) (any, error) {
	switch {
	case e.Value.IsNull():
		c.w.WriteOp(chunk.OpNull)
		return nil, nil
	case e.Value.IsBoolean():
		if e.Value.AsBool() {
			c.w.WriteOp(chunk.OpTrue)
		} else {
			c.w.WriteOp(chunk.OpFalse)
		}
		return nil, nil
	default:
		return c.emitConstant(e.Value)
	}
}

func (c *Compiler) VisitUnary(e *ast.UnaryExpr) (any, error) {
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.Bang:
		c.w.WriteOp(chunk.OpNot)
	case token.Minus:
		c.w.WriteOp(chunk.OpNegate)
	default:
		return nil, exprerr.NewCompileError(fmt.Sprintf("unsupported unary operator: %s", e.Operator.Type))
	}
	return nil, nil
}

func (c *Compiler) VisitId(e *ast.IdExpr) (any, error) {
	idx, err := c.w.AddConstant(value.NewString(e.Name.Lexeme))
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(chunk.OpGetGlobal)
	c.w.WriteInt(int32(idx))
	return nil, nil
}

func (c *Compiler) VisitAssign(e *ast.AssignExpr) (any, error) {
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	id, ok := e.Left.(*ast.IdExpr)
	if !ok {
		return nil, exprerr.NewCompileError("assignment target must be an identifier")
	}
	idx, err := c.w.AddConstant(value.NewString(id.Name.Lexeme))
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(chunk.OpSetGlobal)
	c.w.WriteInt(int32(idx))
	return nil, nil
}

func (c *Compiler) VisitCall(e *ast.CallExpr) (any, error) {
	id, ok := e.Callee.(*ast.IdExpr)
	if !ok {
		return nil, exprerr.NewCompileError("callee must be a function name")
	}
	fn, ok := c.builtins.Get(id.Name.Lexeme)
	if !ok {
		return nil, exprerr.NewCompileError("undefined function: " + id.Name.Lexeme)
	}
	if fn.Arity() != len(e.Arguments) {
		return nil, exprerr.NewCompileError(fmt.Sprintf(
			"expected %d arguments but got %d for function %s", fn.Arity(), len(e.Arguments), id.Name.Lexeme))
	}
	for _, arg := range e.Arguments {
		if _, err := arg.Accept(c); err != nil {
			return nil, err
		}
	}
	idx, err := c.w.AddConstant(value.NewString(id.Name.Lexeme))
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(chunk.OpCall)
	c.w.WriteInt(int32(idx))
	return nil, nil
}

func (c *Compiler) VisitIf(e *ast.IfExpr) (any, error) {
	if _, err := e.Condition.Accept(c); err != nil {
		return nil, err
	}
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	c.w.WriteOp(chunk.OpPop)
	if _, err := e.ThenBranch.Accept(c); err != nil {
		return nil, err
	}
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.w.WriteOp(chunk.OpPop)
	if e.ElseBranch != nil {
		if _, err := e.ElseBranch.Accept(c); err != nil {
			return nil, err
		}
	} else {
		c.w.WriteOp(chunk.OpNull)
	}
	c.patchJump(endJump)
	return nil, nil
}

func (c *Compiler) VisitGet(e *ast.GetExpr) (any, error) {
	if _, err := e.Object.Accept(c); err != nil {
		return nil, err
	}
	idx, err := c.w.AddConstant(value.NewString(e.Name.Lexeme))
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(chunk.OpGetProperty)
	c.w.WriteInt(int32(idx))
	return nil, nil
}

func (c *Compiler) VisitSet(e *ast.SetExpr) (any, error) {
	if _, err := e.Value.Accept(c); err != nil {
		return nil, err
	}
	if _, err := e.Object.Accept(c); err != nil {
		return nil, err
	}
	idx, err := c.w.AddConstant(value.NewString(e.Name.Lexeme))
	if err != nil {
		return nil, err
	}
	c.w.WriteOp(chunk.OpSetProperty)
	c.w.WriteInt(int32(idx))
	return nil, nil
}
