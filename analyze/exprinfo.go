// Package analyze builds the dependency digraph over a batch of
// formulas and topologically sorts them so that every variable is
// written before it is read (spec.md §4.4).
package analyze

import (
	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/vars"
)

// ExprInfo pairs one formula with its original input index and its
// pre-computed read/write variable sets.
type ExprInfo struct {
	Expr   ast.Expr
	Index  int
	Reads  map[string]struct{}
	Writes map[string]struct{}
}

// NewExprInfo computes Reads/Writes for expr via vars.Query.
func NewExprInfo(expr ast.Expr, index int) ExprInfo {
	set := vars.NewQuery().Of(expr)
	return ExprInfo{Expr: expr, Index: index, Reads: set.Depends, Writes: set.Assigns}
}

// IsAssign reports whether this formula's top-level form is an Assign
// or Set (an "assignment formula" in the spec's glossary).
func (info ExprInfo) IsAssign() bool {
	switch info.Expr.(type) {
	case *ast.AssignExpr, *ast.SetExpr:
		return true
	default:
		return false
	}
}
