// Package vars walks an expression tree and collects the variable
// names it reads ("depends") and writes ("assigns").
package vars

import (
	"sort"
	"strings"

	"github.com/exprflow/exprflow/ast"
)

// Set is the read/write variable footprint of one expression.
// Assigns holds every variable the expression writes (dotted paths for
// Set); Depends holds every variable it reads for value.
type Set struct {
	Assigns map[string]struct{}
	Depends map[string]struct{}
}

// newSet returns an empty Set.
func newSet() Set {
	return Set{Assigns: make(map[string]struct{}), Depends: make(map[string]struct{})}
}

func (s *Set) addAssign(name string) { s.Assigns[name] = struct{}{} }
func (s *Set) addDepend(name string) { s.Depends[name] = struct{}{} }

// combine merges other into s.
func (s *Set) combine(other Set) {
	for n := range other.Assigns {
		s.Assigns[n] = struct{}{}
	}
	for n := range other.Depends {
		s.Depends[n] = struct{}{}
	}
}

// String renders "<sorted-assigns-csv> = <sorted-depends-csv>",
// omitting the " = " when there are no assigns. Part of the testable
// contract (spec.md §4.3).
func (s Set) String() string {
	assignArr := sortedKeys(s.Assigns)
	dependArr := sortedKeys(s.Depends)
	var b strings.Builder
	b.WriteString(strings.Join(assignArr, ","))
	if len(assignArr) > 0 {
		b.WriteString(" = ")
	}
	b.WriteString(strings.Join(dependArr, ","))
	return b.String()
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Query walks expression trees and produces their Set. It implements
// ast.Visitor so it can ride the same double-dispatch as the
// evaluator and compiler.
type Query struct{}

// NewQuery returns a Query.
func NewQuery() *Query { return &Query{} }

// Of returns the variable footprint of expr.
func (q *Query) Of(expr ast.Expr) Set {
	result, _ := expr.Accept(q)
	return result.(Set)
}

func (q *Query) VisitBinary(e *ast.BinaryExpr) (any, error) {
	result := q.Of(e.Left)
	result.combine(q.Of(e.Right))
	return result, nil
}

func (q *Query) VisitLogic(e *ast.LogicExpr) (any, error) {
	result := q.Of(e.Left)
	result.combine(q.Of(e.Right))
	return result, nil
}

func (q *Query) VisitLiteral(e *ast.LiteralExpr) (any, error) {
	return newSet(), nil
}

func (q *Query) VisitUnary(e *ast.UnaryExpr) (any, error) {
	return q.Of(e.Right), nil
}

func (q *Query) VisitId(e *ast.IdExpr) (any, error) {
	result := newSet()
	result.addDepend(e.Name.Lexeme)
	return result, nil
}

func (q *Query) VisitAssign(e *ast.AssignExpr) (any, error) {
	result := newSet()
	if id, ok := e.Left.(*ast.IdExpr); ok {
		result.addAssign(id.Name.Lexeme)
	}
	result.combine(q.Of(e.Right))
	return result, nil
}

func (q *Query) VisitCall(e *ast.CallExpr) (any, error) {
	result := newSet()
	for _, arg := range e.Arguments {
		result.combine(q.Of(arg))
	}
	return result, nil
}

func (q *Query) VisitIf(e *ast.IfExpr) (any, error) {
	result := newSet()
	result.combine(q.Of(e.Condition))
	result.combine(q.Of(e.ThenBranch))
	if e.ElseBranch != nil {
		result.combine(q.Of(e.ElseBranch))
	}
	return result, nil
}

func (q *Query) VisitGet(e *ast.GetExpr) (any, error) {
	result := newSet()
	result.addDepend(dottedPath(e.Object, e.Name.Lexeme))
	return result, nil
}

func (q *Query) VisitSet(e *ast.SetExpr) (any, error) {
	result := newSet()
	result.addAssign(dottedPath(e.Object, e.Name.Lexeme))
	result.combine(q.Of(e.Value))
	return result, nil
}

// dottedPath walks a chain of nested Get/Id nodes rooted at object and
// joins it with name, producing e.g. "C.D.h" for `C.D.h`.
func dottedPath(object ast.Expr, name string) string {
	var names []string
	collectPath(object, &names)
	names = append(names, name)
	return strings.Join(names, ".")
}

func collectPath(expr ast.Expr, names *[]string) {
	switch e := expr.(type) {
	case *ast.IdExpr:
		*names = append(*names, e.Name.Lexeme)
	case *ast.GetExpr:
		collectPath(e.Object, names)
		*names = append(*names, e.Name.Lexeme)
	}
}
