package analyze

import (
	"sort"

	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/exprerr"
)

// Analyzer builds the dependency digraph over a batch of formulas and,
// when asked, emits them in topologically sorted order.
type Analyzer struct {
	infos    []ExprInfo
	nodeSet  *nodeSet
	graph    *digraph
	needSort bool
}

// New builds an Analyzer over exprs. needSort controls whether
// Analyze performs the Kahn sort or just returns exprs in input order.
func New(exprs []ast.Expr, needSort bool) *Analyzer {
	infos := make([]ExprInfo, len(exprs))
	for i, e := range exprs {
		infos[i] = NewExprInfo(e, i)
	}

	ns := initNodeSet(infos)
	graph := initGraph(ns, infos)

	return &Analyzer{infos: infos, nodeSet: ns, graph: graph, needSort: needSort}
}

// initNodeSet builds a vertex for every write variable (the first
// assignment formula to claim a name becomes its witness) and every
// read variable, scanning assignment formulas in input order
// (spec.md invariant 2).
func initNodeSet(infos []ExprInfo) *nodeSet {
	ns := newNodeSet()
	for i, info := range infos {
		if !info.IsAssign() {
			continue
		}
		for _, w := range sortedNames(info.Writes) {
			ns.addNodeWithInfo(w, i, true)
		}
		for _, r := range sortedNames(info.Reads) {
			ns.addNode(r)
		}
	}
	return ns
}

func sortedNames(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// initGraph adds an edge u->v for every (read, write) pair of every
// assignment formula (spec.md invariant 3).
func initGraph(ns *nodeSet, infos []ExprInfo) *digraph {
	g := newDigraph(ns.size())
	if ns.size() == 0 {
		return g
	}
	for _, info := range infos {
		if !info.IsAssign() {
			continue
		}
		for _, r := range sortedNames(info.Reads) {
			readNode, ok := ns.byNameLookup(r)
			if !ok {
				continue
			}
			for _, w := range sortedNames(info.Writes) {
				writeNode, ok := ns.byNameLookup(w)
				if !ok {
					continue
				}
				g.addEdge(readNode.index, writeNode.index)
			}
		}
	}
	return g
}

// Analyze returns the formulas in execution order: topologically
// sorted if needSort is set and at least one assignment exists,
// otherwise in original input order.
func (a *Analyzer) Analyze() ([]ExprInfo, error) {
	if a.needSort && len(a.infos) > 0 && a.graph.vertexCount > 0 {
		return a.sort()
	}
	return a.infos, nil
}

func (a *Analyzer) sort() ([]ExprInfo, error) {
	order, ok := a.graph.kahnSort()
	if !ok {
		return nil, exprerr.NewAnalyzeError("cycle detected")
	}

	result := make([]ExprInfo, 0, len(a.infos))
	for _, vertexIndex := range order {
		n := a.nodeSet.byIndex(vertexIndex)
		if n.hasInfo {
			result = append(result, a.infos[n.info])
		}
	}
	for _, info := range a.infos {
		if !info.IsAssign() {
			result = append(result, info)
		}
	}
	return result, nil
}
