package analyze

import "github.com/exprflow/exprflow/internal/invariant"

// digraph is a vertex-indexed adjacency list with an in-degree table,
// used only for Kahn topological sort.
type digraph struct {
	vertexCount int
	adj         [][]int
	indegree    []int
}

func newDigraph(vertexCount int) *digraph {
	return &digraph{
		vertexCount: vertexCount,
		adj:         make([][]int, vertexCount),
		indegree:    make([]int, vertexCount),
	}
}

func (g *digraph) validateVertex(v int) {
	invariant.Precondition(v >= 0 && v < g.vertexCount, "vertex %d not in [0, %d)", v, g.vertexCount)
}

func (g *digraph) addEdge(v, w int) {
	g.validateVertex(v)
	g.validateVertex(w)
	g.adj[v] = append(g.adj[v], w)
	g.indegree[w]++
}

// kahnSort runs Kahn's algorithm: a FIFO queue of zero-indegree
// vertices, repeatedly popping and emitting one, decrementing
// successors' indegree and enqueueing any that reach zero. Returns the
// emission order and false if a cycle prevented all vertices from
// being emitted (the stable FIFO enqueue order is the spec's
// tie-break rule, §4.4).
func (g *digraph) kahnSort() ([]int, bool) {
	indegree := make([]int, g.vertexCount)
	copy(indegree, g.indegree)

	queue := make([]int, 0, g.vertexCount)
	for v := 0; v < g.vertexCount; v++ {
		if indegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	order := make([]int, 0, g.vertexCount)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)
		for _, w := range g.adj[u] {
			indegree[w]--
			if indegree[w] == 0 {
				queue = append(queue, w)
			}
		}
	}

	return order, len(order) == g.vertexCount
}
