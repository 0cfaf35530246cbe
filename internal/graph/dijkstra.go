package graph

import "container/heap"

// ErrNoPath is returned by Router.Route when the destination is unreachable
// from the source over non-negative edge weights.
var ErrNoPath = noPathError{}

type noPathError struct{}

func (noPathError) Error() string { return "no path" }

// PathResult is the answer to a single-source, single-destination shortest
// path query: the accumulated weight and the ordered list of edge ids
// traversed.
type PathResult struct {
	TotalWeight float64
	EdgeIDs     []int
}

// Router answers route(from, to) queries against a fixed graph using
// Dijkstra's algorithm run fresh per query, exactly as cheap as the spec's
// O(V*(V+E)*log V) budget allows since each query only needs one source.
// Edge weights must be non-negative; behavior is undefined otherwise.
type Router struct {
	g *Graph
}

// NewRouter builds the shortest-path engine over g. Graph g must not be
// mutated afterwards.
func NewRouter(g *Graph) *Router {
	return &Router{g: g}
}

// Route returns the minimum-weight path from "from" to "to", or ErrNoPath
// if "to" is unreachable. If from == to, the result is the zero-weight,
// zero-edge path (callers implementing "stay here" semantics should
// special-case from == to before calling Route, per spec.md's StayHere
// contract, since Route alone cannot distinguish "trivial path" from "asked
// to stay").
func (r *Router) Route(from, to int) (PathResult, error) {
	n := r.g.VertexCount()
	const inf = 1<<63 - 1

	dist := make([]float64, n)
	viaEdge := make([]int, n)
	prevVertex := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = float64(inf)
		viaEdge[i] = -1
		prevVertex[i] = -1
	}
	dist[from] = 0

	pq := &pathQueue{}
	heap.Init(pq)
	heap.Push(pq, &pathQueueItem{vertex: from, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pathQueueItem)
		v := item.vertex
		if visited[v] {
			continue
		}
		if item.dist > dist[v] {
			continue
		}
		visited[v] = true
		if v == to {
			break
		}

		for _, edgeID := range r.g.IncidentEdges(v) {
			e := r.g.edges[edgeID]
			if visited[e.To] {
				continue
			}
			cand := dist[v] + e.Weight
			if cand < dist[e.To] {
				dist[e.To] = cand
				viaEdge[e.To] = edgeID
				prevVertex[e.To] = v
				heap.Push(pq, &pathQueueItem{vertex: e.To, dist: cand})
			}
		}
	}

	if !visited[to] {
		return PathResult{}, ErrNoPath
	}

	var edgeIDs []int
	for v := to; v != from; {
		edgeIDs = append([]int{viaEdge[v]}, edgeIDs...)
		v = prevVertex[v]
	}

	return PathResult{TotalWeight: dist[to], EdgeIDs: edgeIDs}, nil
}

type pathQueueItem struct {
	vertex int
	dist   float64
}

type pathQueue []*pathQueueItem

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool   { return q[i].dist < q[j].dist }
func (q pathQueue) Swap(i, j int)        { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(*pathQueueItem)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}
