// Package graph is a generic directed weighted digraph with a
// non-negative-weight single-source shortest-path engine. It has no
// knowledge of stops, routes or buses: the router attaches that meaning via
// the SpanCount/RouteID edge payload.
package graph

// Edge is one directed, weighted connection between two vertices. SpanCount
// and RouteID are domain payload carried on the edge so that answer
// reconstruction never needs a parallel lookup table.
type Edge struct {
	From       int
	To         int
	Weight     float64
	SpanCount  int
	RouteID    int
}

// Graph is a dense-vertex, edge-list directed graph. Vertices are integer
// ids in [0, vertexCount); edges are appended and never removed.
type Graph struct {
	vertexCount int
	edges       []Edge
	incident    [][]int // incident[v] = edge ids whose From == v, in insertion order
}

// New returns an empty graph over vertexCount vertices.
func New(vertexCount int) *Graph {
	return &Graph{
		vertexCount: vertexCount,
		incident:    make([][]int, vertexCount),
	}
}

// VertexCount returns the number of vertices the graph was constructed with.
func (g *Graph) VertexCount() int {
	return g.vertexCount
}

// AddEdge appends a new edge and returns its id, handed out monotonically
// from 0.
func (g *Graph) AddEdge(from, to int, weight float64, spanCount, routeID int) int {
	id := len(g.edges)
	g.edges = append(g.edges, Edge{
		From:      from,
		To:        to,
		Weight:    weight,
		SpanCount: spanCount,
		RouteID:   routeID,
	})
	g.incident[from] = append(g.incident[from], id)
	return id
}

// Edges returns a read-only view of every edge, indexed by edge id.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id int) Edge {
	return g.edges[id]
}

// IncidentEdges returns the ids of edges leaving vertex v, in the order
// they were added.
func (g *Graph) IncidentEdges(v int) []int {
	return g.incident[v]
}
