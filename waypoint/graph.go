package waypoint

// Graph is a weighted undirected graph over points, used for
// line-of-sight pathfinding. Nodes live in an arena indexed by
// insertion order; a node's identity is its index, so nodes with
// equal coordinates remain distinct.
type Graph struct {
	Nodes []Point
	Edges map[int][]Edge
}

// Edge represents a connection between two nodes with a cost
type Edge struct {
	To   int     // Index of the destination node
	Cost float64 // Euclidean distance
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Edges: make(map[int][]Edge)}
}

// AddNode places a point in the arena and returns its index.
func (g *Graph) AddNode(p Point) int {
	g.Nodes = append(g.Nodes, p)
	return len(g.Nodes) - 1
}

// Connect adds a bidirectional edge between nodes i and j.
func (g *Graph) Connect(i, j int, cost float64) {
	g.Edges[i] = append(g.Edges[i], Edge{To: j, Cost: cost})
	g.Edges[j] = append(g.Edges[j], Edge{To: i, Cost: cost})
}

// Disconnect removes the edge between nodes i and j in both directions
// and reports whether an edge existed.
func (g *Graph) Disconnect(i, j int) bool {
	removed := g.removeDirected(i, j)
	g.removeDirected(j, i)
	return removed
}

// Connected reports whether nodes i and j share an edge.
func (g *Graph) Connected(i, j int) bool {
	_, ok := g.Cost(i, j)
	return ok
}

// Cost returns the cost of the edge from node i to node j, if one
// exists.
func (g *Graph) Cost(i, j int) (float64, bool) {
	for _, edge := range g.Edges[i] {
		if edge.To == j {
			return edge.Cost, true
		}
	}
	return 0, false
}

func (g *Graph) removeDirected(from, to int) bool {
	edges := g.Edges[from]
	for i, edge := range edges {
		if edge.To == to {
			g.Edges[from] = append(edges[:i], edges[i+1:]...)
			return true
		}
	}
	return false
}
