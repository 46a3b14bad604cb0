package waypoint

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

// ErrNoPathFound means the search exhausted every reachable node
// without reaching the destination. With a well-formed boundary this
// should never happen.
var ErrNoPathFound = errors.New("no path found")

// ErrDegenerateBoundary means a boundary polygon has fewer than three
// vertices or repeats a vertex consecutively.
var ErrDegenerateBoundary = errors.New("degenerate boundary")

// losShrink is how far, in coordinate units, line-of-sight probes are
// pulled in from their endpoints. Without the pullback a segment that
// merely starts or ends on a boundary vertex would read as a crossing.
const losShrink = 1e-3

// startSentinel marks search entries seeded directly from the start
// point rather than arrived at from a graph node.
const startSentinel = -1

// BoundaryGraph is a pathfinding graph over the vertices of a flight
// boundary polygon, with the vertices moved inward by a safety margin
// and every pair with line-of-sight connected.
type BoundaryGraph struct {
	graph    *Graph
	segments []LineSegment
}

// NewBoundaryGraph builds the pathfinding graph for a boundary polygon.
// The vertices must be in order, but it does not matter whether they
// run clockwise or counterclockwise. Each vertex is moved inward by
// safetyMargin, measured perpendicular to the adjacent edges, so that
// planned paths keep that distance from the true boundary.
func NewBoundaryGraph(boundary []Point, safetyMargin float64) (*BoundaryGraph, error) {
	if len(boundary) < 3 {
		return nil, fmt.Errorf("%w: %d vertices", ErrDegenerateBoundary, len(boundary))
	}
	for i := range boundary {
		if boundary[i] == boundary[(i+1)%len(boundary)] {
			return nil, fmt.Errorf("%w: repeated vertex at index %d", ErrDegenerateBoundary, i)
		}
	}

	inset := insetBoundary(boundary, safetyMargin)

	graph := NewGraph()
	for _, vertex := range inset {
		graph.AddNode(vertex)
	}

	bg := &BoundaryGraph{
		graph:    graph,
		segments: ClosedSegments(inset),
	}

	// Connect every vertex pair that a straight flight can join.
	// Adjacent vertices are always connected: their straight path is a
	// boundary segment itself.
	n := len(inset)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			adjacent := j == i+1 || (i == 0 && j == n-1)
			straight := LineSegment{inset[i], inset[j]}
			if adjacent || (straight.Midpoint().InsideShape(inset) && bg.hasLineOfSight(inset[i], inset[j])) {
				graph.Connect(i, j, straight.Length())
			}
		}
	}

	return bg, nil
}

// Vertices returns the inset boundary vertices backing the graph, in
// boundary order.
func (bg *BoundaryGraph) Vertices() []Point {
	return bg.graph.Nodes
}

// ShortestPathBetween finds the shortest path from src to dst that
// stays within the boundary. The returned path contains the points to
// fly to in order, ending with dst; src itself is not included. If dst
// can be reached directly the path is just [dst].
//
// Searches share no state: repeated calls with the same arguments
// return the same path, and the graph is never mutated.
func (bg *BoundaryGraph) ShortestPathBetween(src, dst Point) ([]Point, error) {
	if !bg.intersectsBoundary(LineSegment{src, dst}) {
		return []Point{dst}, nil
	}

	// A* over the boundary vertices plus a virtual goal node. Edges to
	// the goal live in a per-call overlay so the shared graph stays
	// untouched.
	goalID := len(bg.graph.Nodes)
	goalEdges := make(map[int]float64)
	for i, vertex := range bg.graph.Nodes {
		if bg.hasLineOfSight(vertex, dst) {
			goalEdges[i] = vertex.Distance(dst)
		}
	}

	var queue searchQueue
	seq := 0
	for i, vertex := range bg.graph.Nodes {
		if !bg.hasLineOfSight(src, vertex) {
			continue
		}
		distance := src.Distance(vertex)
		queue = append(queue, searchNode{
			priority: distance + vertex.Distance(dst),
			traveled: distance,
			visitor:  startSentinel,
			node:     i,
			seq:      seq,
		})
		seq++
	}
	heap.Init(&queue)

	// visitedBy maps each finalized node to the node it was reached
	// from. Fresh per call, so stale results from earlier searches
	// cannot leak in.
	visitedBy := make(map[int]int)

	for queue.Len() > 0 {
		current := heap.Pop(&queue).(searchNode)
		if _, done := visitedBy[current.node]; done {
			continue
		}
		visitedBy[current.node] = current.visitor

		if current.node == goalID {
			return bg.collectPath(visitedBy, goalID, dst), nil
		}

		for _, edge := range bg.graph.Edges[current.node] {
			if _, done := visitedBy[edge.To]; done {
				continue
			}
			traveled := current.traveled + edge.Cost
			heap.Push(&queue, searchNode{
				priority: traveled + bg.graph.Nodes[edge.To].Distance(dst),
				traveled: traveled,
				visitor:  current.node,
				node:     edge.To,
				seq:      seq,
			})
			seq++
		}

		if cost, ok := goalEdges[current.node]; ok {
			traveled := current.traveled + cost
			heap.Push(&queue, searchNode{
				priority: traveled,
				traveled: traveled,
				visitor:  current.node,
				node:     goalID,
				seq:      seq,
			})
			seq++
		}
	}

	return nil, fmt.Errorf("%w: (%g, %g) to (%g, %g)", ErrNoPathFound, src.X, src.Y, dst.X, dst.Y)
}

// collectPath walks the visitor chain back from the goal and returns
// the path in travel order.
func (bg *BoundaryGraph) collectPath(visitedBy map[int]int, goalID int, dst Point) []Point {
	var path []Point
	for node := goalID; node != startSentinel; node = visitedBy[node] {
		if node == goalID {
			path = append(path, dst)
		} else {
			path = append(path, bg.graph.Nodes[node])
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// intersectsBoundary reports whether the segment crosses or touches
// any boundary segment.
func (bg *BoundaryGraph) intersectsBoundary(segment LineSegment) bool {
	for _, boundarySegment := range bg.segments {
		if segment.Intersects(boundarySegment) {
			return true
		}
	}
	return false
}

// hasLineOfSight reports whether the straight segment between two
// points, pulled in slightly at both ends, crosses no boundary
// segment. The pullback lets segments start and end on boundary
// vertices without reading as crossings.
func (bg *BoundaryGraph) hasLineOfSight(from, to Point) bool {
	direction := to.Sub(from)
	norm := direction.Norm()
	if norm == 0 {
		return true
	}
	direction = direction.Div(norm)

	shrunk := LineSegment{
		from.Add(direction.Mul(losShrink)),
		to.Sub(direction.Mul(losShrink)),
	}
	return !bg.intersectsBoundary(shrunk)
}

// insetBoundary moves each vertex of a polygon inward. The movement
// direction bisects the adjacent edges, flipped if a probe just off
// the vertex lands outside the polygon, and is scaled so the distance
// moved perpendicular to the adjacent edges equals margin.
func insetBoundary(points []Point, margin float64) []Point {
	n := len(points)
	moved := make([]Point, 0, n)
	for i, point := range points {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]

		vec1 := prev.Sub(point)
		vec1 = vec1.Div(vec1.Norm())
		vec2 := next.Sub(point)
		vec2 = vec2.Div(vec2.Norm())

		perp := Point{-vec1.Y, vec1.X}

		inward := vec1.Add(vec2)
		if inward.Norm() < 1e-3 {
			// The adjacent edges are nearly straight, so the bisector
			// vanishes; fall back to the perpendicular.
			inward = perp
		}
		inward = inward.Div(inward.Norm())

		if !point.Add(inward.Mul(1e-3)).InsideShape(points) {
			inward = inward.Mul(-1)
		}

		// Normalize by the component along the edge perpendicular so
		// the inset is margin deep measured from the edges, not along
		// the bisector.
		inward = inward.Div(math.Abs(inward.Dot(perp)) / perp.Norm())

		moved = append(moved, point.Add(inward.Mul(margin)))
	}
	return moved
}

// searchNode is an entry in the pathfinding frontier. Entries are
// never updated in place: a better route to a node pushes a duplicate
// entry, and stale entries are skipped once the node is finalized.
type searchNode struct {
	priority float64 // traveled plus straight-line distance to goal
	traveled float64 // distance traveled from the start
	visitor  int     // node this entry arrives from, or startSentinel
	node     int
	seq      int // insertion order, breaks priority ties
}

// searchQueue implements heap.Interface for the pathfinding frontier.
type searchQueue []searchNode

func (q searchQueue) Len() int { return len(q) }

func (q searchQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *searchQueue) Push(x interface{}) {
	*q = append(*q, x.(searchNode))
}

func (q *searchQueue) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	*q = old[0 : n-1]
	return node
}
