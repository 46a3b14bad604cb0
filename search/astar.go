package search

import (
	"container/heap"
)

// gridNode represents a node in the A* search over a walkability grid
type gridNode struct {
	pos    Coord
	g      float64 // Cost from start to this node
	h      float64 // Heuristic cost from this node to end
	f      float64 // Total cost (G + H)
	parent *gridNode
	index  int // Index in the heap
}

// gridQueue implements heap.Interface for the grid A* search
type gridQueue []*gridNode

func (q gridQueue) Len() int { return len(q) }

func (q gridQueue) Less(i, j int) bool {
	return q[i].f < q[j].f
}

func (q gridQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *gridQueue) Push(x interface{}) {
	n := len(*q)
	node := x.(*gridNode)
	node.index = n
	*q = append(*q, node)
}

func (q *gridQueue) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*q = old[0 : n-1]
	return node
}

// gridMoves are the four cardinal steps used when pathing between
// individual grid cells.
var gridMoves = []Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// gridAStar computes the shortest 4-directional path between two cells
// of a grid, treating nonzero cells as walkable. The returned path
// includes both endpoints. The start cell itself does not need to be
// walkable; the path simply leads out of it.
func gridAStar(grid [][]int, start, end Coord) ([]Coord, bool) {
	if len(grid) == 0 || !inGrid(grid, start) || !inGrid(grid, end) {
		return nil, false
	}
	if grid[end.Row][end.Col] == 0 {
		return nil, false
	}

	openSet := &gridQueue{}
	heap.Init(openSet)

	startNode := &gridNode{
		pos: start,
		h:   manhattan(start, end),
	}
	startNode.f = startNode.h
	heap.Push(openSet, startNode)

	closedSet := make(map[Coord]bool)
	openSetMap := make(map[Coord]*gridNode)
	openSetMap[start] = startNode

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*gridNode)
		delete(openSetMap, current.pos)

		if current.pos == end {
			// Reconstruct path
			var path []Coord
			for node := current; node != nil; node = node.parent {
				path = append(path, node.pos)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}

		closedSet[current.pos] = true

		for _, move := range gridMoves {
			next := Coord{current.pos.Row + move.Row, current.pos.Col + move.Col}
			if !inGrid(grid, next) || grid[next.Row][next.Col] == 0 {
				continue
			}
			if closedSet[next] {
				continue
			}

			tentativeG := current.g + 1

			neighbor, exists := openSetMap[next]
			if !exists {
				neighbor = &gridNode{
					pos:    next,
					g:      tentativeG,
					h:      manhattan(next, end),
					parent: current,
				}
				neighbor.f = neighbor.g + neighbor.h
				heap.Push(openSet, neighbor)
				openSetMap[next] = neighbor
			} else if tentativeG < neighbor.g {
				// Found a better path to this neighbor
				neighbor.g = tentativeG
				neighbor.f = neighbor.g + neighbor.h
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	return nil, false
}

func inGrid(grid [][]int, c Coord) bool {
	return c.Row >= 0 && c.Row < len(grid) && c.Col >= 0 && c.Col < len(grid[c.Row])
}

func manhattan(a, b Coord) float64 {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	return float64(dr + dc)
}
