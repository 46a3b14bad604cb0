package search

import (
	"errors"
	"fmt"
	"sort"
)

// ErrIncompleteCoverage means no route visiting every valid macro cell
// was found before the search ran out of candidates or expansions.
var ErrIncompleteCoverage = errors.New("incomplete coverage")

// defaultMaxExpansions bounds how many candidate routes a coverage
// search may expand. The frontier grows with every expansion, so an
// unbounded search on an awkward grid could run forever.
const defaultMaxExpansions = 100000

// searchMoves are the steps a coverage route may take on the macro
// grid. Only the two main-diagonal moves are allowed.
var searchMoves = []Coord{
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
	{1, 1},
	{-1, -1},
}

// Searcher plans routes that pass through every valid macro cell of a
// compressed search grid.
type Searcher struct {
	Compressed [][]int
	NumValid   int

	// MaxExpansions caps the number of candidate routes examined
	// before the search gives up with ErrIncompleteCoverage.
	MaxExpansions int
}

// NewSearcher compresses the cell map by the vehicle's view radius and
// prepares a coverage search over the result.
func NewSearcher(cellMap *CellMap, viewRadius int) (*Searcher, error) {
	if viewRadius < 1 {
		return nil, fmt.Errorf("view radius must be at least 1, got %d", viewRadius)
	}

	s := &Searcher{
		Compressed:    Compress(viewRadius, cellMap),
		MaxExpansions: defaultMaxExpansions,
	}
	for _, row := range s.Compressed {
		for _, count := range row {
			if count != 0 {
				s.NumValid++
			}
		}
	}
	return s, nil
}

// BreadthSearch finds a short route from start that visits every valid
// macro cell. Candidate routes are explored shortest first; a route
// that dead-ends is extended with an escape path to the nearest
// unvisited cell. The returned route holds grid coordinates in visit
// order, beginning with start.
func (s *Searcher) BreadthSearch(start Coord) ([]Coord, error) {
	if s.NumValid == 0 {
		return nil, fmt.Errorf("%w: compressed grid is empty", ErrNoValidCells)
	}
	if !inGrid(s.Compressed, start) {
		return nil, fmt.Errorf("start %v outside the compressed grid", start)
	}

	budget := s.MaxExpansions
	if budget <= 0 {
		budget = defaultMaxExpansions
	}

	frontier := [][]Coord{{start}}
	for expansions := 0; len(frontier) > 0 && expansions < budget; expansions++ {
		history := frontier[0]
		frontier = frontier[1:]

		if len(history) >= s.NumValid && s.coversAllValid(history) {
			return history, nil
		}

		moves := s.validMoves(history)
		if len(moves) == 0 {
			escape, ok := s.escapeCorner(history[len(history)-1], history)
			if !ok {
				// Nothing unvisited is reachable from here.
				continue
			}
			// Re-enter the frontier at the escaped route's new length
			// so shorter candidates keep their turn.
			extended := make([]Coord, 0, len(history)+len(escape))
			extended = append(extended, history...)
			extended = append(extended, escape...)
			frontier = insertByLength(frontier, extended)
			continue
		}

		for _, move := range moves {
			next := make([]Coord, len(history), len(history)+1)
			copy(next, history)
			next = append(next, move)
			frontier = insertByLength(frontier, next)
		}
	}

	if len(frontier) == 0 {
		return nil, fmt.Errorf("%w: every candidate route dead-ended", ErrIncompleteCoverage)
	}
	return nil, fmt.Errorf("%w: gave up after %d expansions", ErrIncompleteCoverage, budget)
}

// validMoves returns the positions reachable in one step from the end
// of the route that are valid and not yet visited.
func (s *Searcher) validMoves(history []Coord) []Coord {
	pos := history[len(history)-1]
	visited := make(map[Coord]bool, len(history))
	for _, c := range history {
		visited[c] = true
	}

	var moves []Coord
	for _, move := range searchMoves {
		next := Coord{pos.Row + move.Row, pos.Col + move.Col}
		if inGrid(s.Compressed, next) && s.Compressed[next.Row][next.Col] != 0 && !visited[next] {
			moves = append(moves, next)
		}
	}
	return moves
}

// coversAllValid reports whether the route visits every valid macro
// cell.
func (s *Searcher) coversAllValid(history []Coord) bool {
	visited := make(map[Coord]bool, len(history))
	for _, c := range history {
		visited[c] = true
	}
	for i, row := range s.Compressed {
		for j, count := range row {
			if count != 0 && !visited[Coord{i, j}] {
				return false
			}
		}
	}
	return true
}

// unvisitedValid returns every valid macro cell the route has not
// visited yet.
func (s *Searcher) unvisitedValid(history []Coord) []Coord {
	visited := make(map[Coord]bool, len(history))
	for _, c := range history {
		visited[c] = true
	}
	var unseen []Coord
	for i, row := range s.Compressed {
		for j, count := range row {
			if count != 0 && !visited[Coord{i, j}] {
				unseen = append(unseen, Coord{i, j})
			}
		}
	}
	return unseen
}

// escapeCorner routes from a dead-ended position to the nearest
// unvisited valid cell, using only cardinal steps. The returned path
// does not include pos itself.
func (s *Searcher) escapeCorner(pos Coord, history []Coord) ([]Coord, bool) {
	target, ok := nearestByManhattan(s.unvisitedValid(history), pos)
	if !ok {
		return nil, false
	}
	path, ok := gridAStar(s.Compressed, pos, target)
	if !ok {
		return nil, false
	}
	return path[1:], true
}

// nearestByManhattan returns the point closest to from by Manhattan
// distance, scanning in row-major order so ties resolve the same way
// every time.
func nearestByManhattan(points []Coord, from Coord) (Coord, bool) {
	if len(points) == 0 {
		return Coord{}, false
	}
	closest := points[0]
	closestDist := manhattan(points[0], from)
	for _, p := range points[1:] {
		if d := manhattan(p, from); d < closestDist {
			closestDist = d
			closest = p
		}
	}
	return closest, true
}

// insertByLength inserts a route into the frontier keeping it sorted
// by route length, after any routes of equal length.
func insertByLength(frontier [][]Coord, history []Coord) [][]Coord {
	idx := sort.Search(len(frontier), func(i int) bool {
		return len(frontier[i]) > len(history)
	})
	frontier = append(frontier, nil)
	copy(frontier[idx+1:], frontier[idx:])
	frontier[idx] = history
	return frontier
}
