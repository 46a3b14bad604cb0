package search

import "math"

// Seeker simulates the vehicle scanning for objects while it flies a
// coverage route. Moving the seeker discounts the probabilities of the
// cells entering its view.
type Seeker struct {
	// Pos is the seeker's current cell.
	Pos Coord
	// FindProb is the chance the seeker spots an object in a cell it
	// views.
	FindProb float64

	cellMap  *CellMap
	viewVecs []Coord
	current  map[Coord]bool
}

// NewSeeker places a seeker on the cell map. viewRadius is how many
// cells away the seeker can see.
func NewSeeker(start Coord, findProb float64, viewRadius int, cellMap *CellMap) *Seeker {
	return &Seeker{
		Pos:      start,
		FindProb: findProb,
		cellMap:  cellMap,
		viewVecs: viewVectors(viewRadius),
		current:  make(map[Coord]bool),
	}
}

// viewVectors returns the displacement vectors within a circle of the
// given radius.
func viewVectors(radius int) []Coord {
	var vecs []Coord
	for i := 0; i <= radius*2; i++ {
		for j := 0; j <= radius*2; j++ {
			if math.Hypot(float64(i-radius), float64(j-radius)) <= float64(radius) {
				vecs = append(vecs, Coord{i - radius, j - radius})
			}
		}
	}
	return vecs
}

// InView returns the valid cells the seeker can currently see.
func (s *Seeker) InView() []*Cell {
	var cells []*Cell
	for _, vec := range s.viewVecs {
		poi := Coord{s.Pos.Row + vec.Row, s.Pos.Col + vec.Col}
		if s.cellMap.InBounds(poi) && s.cellMap.Data[poi.Row][poi.Col].Valid {
			cells = append(cells, &s.cellMap.Data[poi.Row][poi.Col])
		}
	}
	return cells
}

// Move shifts the seeker by the given displacement and reports whether
// the move happened. Moves off the grid or onto invalid cells are
// rejected. A successful move updates the probabilities of the cells
// newly entering the view.
func (s *Seeker) Move(disp Coord) bool {
	next := Coord{s.Pos.Row + disp.Row, s.Pos.Col + disp.Col}
	if !s.cellMap.InBounds(next) || !s.cellMap.Data[next.Row][next.Col].Valid {
		return false
	}

	s.cellMap.UpdateProbabilities(next, s)
	s.Pos = next
	s.refreshView()
	return true
}

// refreshView records which cells are in view from the current
// position, so the next move only updates cells entering the view.
func (s *Seeker) refreshView() {
	s.current = make(map[Coord]bool)
	for _, vec := range s.viewVecs {
		poi := Coord{s.Pos.Row + vec.Row, s.Pos.Col + vec.Col}
		if s.cellMap.InBounds(poi) && s.cellMap.Data[poi.Row][poi.Col].Valid {
			s.current[poi] = true
		}
	}
}
