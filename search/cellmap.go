package search

import (
	"errors"
	"strings"

	"mission-planner/waypoint"
)

// ErrNoValidCells means segmentation produced no cells inside the
// search area, so there is nothing to plan coverage over.
var ErrNoValidCells = errors.New("no valid cells in search area")

// Coord addresses a cell by row and column.
type Coord struct {
	Row, Col int
}

// Cell is one square of the segmented search area.
type Cell struct {
	// Probability that this cell still holds an undiscovered object.
	Probability float64
	// Seen reports whether the vehicle has observed the cell.
	Seen bool
	// Pos is the cell center. Zero for invalid cells.
	Pos waypoint.Point
	// Valid is false for grid cells outside the search area.
	Valid bool
}

// CellMap is the segmented search area: a dense grid of cells, each
// valid cell carrying the probability of finding an object there.
type CellMap struct {
	Data     [][]Cell
	NumValid int
	Bounds   Bounds
}

// NewCellMap builds a cell map from a segmented grid. Each valid cell
// starts with probability odlcCount / number of valid cells.
func NewCellMap(points [][]GridPoint, odlcCount int) (*CellMap, error) {
	numValid := 0
	for _, row := range points {
		for _, p := range row {
			if p.Valid {
				numValid++
			}
		}
	}
	if numValid == 0 {
		return nil, ErrNoValidCells
	}

	probability := float64(odlcCount) / float64(numValid)
	data := make([][]Cell, 0, len(points))
	var positions []waypoint.Point
	for _, row := range points {
		cells := make([]Cell, 0, len(row))
		for _, p := range row {
			if p.Valid {
				cells = append(cells, Cell{
					Probability: probability,
					Pos:         p.Pos,
					Valid:       true,
				})
				positions = append(positions, p.Pos)
			} else {
				cells = append(cells, Cell{})
			}
		}
		data = append(data, cells)
	}

	return &CellMap{
		Data:     data,
		NumValid: numValid,
		Bounds:   boundsOf(positions),
	}, nil
}

// InBounds reports whether a coordinate addresses a cell in the grid.
func (m *CellMap) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < len(m.Data) &&
		c.Col >= 0 && c.Col < len(m.Data[c.Row])
}

// Display renders the map as text, one row per line, with valid cells
// marked X.
func (m *CellMap) Display() string {
	var b strings.Builder
	for i, row := range m.Data {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			if cell.Valid {
				b.WriteByte('X')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// UpdateProbabilities records that the seeker observed the cells in
// view from pos. Each valid cell newly in view keeps its probability
// scaled by the chance the seeker missed the object, and is marked
// seen. Cells that were already in view at the seeker's previous
// position are left alone.
func (m *CellMap) UpdateProbabilities(pos Coord, seeker *Seeker) {
	for _, vec := range seeker.viewVecs {
		poi := Coord{pos.Row + vec.Row, pos.Col + vec.Col}
		if !m.InBounds(poi) || seeker.current[poi] {
			continue
		}
		cell := &m.Data[poi.Row][poi.Col]
		if !cell.Valid {
			continue
		}
		cell.Probability *= 1 - seeker.FindProb
		cell.Seen = true
	}
}
