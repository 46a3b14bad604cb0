package search

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
)

// cellEntry wraps a valid micro cell coordinate for R-tree storage
type cellEntry struct {
	coord Coord
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (c *cellEntry) Bounds() rtreego.Rect {
	return c.rect
}

// Decompressor expands macro-grid routes back to the full resolution
// of the cell map.
type Decompressor struct {
	cellMap *CellMap
	size    int
	grid    [][]int
	index   *rtreego.Rtree
}

// NewDecompressor prepares route decompression for a cell map that was
// compressed with macro cells of side cellSize. Valid micro cells are
// indexed in an R-tree so off-center macro cells can snap to their
// nearest valid neighbor.
func NewDecompressor(cellMap *CellMap, cellSize int) *Decompressor {
	grid := make([][]int, len(cellMap.Data))
	tree := rtreego.NewTree(2, 25, 50)

	for i, row := range cellMap.Data {
		grid[i] = make([]int, len(row))
		for j, cell := range row {
			if !cell.Valid {
				continue
			}
			grid[i][j] = 1
			tree.Insert(&cellEntry{
				coord: Coord{i, j},
				rect:  rtreego.Point{float64(i), float64(j)}.ToRect(0.5),
			})
		}
	}

	return &Decompressor{
		cellMap: cellMap,
		size:    cellSize,
		grid:    grid,
		index:   tree,
	}
}

// DecompressRoute maps each step of a macro route to a micro cell and
// splices consecutive steps with shortest paths over the valid cells.
// Junction cells are not repeated and the route's final cell is kept.
func (d *Decompressor) DecompressRoute(route []Coord) ([]Coord, error) {
	expanded := make([]Coord, len(route))
	for i, c := range route {
		expanded[i] = d.decompressPoint(c)
	}
	if len(expanded) <= 1 {
		return expanded, nil
	}

	var path []Coord
	for i := 0; i < len(expanded)-1; i++ {
		leg, ok := gridAStar(d.grid, expanded[i], expanded[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: no route between cells %v and %v",
				ErrIncompleteCoverage, expanded[i], expanded[i+1])
		}
		if i == 0 {
			path = append(path, leg...)
		} else {
			// The junction cell already ended the previous leg.
			path = append(path, leg[1:]...)
		}
	}
	return path, nil
}

// decompressPoint returns the center micro cell of a macro cell, or
// the nearest valid micro cell when the center is not valid.
func (d *Decompressor) decompressPoint(c Coord) Coord {
	center := Coord{
		Row: c.Row*d.size + d.size/2,
		Col: c.Col*d.size + d.size/2,
	}
	if d.cellMap.InBounds(center) && d.cellMap.Data[center.Row][center.Col].Valid {
		return center
	}

	nearest := d.index.NearestNeighbor(rtreego.Point{float64(center.Row), float64(center.Col)})
	return nearest.(*cellEntry).coord
}
