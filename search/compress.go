package search

// Compress shrinks a cell map into a coarse grid of macro cells with
// side length radius, the vehicle's view radius in cells. Each macro
// cell's value is the number of valid micro cells inside it; a value
// of zero means the macro cell is entirely outside the search area.
// Rows and columns that do not fill a whole macro cell are dropped.
func Compress(radius int, cellMap *CellMap) [][]int {
	rows := len(cellMap.Data) / radius
	cols := len(cellMap.Data[0]) / radius

	grid := make([][]int, rows)
	for i := range grid {
		grid[i] = make([]int, cols)
		for j := range grid[i] {
			grid[i][j] = analyzeCell(i, j, radius, cellMap)
		}
	}
	return grid
}

// analyzeCell counts the valid micro cells inside one macro cell,
// clamping the scanned block to the map edges.
func analyzeCell(row, col, size int, cellMap *CellMap) int {
	rowEnd := min(size*(row+1)-1, len(cellMap.Data)-1)
	colEnd := min(size*(col+1)-1, len(cellMap.Data[0])-1)

	score := 0
	for i := size * row; i <= rowEnd; i++ {
		for j := size * col; j <= colEnd; j++ {
			if cellMap.Data[i][j].Valid {
				score++
			}
		}
	}
	return score
}
