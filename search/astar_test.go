package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertContiguous checks that a path moves one cardinal step at a
// time.
func assertContiguous(t *testing.T, path []Coord) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		dr := path[i].Row - path[i-1].Row
		dc := path[i].Col - path[i-1].Col
		assert.Equal(t, 1, dr*dr+dc*dc, "step %d: %v to %v is not cardinal", i, path[i-1], path[i])
	}
}

func TestGridAStarStraightLine(t *testing.T) {
	grid := [][]int{{1, 1, 1, 1, 1}}

	path, ok := gridAStar(grid, Coord{0, 0}, Coord{0, 4})
	require.True(t, ok)
	assert.Equal(t, []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}, path)
}

func TestGridAStarAroundObstacle(t *testing.T) {
	grid := [][]int{
		{1, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	}

	start := Coord{1, 0}
	end := Coord{1, 2}
	path, ok := gridAStar(grid, start, end)
	require.True(t, ok)

	// The blocked center forces a detour of four steps.
	assert.Len(t, path, 5)
	assert.Equal(t, start, path[0])
	assert.Equal(t, end, path[len(path)-1])
	assert.NotContains(t, path, Coord{1, 1})
	assertContiguous(t, path)
}

func TestGridAStarNoPath(t *testing.T) {
	grid := [][]int{{1, 1, 0, 1, 1}}

	_, ok := gridAStar(grid, Coord{0, 0}, Coord{0, 4})
	assert.False(t, ok)
}

func TestGridAStarEndpoints(t *testing.T) {
	grid := [][]int{{0, 1, 1}}

	// An unwalkable start is allowed; the path just leads out of it.
	path, ok := gridAStar(grid, Coord{0, 0}, Coord{0, 2})
	require.True(t, ok)
	assert.Equal(t, []Coord{{0, 0}, {0, 1}, {0, 2}}, path)

	// An unwalkable end can never be reached.
	_, ok = gridAStar(grid, Coord{0, 1}, Coord{0, 0})
	assert.False(t, ok)

	// Coordinates outside the grid find no path.
	_, ok = gridAStar(grid, Coord{0, 1}, Coord{5, 5})
	assert.False(t, ok)
}

func TestGridAStarSameCell(t *testing.T) {
	grid := [][]int{{1}}

	path, ok := gridAStar(grid, Coord{0, 0}, Coord{0, 0})
	require.True(t, ok)
	assert.Equal(t, []Coord{{0, 0}}, path)
}
