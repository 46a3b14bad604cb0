package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewVectors(t *testing.T) {
	// Radius 1 sees the center and the four cardinal neighbors.
	assert.ElementsMatch(t, []Coord{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}, viewVectors(1))

	// Radius 2 adds the diagonals at distance sqrt(2) and the
	// cardinals at distance 2.
	assert.Len(t, viewVectors(2), 13)
}

func TestSeekerInView(t *testing.T) {
	m, err := NewCellMap(gridFixture(5, 5, allValid), 1)
	require.NoError(t, err)

	center := NewSeeker(Coord{2, 2}, 0.5, 1, m)
	assert.Len(t, center.InView(), 5)

	// The view clips at the map edge.
	corner := NewSeeker(Coord{0, 0}, 0.5, 1, m)
	assert.Len(t, corner.InView(), 3)
}

func TestSeekerMoveUpdatesProbabilities(t *testing.T) {
	m, err := NewCellMap(gridFixture(5, 5, allValid), 1)
	require.NoError(t, err)
	s := NewSeeker(Coord{2, 2}, 0.5, 1, m)

	require.True(t, s.Move(Coord{1, 0}))
	assert.Equal(t, Coord{3, 2}, s.Pos)

	// Everything in view of the new position was observed once.
	for _, c := range []Coord{{3, 2}, {2, 2}, {4, 2}, {3, 1}, {3, 3}} {
		cell := m.Data[c.Row][c.Col]
		assert.InDelta(t, 0.02, cell.Probability, 1e-12, "cell %v", c)
		assert.True(t, cell.Seen, "cell %v", c)
	}

	// Cells out of view are untouched.
	assert.InDelta(t, 0.04, m.Data[0][0].Probability, 1e-12)
	assert.False(t, m.Data[0][0].Seen)
}

func TestSeekerMoveSkipsPreviousView(t *testing.T) {
	m, err := NewCellMap(gridFixture(5, 5, allValid), 1)
	require.NoError(t, err)
	s := NewSeeker(Coord{2, 2}, 0.5, 1, m)

	require.True(t, s.Move(Coord{1, 0}))
	require.True(t, s.Move(Coord{1, 0}))
	assert.Equal(t, Coord{4, 2}, s.Pos)

	// (4, 2) was already in view before the second move, so it is not
	// discounted twice.
	assert.InDelta(t, 0.02, m.Data[4][2].Probability, 1e-12)

	// The cells entering the view get their first discount.
	assert.InDelta(t, 0.02, m.Data[4][1].Probability, 1e-12)
	assert.InDelta(t, 0.02, m.Data[4][3].Probability, 1e-12)
	assert.True(t, m.Data[4][1].Seen)
}

func TestSeekerMoveRejected(t *testing.T) {
	m, err := NewCellMap(gridFixture(3, 3, func(i, j int) bool { return i < 2 }), 1)
	require.NoError(t, err)
	s := NewSeeker(Coord{0, 0}, 0.5, 1, m)

	// Off the grid.
	assert.False(t, s.Move(Coord{-1, 0}))
	assert.Equal(t, Coord{0, 0}, s.Pos)

	// Onto an invalid cell.
	assert.False(t, s.Move(Coord{2, 0}))
	assert.Equal(t, Coord{0, 0}, s.Pos)

	// Rejected moves must not touch any probabilities.
	for _, row := range m.Data {
		for _, cell := range row {
			assert.False(t, cell.Seen)
		}
	}
}
