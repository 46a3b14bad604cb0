package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-planner/mission"
	"mission-planner/search"
	"mission-planner/waypoint"
)

func allValidGrid(t *testing.T, rows, cols, odlcCount int) *search.CellMap {
	t.Helper()
	points := make([][]search.GridPoint, rows)
	for i := range points {
		points[i] = make([]search.GridPoint, cols)
		for j := range points[i] {
			points[i][j] = search.GridPoint{
				Pos:   waypoint.Point{X: float64(i), Y: float64(j)},
				Valid: true,
			}
		}
	}
	cellMap, err := search.NewCellMap(points, odlcCount)
	require.NoError(t, err)
	return cellMap
}

func TestRenderGrid(t *testing.T) {
	cellMap := allValidGrid(t, 2, 2, 1)
	route := []search.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}}

	out := renderGrid(cellMap, route)
	assert.Equal(t, 2, strings.Count(out, "o"))
	assert.Equal(t, 2, strings.Count(out, "#"))
	assert.Zero(t, strings.Count(out, "."))
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestRenderGridMarksInvalid(t *testing.T) {
	points := [][]search.GridPoint{{
		{Pos: waypoint.Point{X: 0, Y: 0}, Valid: true},
		{},
		{Pos: waypoint.Point{X: 0, Y: 2}, Valid: true},
	}}
	cellMap, err := search.NewCellMap(points, 1)
	require.NoError(t, err)

	out := renderGrid(cellMap, nil)
	assert.Equal(t, 2, strings.Count(out, "#"))
	assert.Equal(t, 1, strings.Count(out, "."))
	assert.Zero(t, strings.Count(out, "o"))
}

func TestSimulateSweep(t *testing.T) {
	cellMap := allValidGrid(t, 5, 5, 1)
	route := []search.Coord{
		{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2},
		{Row: 2, Col: 3}, {Row: 2, Col: 4},
	}

	seen, residual := simulateSweep(cellMap, route, 1, 0.5)

	// A radius-1 view is the 5-cell cross, so sweeping the middle row
	// observes it and its neighbor rows but misses the outer corners.
	assert.Equal(t, 15, seen)
	// 15 seen cells halved from 0.04 plus 10 untouched cells.
	assert.InDelta(t, 0.7, residual, 1e-9)

	assert.True(t, cellMap.Data[2][0].Seen)
	assert.True(t, cellMap.Data[1][2].Seen)
	assert.False(t, cellMap.Data[0][0].Seen)
	assert.InDelta(t, 0.04, cellMap.Data[0][0].Probability, 1e-9)
	assert.InDelta(t, 0.02, cellMap.Data[2][2].Probability, 1e-9)
}

func TestSimulateSweepEmptyRoute(t *testing.T) {
	cellMap := allValidGrid(t, 5, 5, 1)

	seen, residual := simulateSweep(cellMap, nil, 1, 0.5)
	assert.Zero(t, seen)
	assert.InDelta(t, 1.0, residual, 1e-9)
}

func TestRenderSummary(t *testing.T) {
	cellMap := allValidGrid(t, 2, 2, 1)
	route := &mission.Route{
		Points:         make([]mission.Coordinate, 7),
		DistanceMeters: 123.4,
	}

	out := renderSummary(cellMap, route, 3, 0.25)
	assert.Contains(t, out, "valid cells:")
	assert.Contains(t, out, "7 points")
	assert.Contains(t, out, "123.4 m")
	assert.Contains(t, out, "3 cells seen")
	assert.Contains(t, out, "0.250 residual probability")
}
