package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureMission loads the test mission with no boundary inset.
func fixtureMission(t *testing.T) *Mission {
	t.Helper()
	plan, err := LoadPlan("testdata/waypoint_data.json")
	require.NoError(t, err)
	m, err := NewMission(plan, 0)
	require.NoError(t, err)
	return m
}

func syntheticMission(t *testing.T) *Mission {
	t.Helper()
	plan := validPlan()
	m, err := NewMission(&plan, 0)
	require.NoError(t, err)
	return m
}

func TestNewMission(t *testing.T) {
	m := fixtureMission(t)
	assert.Len(t, m.Boundary, 13)
	require.NotNil(t, m.Graph)

	origin := m.Projection.ToLocal(m.Plan.Flyzones.BoundaryPoints[0])
	assert.InDelta(t, 0, origin.X, 1e-9)
	assert.InDelta(t, 0, origin.Y, 1e-9)
}

func TestRouteBetweenDirect(t *testing.T) {
	m := syntheticMission(t)
	src := m.Plan.Waypoints[0].Coordinate()
	dst := m.Plan.Waypoints[1].Coordinate()

	route, err := m.RouteBetween(src, dst)
	require.NoError(t, err)
	require.Len(t, route.Points, 2)

	assert.InDelta(t, src.Latitude, route.Points[0].Latitude, 1e-9)
	assert.InDelta(t, src.Longitude, route.Points[0].Longitude, 1e-9)
	assert.InDelta(t, dst.Latitude, route.Points[1].Latitude, 1e-9)
	assert.InDelta(t, dst.Longitude, route.Points[1].Longitude, 1e-9)
	assert.InEpsilon(t, haversineMeters(src, dst), route.DistanceMeters, 1e-3)
}

func TestWaypointRoute(t *testing.T) {
	m := fixtureMission(t)

	route, err := m.WaypointRoute()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(route.Points), len(m.Plan.Waypoints))

	first := m.Plan.Waypoints[0].Coordinate()
	last := m.Plan.Waypoints[len(m.Plan.Waypoints)-1].Coordinate()
	assert.InDelta(t, first.Latitude, route.Points[0].Latitude, 1e-9)
	assert.InDelta(t, first.Longitude, route.Points[0].Longitude, 1e-9)
	end := route.Points[len(route.Points)-1]
	assert.InDelta(t, last.Latitude, end.Latitude, 1e-9)
	assert.InDelta(t, last.Longitude, end.Longitude, 1e-9)

	// Leg splicing must not duplicate junction points.
	for i := 1; i < len(route.Points); i++ {
		assert.NotEqual(t, route.Points[i-1], route.Points[i], "duplicate point at %d", i)
	}

	direct := 0.0
	for i := 0; i+1 < len(m.Plan.Waypoints); i++ {
		direct += haversineMeters(m.Plan.Waypoints[i].Coordinate(), m.Plan.Waypoints[i+1].Coordinate())
	}
	assert.GreaterOrEqual(t, route.DistanceMeters, 0.999*direct)
}

func TestWaypointRouteTooFewWaypoints(t *testing.T) {
	m := fixtureMission(t)
	m.Plan.Waypoints = m.Plan.Waypoints[:1]

	_, err := m.WaypointRoute()
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestRouteBetweenBlockedByZone(t *testing.T) {
	m := fixtureMission(t)

	// A tall band across the middle of the flight area; every route
	// from the west side to the east side has to cross it.
	band := Zone{Name: "band", Ring: m.Projection.LocalRing([]Coordinate{
		{38.313, -76.548}, {38.313, -76.5475}, {38.319, -76.5475}, {38.319, -76.548},
	})}
	m.AttachZones([]Zone{band})

	src := m.Plan.Waypoints[0].Coordinate()
	dst := m.Plan.Waypoints[1].Coordinate()
	_, err := m.RouteBetween(src, dst)
	assert.ErrorIs(t, err, ErrZoneBlocked)
}

func TestRouteBetweenEndpointInsideZone(t *testing.T) {
	m := fixtureMission(t)
	hospital := Zone{Name: "hospital", Ring: m.Projection.LocalRing([]Coordinate{
		{38.315, -76.553}, {38.315, -76.552}, {38.3158, -76.552}, {38.3158, -76.553},
	})}
	m.AttachZones([]Zone{hospital})

	inside := Coordinate{38.3154, -76.5525}
	_, err := m.RouteBetween(inside, m.Plan.Waypoints[0].Coordinate())
	require.ErrorIs(t, err, ErrZoneBlocked)
	assert.ErrorContains(t, err, "start is inside")

	_, err = m.RouteBetween(m.Plan.Waypoints[0].Coordinate(), inside)
	require.ErrorIs(t, err, ErrZoneBlocked)
	assert.ErrorContains(t, err, "end is inside")
}

func TestRouteBetweenClearOfZones(t *testing.T) {
	m := fixtureMission(t)
	hospital := Zone{Name: "hospital", Ring: m.Projection.LocalRing([]Coordinate{
		{38.315, -76.553}, {38.315, -76.552}, {38.3158, -76.552}, {38.3158, -76.553},
	})}
	m.AttachZones([]Zone{hospital})

	route, err := m.RouteBetween(m.Plan.Waypoints[0].Coordinate(), m.Plan.Waypoints[1].Coordinate())
	require.NoError(t, err)
	assert.NotEmpty(t, route.Points)
}

func TestAttachZonesMergesNested(t *testing.T) {
	m := fixtureMission(t)
	zones, err := LoadZones("testdata/nfz.geojson", m.Projection)
	require.NoError(t, err)

	m.AttachZones(zones)
	assert.Len(t, m.Zones, 3)
}

func TestSearchGrid(t *testing.T) {
	m := fixtureMission(t)

	cellMap, err := m.SearchGrid(30)
	require.NoError(t, err)
	assert.Greater(t, cellMap.NumValid, 0)

	ring := m.Projection.LocalRing(m.Plan.SearchBoundary())
	for _, row := range cellMap.Data {
		for _, cell := range row {
			if cell.Valid {
				assert.True(t, cell.Pos.InsideShape(ring))
			}
		}
	}
}

func TestSearchRoute(t *testing.T) {
	m := fixtureMission(t)

	cellMap, err := m.SearchGrid(30)
	require.NoError(t, err)

	route, micro, err := m.SearchRoute(cellMap, 3)
	require.NoError(t, err)
	require.NotEmpty(t, micro)
	require.Len(t, route.Points, len(micro))
	assert.Greater(t, route.DistanceMeters, 0.0)

	for i, c := range micro {
		require.True(t, cellMap.InBounds(c), "cell %d out of bounds", i)
		assert.True(t, cellMap.Data[c.Row][c.Col].Valid, "cell %d invalid", i)
	}

	// Decompressed routes move one cell at a time.
	for i := 1; i < len(micro); i++ {
		dr := micro[i].Row - micro[i-1].Row
		dc := micro[i].Col - micro[i-1].Col
		if dr < 0 {
			dr = -dr
		}
		if dc < 0 {
			dc = -dc
		}
		assert.Equal(t, 1, dr+dc, "step %d: %v to %v", i, micro[i-1], micro[i])
	}
}

func TestPlanSearch(t *testing.T) {
	m := fixtureMission(t)

	route, err := m.PlanSearch(30, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, route.Points)
	assert.Greater(t, route.DistanceMeters, 0.0)
}
