package mission

import (
	"fmt"

	"mission-planner/search"
	"mission-planner/waypoint"
)

// Mission binds a plan to a planar frame and a boundary pathfinding
// graph. Attach no-fly zones to have planned routes validated against
// them.
type Mission struct {
	Plan       *Plan
	Projection *Projection
	Boundary   []waypoint.Point
	Graph      *waypoint.BoundaryGraph
	Zones      []Zone

	zoneIndex *ZoneIndex
}

// Route is a planned path in WGS84 coordinates.
type Route struct {
	Points         []Coordinate `json:"points"`
	DistanceMeters float64      `json:"distanceMeters"`
}

// NewMission projects the plan's flight boundary and builds the
// pathfinding graph inset by safetyMargin meters.
func NewMission(plan *Plan, safetyMargin float64) (*Mission, error) {
	projection := NewProjection(plan.Flyzones.BoundaryPoints[0])
	boundary := projection.LocalRing(plan.Flyzones.BoundaryPoints)

	graph, err := waypoint.NewBoundaryGraph(boundary, safetyMargin)
	if err != nil {
		return nil, err
	}

	return &Mission{
		Plan:       plan,
		Projection: projection,
		Boundary:   boundary,
		Graph:      graph,
	}, nil
}

// AttachZones merges and indexes no-fly zones for route validation.
func (m *Mission) AttachZones(zones []Zone) {
	m.Zones = MergeZones(zones)
	m.zoneIndex = NewZoneIndex(m.Zones)
}

// RouteBetween plans a boundary-respecting route from src to dst. The
// returned route includes both endpoints.
func (m *Mission) RouteBetween(src, dst Coordinate) (*Route, error) {
	start := m.Projection.ToLocal(src)
	end := m.Projection.ToLocal(dst)

	if m.zoneIndex != nil {
		if zone, blocked := m.zoneIndex.BlockingZone(start); blocked {
			return nil, fmt.Errorf("%w: start is inside %q", ErrZoneBlocked, zone.Name)
		}
		if zone, blocked := m.zoneIndex.BlockingZone(end); blocked {
			return nil, fmt.Errorf("%w: end is inside %q", ErrZoneBlocked, zone.Name)
		}
	}

	path, err := m.Graph.ShortestPathBetween(start, end)
	if err != nil {
		return nil, err
	}

	full := make([]waypoint.Point, 0, len(path)+1)
	full = append(full, start)
	full = append(full, path...)

	if m.zoneIndex != nil && !m.zoneIndex.RouteClear(full) {
		return nil, fmt.Errorf("%w: between (%.6f, %.6f) and (%.6f, %.6f)",
			ErrZoneBlocked, src.Latitude, src.Longitude, dst.Latitude, dst.Longitude)
	}

	distance := 0.0
	for i := 0; i+1 < len(full); i++ {
		distance += full[i].Distance(full[i+1])
	}

	return &Route{
		Points:         m.Projection.GlobalPath(full),
		DistanceMeters: distance,
	}, nil
}

// WaypointRoute plans the full mission route visiting every waypoint
// in order, splicing boundary detours into each leg.
func (m *Mission) WaypointRoute() (*Route, error) {
	waypoints := m.Plan.Waypoints
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 waypoints to route, have %d",
			ErrInvalidPlan, len(waypoints))
	}

	route := &Route{Points: []Coordinate{waypoints[0].Coordinate()}}
	for i := 0; i+1 < len(waypoints); i++ {
		leg, err := m.RouteBetween(waypoints[i].Coordinate(), waypoints[i+1].Coordinate())
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		// The first point of each leg repeats the previous leg's
		// last point.
		route.Points = append(route.Points, leg.Points[1:]...)
		route.DistanceMeters += leg.DistanceMeters
	}
	return route, nil
}

// SearchGrid segments the search area into square cells of the given
// size in meters. The grid is aligned with the area's first edge so
// slanted areas waste fewer cells.
func (m *Mission) SearchGrid(cellSize float64) (*search.CellMap, error) {
	ring := m.Projection.LocalRing(m.Plan.SearchBoundary())
	rotation := search.EdgeAlignmentAngle(ring)
	pivot := ring[0]

	rotated := search.RotateShape(ring, rotation, pivot)
	grid := search.Segment(rotated, cellSize, rotation, pivot)
	return search.NewCellMap(grid, len(m.Plan.OdlcWaypoints))
}

// SearchRoute plans a coverage route over the grid. It returns the
// reprojected route along with the micro-cell visit order for callers
// that render or simulate the sweep.
func (m *Mission) SearchRoute(cellMap *search.CellMap, viewRadius int) (*Route, []search.Coord, error) {
	searcher, err := search.NewSearcher(cellMap, viewRadius)
	if err != nil {
		return nil, nil, err
	}

	macro, err := searcher.BreadthSearch(firstValidMacro(searcher))
	if err != nil {
		return nil, nil, err
	}

	micro, err := search.NewDecompressor(cellMap, viewRadius).DecompressRoute(macro)
	if err != nil {
		return nil, nil, err
	}

	route := &Route{Points: make([]Coordinate, len(micro))}
	for i, c := range micro {
		pos := cellMap.Data[c.Row][c.Col].Pos
		route.Points[i] = m.Projection.ToGlobal(pos)
		if i > 0 {
			prev := cellMap.Data[micro[i-1].Row][micro[i-1].Col].Pos
			route.DistanceMeters += prev.Distance(pos)
		}
	}
	return route, micro, nil
}

// PlanSearch segments the search area and plans a coverage route in
// one call.
func (m *Mission) PlanSearch(cellSize float64, viewRadius int) (*Route, error) {
	cellMap, err := m.SearchGrid(cellSize)
	if err != nil {
		return nil, err
	}
	route, _, err := m.SearchRoute(cellMap, viewRadius)
	return route, err
}

// firstValidMacro returns the row-major first macro cell containing
// any valid micro cell.
func firstValidMacro(s *search.Searcher) search.Coord {
	for i, row := range s.Compressed {
		for j, weight := range row {
			if weight > 0 {
				return search.Coord{Row: i, Col: j}
			}
		}
	}
	return search.Coord{}
}
