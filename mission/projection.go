package mission

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"mission-planner/waypoint"
)

// Projection maps WGS84 coordinates onto a local planar frame in
// meters. Positions are mercator projected, recentered on an anchor,
// and scaled by the cosine of the anchor latitude so planar distances
// approximate ground distances across a mission-sized area.
type Projection struct {
	origin orb.Point
	scale  float64
}

// NewProjection anchors a projection at the given coordinate. The
// anchor becomes the planar origin; use the first flight boundary
// vertex so every mission position stays near it.
func NewProjection(anchor Coordinate) *Projection {
	return &Projection{
		origin: project.WGS84.ToMercator(orb.Point{anchor.Longitude, anchor.Latitude}),
		scale:  math.Cos(anchor.Latitude * math.Pi / 180),
	}
}

// ToLocal converts a coordinate to planar meters relative to the anchor.
func (pr *Projection) ToLocal(c Coordinate) waypoint.Point {
	merc := project.WGS84.ToMercator(orb.Point{c.Longitude, c.Latitude})
	return waypoint.Point{
		X: (merc[0] - pr.origin[0]) * pr.scale,
		Y: (merc[1] - pr.origin[1]) * pr.scale,
	}
}

// ToGlobal converts a planar point back to a WGS84 coordinate.
func (pr *Projection) ToGlobal(p waypoint.Point) Coordinate {
	merc := orb.Point{
		pr.origin[0] + p.X/pr.scale,
		pr.origin[1] + p.Y/pr.scale,
	}
	ll := project.Mercator.ToWGS84(merc)
	return Coordinate{Latitude: ll[1], Longitude: ll[0]}
}

// LocalRing projects every vertex of a ring.
func (pr *Projection) LocalRing(ring []Coordinate) []waypoint.Point {
	points := make([]waypoint.Point, len(ring))
	for i, c := range ring {
		points[i] = pr.ToLocal(c)
	}
	return points
}

// GlobalPath converts a planar path back to coordinates.
func (pr *Projection) GlobalPath(path []waypoint.Point) []Coordinate {
	coords := make([]Coordinate, len(path))
	for i, p := range path {
		coords[i] = pr.ToGlobal(p)
	}
	return coords
}
