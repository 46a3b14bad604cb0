package mission

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"mission-planner/waypoint"
)

// ErrZoneBlocked reports a route that crosses a no-fly zone.
var ErrZoneBlocked = errors.New("route crosses a no-fly zone")

// Zone is a keep-out polygon in planar meters.
type Zone struct {
	Name string
	Ring []waypoint.Point
}

// LoadZones reads no-fly zones from a GeoJSON file and projects them
// into the planar frame.
func LoadZones(path string, pr *Projection) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseZones(data, pr)
}

// ParseZones parses a GeoJSON FeatureCollection of Polygon and
// MultiPolygon features. Only outer rings are kept; a hole in a
// keep-out zone would make blocked space flyable, so holes are
// ignored. Zone names come from the "name" property when present.
func ParseZones(data []byte, pr *Projection) ([]Zone, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing no-fly zones: %w", err)
	}

	var zones []Zone
	for _, feature := range fc.Features {
		name, _ := feature.Properties["name"].(string)
		switch geom := feature.Geometry.(type) {
		case orb.Polygon:
			zones = appendZone(zones, name, geom, pr)
		case orb.MultiPolygon:
			for _, polygon := range geom {
				zones = appendZone(zones, name, polygon, pr)
			}
		}
	}
	return zones, nil
}

func appendZone(zones []Zone, name string, polygon orb.Polygon, pr *Projection) []Zone {
	if len(polygon) == 0 {
		return zones
	}
	ring := openRing(polygon[0])
	if len(ring) < 3 {
		return zones
	}

	points := make([]waypoint.Point, len(ring))
	for i, pt := range ring {
		points[i] = pr.ToLocal(Coordinate{Latitude: pt[1], Longitude: pt[0]})
	}
	return append(zones, Zone{Name: name, Ring: points})
}

// openRing drops the GeoJSON closing vertex.
func openRing(ring orb.Ring) orb.Ring {
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// SimplifyZones reduces zone ring complexity with Douglas-Peucker.
// Rings are closed before simplification and reopened after, so the
// closing edge survives. A ring that would drop below 3 vertices is
// kept unsimplified.
func SimplifyZones(zones []Zone, tolerance float64) []Zone {
	if tolerance <= 0 {
		return zones
	}
	simplified := make([]Zone, len(zones))
	for i, zone := range zones {
		simplified[i] = Zone{Name: zone.Name, Ring: simplifyRing(zone.Ring, tolerance)}
	}
	return simplified
}

func simplifyRing(ring []waypoint.Point, tolerance float64) []waypoint.Point {
	if len(ring) <= 3 {
		return ring
	}

	closed := make(orb.LineString, 0, len(ring)+1)
	for _, p := range ring {
		closed = append(closed, orb.Point{p.X, p.Y})
	}
	closed = append(closed, closed[0])

	result, ok := simplify.DouglasPeucker(tolerance).Simplify(closed).(orb.LineString)
	if !ok || len(result) < 4 {
		return ring
	}

	reopened := make([]waypoint.Point, len(result)-1)
	for i := range reopened {
		reopened[i] = waypoint.Point{X: result[i][0], Y: result[i][1]}
	}
	return reopened
}

// MergeZones drops zones fully contained within another zone. Nested
// zones add vertices without changing the blocked area.
func MergeZones(zones []Zone) []Zone {
	if len(zones) <= 1 {
		return zones
	}

	contained := make([]bool, len(zones))
	for i := range zones {
		if contained[i] {
			continue
		}
		for j := range zones {
			if i == j || contained[j] {
				continue
			}
			if zoneContainedIn(zones[i], zones[j]) {
				contained[i] = true
				break
			}
			if zoneContainedIn(zones[j], zones[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]Zone, 0, len(zones))
	for i, zone := range zones {
		if !contained[i] {
			result = append(result, zone)
		}
	}
	return result
}

// zoneContainedIn reports whether every vertex of a lies inside b.
func zoneContainedIn(a, b Zone) bool {
	if len(a.Ring) == 0 || len(b.Ring) == 0 {
		return false
	}

	boxA, boxB := ringBBox(a.Ring), ringBBox(b.Ring)
	if boxA.minX < boxB.minX || boxA.maxX > boxB.maxX ||
		boxA.minY < boxB.minY || boxA.maxY > boxB.maxY {
		return false
	}

	for _, vertex := range a.Ring {
		if !vertex.InsideShape(b.Ring) {
			return false
		}
	}
	return true
}

type bbox struct {
	minX, minY, maxX, maxY float64
}

func ringBBox(ring []waypoint.Point) bbox {
	box := bbox{minX: ring[0].X, minY: ring[0].Y, maxX: ring[0].X, maxY: ring[0].Y}
	for _, v := range ring[1:] {
		box.minX = math.Min(box.minX, v.X)
		box.minY = math.Min(box.minY, v.Y)
		box.maxX = math.Max(box.maxX, v.X)
		box.maxY = math.Max(box.maxY, v.Y)
	}
	return box
}

// queryPad widens R-tree rectangles by a hair so point queries and
// axis-aligned boxes still have positive extent in both dimensions,
// which rtreego requires.
const queryPad = 1e-9

// zoneEntry wraps a zone for R-tree storage.
type zoneEntry struct {
	zone Zone
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (z *zoneEntry) Bounds() rtreego.Rect {
	return z.rect
}

// ZoneIndex answers spatial queries over no-fly zones.
type ZoneIndex struct {
	tree *rtreego.Rtree
}

// NewZoneIndex indexes zones by bounding box. Zones with fewer than 3
// vertices are skipped.
func NewZoneIndex(zones []Zone) *ZoneIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, zone := range zones {
		if len(zone.Ring) < 3 {
			continue
		}
		rect, err := zoneRect(zone.Ring)
		if err != nil {
			continue
		}
		tree.Insert(&zoneEntry{zone: zone, rect: rect})
	}
	return &ZoneIndex{tree: tree}
}

func zoneRect(ring []waypoint.Point) (rtreego.Rect, error) {
	box := ringBBox(ring)
	return rtreego.NewRect(
		rtreego.Point{box.minX - queryPad, box.minY - queryPad},
		[]float64{box.maxX - box.minX + 2*queryPad, box.maxY - box.minY + 2*queryPad},
	)
}

// QueryRegion returns zones whose bounding boxes intersect the given
// box. Point queries pass a box with zero extent.
func (zi *ZoneIndex) QueryRegion(minX, minY, maxX, maxY float64) []Zone {
	rect, err := rtreego.NewRect(
		rtreego.Point{minX - queryPad, minY - queryPad},
		[]float64{maxX - minX + 2*queryPad, maxY - minY + 2*queryPad},
	)
	if err != nil {
		return nil
	}

	results := zi.tree.SearchIntersect(rect)
	zones := make([]Zone, 0, len(results))
	for _, item := range results {
		zones = append(zones, item.(*zoneEntry).zone)
	}
	return zones
}

// BlockingZone returns a zone containing the point, if any.
func (zi *ZoneIndex) BlockingZone(p waypoint.Point) (Zone, bool) {
	for _, zone := range zi.QueryRegion(p.X, p.Y, p.X, p.Y) {
		if p.InsideShape(zone.Ring) {
			return zone, true
		}
	}
	return Zone{}, false
}

// PointClear reports whether the point lies outside every zone.
func (zi *ZoneIndex) PointClear(p waypoint.Point) bool {
	_, blocked := zi.BlockingZone(p)
	return !blocked
}

// SegmentClear reports whether the leg between two points avoids every
// zone. A leg that stays wholly inside a zone crosses no edge, so the
// midpoint is checked as well.
func (zi *ZoneIndex) SegmentClear(a, b waypoint.Point) bool {
	leg := waypoint.LineSegment{P1: a, P2: b}
	zones := zi.QueryRegion(
		math.Min(a.X, b.X), math.Min(a.Y, b.Y),
		math.Max(a.X, b.X), math.Max(a.Y, b.Y),
	)
	for _, zone := range zones {
		for _, edge := range waypoint.ClosedSegments(zone.Ring) {
			if leg.Intersects(edge) {
				return false
			}
		}
		if leg.Midpoint().InsideShape(zone.Ring) {
			return false
		}
	}
	return true
}

// RouteClear reports whether every leg of a path avoids every zone.
func (zi *ZoneIndex) RouteClear(path []waypoint.Point) bool {
	for i := 0; i+1 < len(path); i++ {
		if !zi.SegmentClear(path[i], path[i+1]) {
			return false
		}
	}
	return true
}
