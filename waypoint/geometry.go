package waypoint

import "math"

// Lerp linearly interpolates between two values. A position of 0
// corresponds to x, a position of 1 corresponds to y.
func Lerp(x, y, position float64) float64 {
	return (1-position)*x + position*y
}

// InverseLerp returns how far between x and y the given value lies,
// with x corresponding to 0 and y to 1. The caller must ensure x != y;
// a degenerate span divides by zero and the resulting Inf/NaN is
// propagated rather than masked.
func InverseLerp(x, y, value float64) float64 {
	return (value - x) / (y - x)
}

// Point is a point in the planar projected coordinate system, in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Div returns p scaled by 1/s.
func (p Point) Div(s float64) Point {
	return Point{p.X / s, p.Y / s}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Norm returns the distance from p to the origin.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// InsideShape reports whether p lies inside the polygon described by
// vertices using the nonzero winding number rule. The vertices must be
// ordered consistently, clockwise or counterclockwise; the closing edge
// from the last vertex back to the first is implied. A point exactly on
// a vertex or edge is not reliably classified.
func (p Point) InsideShape(vertices []Point) bool {
	winding := 0
	n := len(vertices)
	for i := 0; i < n; i++ {
		v1 := vertices[i]
		v2 := vertices[(i+1)%n]

		// Horizontal edges have no y-span to cross.
		if v1.Y == v2.Y {
			continue
		}
		if (v1.Y > p.Y) == (v2.Y > p.Y) {
			continue
		}

		// x-coordinate where the edge crosses the horizontal ray from p.
		t := InverseLerp(v1.Y, v2.Y, p.Y)
		if Lerp(v1.X, v2.X, t) > p.X {
			if v2.Y > v1.Y {
				winding++
			} else {
				winding--
			}
		}
	}
	return winding != 0
}

// LineSegment is a line segment between two points.
type LineSegment struct {
	P1, P2 Point
}

// Length returns the length of the segment.
func (s LineSegment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// Midpoint returns the point halfway between the segment's endpoints.
func (s LineSegment) Midpoint() Point {
	return s.P1.Add(s.P2).Div(2)
}

// Intersects reports whether this segment intersects another. Segments
// that are collinear and overlap are treated as intersecting. The test
// is symmetric for non-degenerate segments; zero-length segments are
// not supported and must be rejected by the caller.
func (s LineSegment) Intersects(other LineSegment) bool {
	diff := s.P2.Sub(s.P1)
	val1 := diff.X*(other.P1.Y-s.P1.Y) - diff.Y*(other.P1.X-s.P1.X)
	val2 := diff.X*(other.P2.Y-s.P1.Y) - diff.Y*(other.P2.X-s.P1.X)

	if val1*val2 > 0 {
		// Both endpoints of the other segment are on the same side
		// of the line through this one.
		return false
	}

	if val1 == 0 && val2 == 0 {
		// Collinear. Project the other segment's endpoints onto this
		// one and report intersection if the parameter ranges overlap.
		lenSq := diff.Dot(diff)
		u1 := diff.Dot(other.P1.Sub(s.P1)) / lenSq
		u2 := diff.Dot(other.P2.Sub(s.P1)) / lenSq
		if u1 > u2 {
			u1, u2 = u2, u1
		}
		return u1 <= 1 && u2 >= 0
	}

	t := InverseLerp(val1, val2, 0)
	// The intersection point on the other segment.
	point := Point{
		Lerp(other.P1.X, other.P2.X, t),
		Lerp(other.P1.Y, other.P2.Y, t),
	}
	// How far along this segment the intersection point lies.
	u := diff.Dot(point.Sub(s.P1)) / diff.Dot(diff)
	return 0 <= u && u <= 1
}

// ClosedSegments returns the line segments connecting consecutive
// points, including the closing segment from the last point back to
// the first.
func ClosedSegments(points []Point) []LineSegment {
	n := len(points)
	segments := make([]LineSegment, 0, n)
	for i := 0; i < n; i++ {
		segments = append(segments, LineSegment{points[i], points[(i+1)%n]})
	}
	return segments
}
