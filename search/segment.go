package search

import (
	"math"

	"mission-planner/waypoint"
)

// GridPoint is one candidate cell center produced by Segment. Centers
// that fall outside the search polygon are marked invalid and carry a
// zero position.
type GridPoint struct {
	Pos   waypoint.Point
	Valid bool
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// boundsOf calculates the bounding box of a set of points.
func boundsOf(points []waypoint.Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	bounds := Bounds{
		MinX: points[0].X,
		MinY: points[0].Y,
		MaxX: points[0].X,
		MaxY: points[0].Y,
	}
	for _, p := range points[1:] {
		bounds.MinX = math.Min(bounds.MinX, p.X)
		bounds.MinY = math.Min(bounds.MinY, p.Y)
		bounds.MaxX = math.Max(bounds.MaxX, p.X)
		bounds.MaxY = math.Max(bounds.MaxY, p.Y)
	}
	return bounds
}

// Segment divides a search polygon into a grid of square cells with
// side cellSize. A cell is valid when its center lies inside the
// polygon. The polygon passed in should already be rotated by rotation
// around pivot so the grid aligns with it; valid cell centers are
// rotated back into the original frame before being returned.
func Segment(polygon []waypoint.Point, cellSize, rotation float64, pivot waypoint.Point) [][]GridPoint {
	bounds := boundsOf(polygon)
	offset := cellSize / 2

	rows := int(math.Ceil((bounds.MaxX - bounds.MinX) / cellSize))
	cols := int(math.Ceil((bounds.MaxY - bounds.MinY) / cellSize))

	grid := make([][]GridPoint, 0, rows)
	for i := 0; i < rows; i++ {
		row := make([]GridPoint, 0, cols)
		for j := 0; j < cols; j++ {
			center := waypoint.Point{
				X: bounds.MinX + offset + float64(i)*cellSize,
				Y: bounds.MinY + offset + float64(j)*cellSize,
			}
			if center.InsideShape(polygon) {
				row = append(row, GridPoint{
					Pos:   RotatePoint(center, -rotation, pivot),
					Valid: true,
				})
			} else {
				row = append(row, GridPoint{})
			}
		}
		grid = append(grid, row)
	}
	return grid
}

// RotatePoint rotates a point by theta radians around a pivot.
func RotatePoint(p waypoint.Point, theta float64, pivot waypoint.Point) waypoint.Point {
	sin, cos := math.Sincos(theta)
	dx := p.X - pivot.X
	dy := p.Y - pivot.Y
	return waypoint.Point{
		X: dx*cos - dy*sin + pivot.X,
		Y: dx*sin + dy*cos + pivot.Y,
	}
}

// RotateShape rotates every point of a shape by theta radians around a
// pivot.
func RotateShape(shape []waypoint.Point, theta float64, pivot waypoint.Point) []waypoint.Point {
	rotated := make([]waypoint.Point, 0, len(shape))
	for _, p := range shape {
		rotated = append(rotated, RotatePoint(p, theta, pivot))
	}
	return rotated
}

// EdgeAlignmentAngle returns the angle, in radians, by which to rotate
// a polygon so its first edge lines up with the grid axes. Segmenting
// the rotated polygon wastes far fewer cells on slanted areas.
func EdgeAlignmentAngle(polygon []waypoint.Point) float64 {
	if len(polygon) < 2 {
		return 0
	}
	return math.Asin((polygon[1].X - polygon[0].X) / polygon[0].Distance(polygon[1]))
}
