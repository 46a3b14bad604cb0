package mission

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidPlan reports mission data that cannot be planned against.
var ErrInvalidPlan = errors.New("invalid mission plan")

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Waypoint is a mission waypoint. Altitude is in feet above ground.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Coordinate returns the waypoint position without its altitude.
func (w Waypoint) Coordinate() Coordinate {
	return Coordinate{Latitude: w.Latitude, Longitude: w.Longitude}
}

// Obstacle is a cylindrical stationary obstacle. Obstacles are parsed
// and exposed for callers; route planning does not consume them.
type Obstacle struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	Height    float64 `json:"height"`
}

// Flyzone is the flight boundary and the altitude band the aircraft
// must stay within, in feet.
type Flyzone struct {
	AltitudeMin    float64      `json:"altitudeMin"`
	AltitudeMax    float64      `json:"altitudeMax"`
	BoundaryPoints []Coordinate `json:"boundaryPoints"`
}

// Plan is the parsed contents of a waypoint data file.
type Plan struct {
	Flyzones            Flyzone      `json:"flyzones"`
	Waypoints           []Waypoint   `json:"waypoints"`
	OdlcWaypoints       []Coordinate `json:"odlcWaypoints"`
	OdlcAltitude        float64      `json:"odlcAltitude"`
	SearchGridPoints    []Coordinate `json:"searchGridPoints,omitempty"`
	StationaryObstacles []Obstacle   `json:"stationaryObstacles,omitempty"`
}

// LoadPlan reads and parses a waypoint data JSON file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePlan(data)
}

// ParsePlan parses waypoint data JSON. Boundary rings in the data close
// themselves by repeating the first vertex; the duplicate is dropped so
// downstream consumers always see open rings.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	plan.Flyzones.BoundaryPoints = dropClosingPoint(plan.Flyzones.BoundaryPoints)
	plan.SearchGridPoints = dropClosingPoint(plan.SearchGridPoints)

	if err := plan.validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SearchBoundary returns the ring to segment for coverage search. Plans
// without a dedicated search grid fall back to the flight boundary.
func (p *Plan) SearchBoundary() []Coordinate {
	if len(p.SearchGridPoints) >= 3 {
		return p.SearchGridPoints
	}
	return p.Flyzones.BoundaryPoints
}

func (p *Plan) validate() error {
	boundary := p.Flyzones.BoundaryPoints
	if len(boundary) < 3 {
		return fmt.Errorf("%w: boundary has %d vertices, need at least 3", ErrInvalidPlan, len(boundary))
	}
	for i, vertex := range boundary {
		if vertex == boundary[(i+len(boundary)-1)%len(boundary)] {
			return fmt.Errorf("%w: repeated boundary vertex at index %d", ErrInvalidPlan, i)
		}
	}
	if p.Flyzones.AltitudeMax <= p.Flyzones.AltitudeMin {
		return fmt.Errorf("%w: altitude band [%g, %g] is empty",
			ErrInvalidPlan, p.Flyzones.AltitudeMin, p.Flyzones.AltitudeMax)
	}
	return nil
}

// dropClosingPoint removes the last vertex of a ring when it repeats
// the first.
func dropClosingPoint(ring []Coordinate) []Coordinate {
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}
