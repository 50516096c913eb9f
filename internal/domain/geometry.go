package domain

import (
	"github.com/twpayne/go-geom"
)

// SRID for WGS84, the only reference system this service stores.
const SRID = 4326

// Coordinate is a single WGS84 position as it appears on the wire.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point builds a go-geom point in longitude/latitude order.
func Point(lng, lat float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(SRID)
}

// Polygon builds a single-ring polygon from input coordinates. At least 3
// coordinates are required; if the ring is open it is closed by appending
// the first coordinate.
func Polygon(coords []Coordinate) (*geom.Polygon, error) {
	if len(coords) < 3 {
		return nil, ErrInvalidPolygon
	}

	ring := CloseRing(coords)
	flat := make([]float64, 0, len(ring)*2)
	for _, c := range ring {
		flat = append(flat, c.Longitude, c.Latitude)
	}

	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID), nil
}

// CloseRing returns the ring with the first coordinate appended when the
// first and last coordinates differ. The input slice is never mutated.
func CloseRing(coords []Coordinate) []Coordinate {
	if len(coords) == 0 || coords[0] == coords[len(coords)-1] {
		return coords
	}
	ring := make([]Coordinate, len(coords), len(coords)+1)
	copy(ring, coords)
	return append(ring, coords[0])
}

// RingCoordinates extracts the outer ring of a polygon back into wire form.
func RingCoordinates(p *geom.Polygon) []Coordinate {
	if p == nil || p.NumLinearRings() == 0 {
		return nil
	}
	ring := p.LinearRing(0)
	coords := make([]Coordinate, 0, ring.NumCoords())
	for i := 0; i < ring.NumCoords(); i++ {
		c := ring.Coord(i)
		coords = append(coords, Coordinate{Latitude: c[1], Longitude: c[0]})
	}
	return coords
}
