package domain

import "math"

// Polygon is a closed ring of vertices describing a zone boundary.
// The ring does not repeat its first vertex; closure is implied.
type Polygon []Coordinates

// A ring needs at least three vertices to enclose anything.
func (p Polygon) Valid() bool { return len(p) >= 3 }

const coordEpsilon = 1e-9

// Contains reports whether the point lies inside the ring using a
// ray-casting test. Points exactly on an edge or vertex count as inside.
func (p Polygon) Contains(c Coordinates) bool {
	if !p.Valid() {
		return false
	}

	n := len(p)
	inside := false

	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]

		if onSegment(a, b, c) {
			return true
		}

		// Cast a ray east from the point and count edge crossings.
		if (a.Lat > c.Lat) != (b.Lat > c.Lat) {
			x := a.Lon + (c.Lat-a.Lat)*(b.Lon-a.Lon)/(b.Lat-a.Lat)
			if x > c.Lon {
				inside = !inside
			}
		}
	}

	return inside
}

// onSegment reports whether c lies on the segment between a and b.
func onSegment(a, b, c Coordinates) bool {
	cross := (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
	if math.Abs(cross) > coordEpsilon {
		return false
	}

	if c.Lon < math.Min(a.Lon, b.Lon)-coordEpsilon || c.Lon > math.Max(a.Lon, b.Lon)+coordEpsilon {
		return false
	}
	if c.Lat < math.Min(a.Lat, b.Lat)-coordEpsilon || c.Lat > math.Max(a.Lat, b.Lat)+coordEpsilon {
		return false
	}

	return true
}
