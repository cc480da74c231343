package geospatial

import (
	"github.com/paulmach/orb"
)

// AfricaBound is the continental bounding box used to sanity-check
// validator GPS submissions: Cape Agulhas up to the Tunisian coast,
// Cape Verde longitude across to the Horn.
var AfricaBound = orb.Bound{
	Min: orb.Point{-18, -35}, // lng, lat
	Max: orb.Point{52, 37},
}

// Coordinate is a validator-reported GPS fix.
type Coordinate struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Point converts the coordinate to an orb point (lng, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// InAfrica reports whether the coordinate falls inside the supported
// continental bounding box.
func InAfrica(c Coordinate) bool {
	return AfricaBound.Contains(c.Point())
}

// Centroid averages a set of points, used for region-level reporting.
func Centroid(points []orb.Point) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	var lng, lat float64
	for _, p := range points {
		lng += p[0]
		lat += p[1]
	}
	n := float64(len(points))
	return orb.Point{lng / n, lat / n}
}
