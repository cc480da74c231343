package geospatial

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestInAfrica(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"Nairobi", -1.2921, 36.8219, true},
		{"Lagos", 6.5244, 3.3792, true},
		{"Cape Town", -33.9249, 18.4241, true},
		{"Cairo", 30.0444, 31.2357, true},
		{"Berlin", 52.52, 13.405, false},
		{"New York", 40.7128, -74.006, false},
		{"Mumbai", 19.076, 72.8777, false},
		{"northern boundary", 37, 10, true},
		{"above northern boundary", 37.01, 10, false},
		{"southern boundary", -35, 20, true},
		{"below southern boundary", -35.01, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InAfrica(Coordinate{Lat: tt.lat, Lng: tt.lng})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentroid(t *testing.T) {
	points := []orb.Point{
		{36, -1},
		{38, -3},
	}

	center := Centroid(points)

	assert.InDelta(t, 37, center[0], 0.0001)
	assert.InDelta(t, -2, center[1], 0.0001)
}

func TestCentroidEmpty(t *testing.T) {
	assert.Equal(t, orb.Point{}, Centroid(nil))
}
