package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"basera/shared/geo"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name        string
		lat1, lon1  float64
		lat2, lon2  float64
		expectedKM  float64
		toleranceKM float64
	}{
		{
			name: "same point is zero",
			lat1: 27.7172, lon1: 85.3240,
			lat2: 27.7172, lon2: 85.3240,
			expectedKM:  0,
			toleranceKM: 0.0001,
		},
		{
			name: "kathmandu city pair is roughly 5.7km",
			lat1: 27.7172, lon1: 85.3240,
			lat2: 27.7500, lon2: 85.3700,
			expectedKM:  5.7,
			toleranceKM: 0.2,
		},
		{
			name: "kathmandu to pokhara is roughly 145km",
			lat1: 27.7172, lon1: 85.3240,
			lat2: 28.2096, lon2: 83.9856,
			expectedKM:  145,
			toleranceKM: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance := geo.Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expectedKM, distance, tt.toleranceKM)
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	forward := geo.Haversine(27.7172, 85.3240, 27.7500, 85.3700)
	backward := geo.Haversine(27.7500, 85.3700, 27.7172, 85.3240)

	assert.InDelta(t, forward, backward, 1e-9)
}

func TestDistance_MissingCoordinates(t *testing.T) {
	lat := 27.7172
	lon := 85.3240

	tests := []struct {
		name string
		a    geo.Point
		b    geo.Point
	}{
		{
			name: "first point empty",
			a:    geo.Point{},
			b:    geo.NewPoint(27.7500, 85.3700),
		},
		{
			name: "second point missing longitude",
			a:    geo.NewPoint(27.7172, 85.3240),
			b:    geo.Point{Latitude: &lat},
		},
		{
			name: "second point missing latitude",
			a:    geo.NewPoint(27.7172, 85.3240),
			b:    geo.Point{Longitude: &lon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, math.IsInf(geo.Distance(tt.a, tt.b), 1))
		})
	}
}

func TestDistance_KnownPoints(t *testing.T) {
	a := geo.NewPoint(27.7172, 85.3240)
	b := geo.NewPoint(27.7500, 85.3700)

	assert.InDelta(t, 5.7, geo.Distance(a, b), 0.2)
	assert.Zero(t, geo.Distance(a, a))
}
