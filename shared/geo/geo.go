// Package geo provides great-circle distance calculations between
// property coordinates.
package geo

import (
	"math"
)

// earthRadiusKM is the mean radius of the earth in kilometers.
const earthRadiusKM = 6371.0

// Point is a pair of decimal-degree coordinates. Either value may be nil when
// a property has no location on record.
type Point struct {
	Latitude  *float64
	Longitude *float64
}

func NewPoint(lat, lon float64) Point {
	return Point{Latitude: &lat, Longitude: &lon}
}

// Known reports whether both coordinates are present.
func (p Point) Known() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Distance returns the great-circle distance between two points in kilometers
// using the Haversine formula. A point with a missing coordinate is treated as
// infinitely far away, never as zero distance.
func Distance(a, b Point) float64 {
	if !a.Known() || !b.Known() {
		return math.Inf(1)
	}

	return Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
}

// Haversine computes the great-circle distance in kilometers between two
// coordinates given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * earthRadiusKM
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
