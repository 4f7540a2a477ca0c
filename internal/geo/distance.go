package geo

import (
	"math"

	"github.com/pdiddy/price-scout/pkg/types"
)

const (
	// EarthRadiusMeters is the WGS84 semi-major axis.
	EarthRadiusMeters = 6378137.0

	// MetersPerMile converts statute miles to meters.
	MetersPerMile = 1609.34
)

// MilesToMeters converts a radius in miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// DistanceMiles returns the great-circle distance between a and b.
func DistanceMiles(a, b types.Coordinates) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c / MetersPerMile
}
