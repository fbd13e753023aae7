// Package geo holds the coordinate math and place-name helpers used when
// ranking providers by distance.
package geo

import (
	"math"

	"brightroots/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometres.
//
// A nil coordinate yields 0 rather than an error, so a provider without a
// known position sorts as if it were next to the user. Callers that need to
// tell the two apart must check for nil themselves.
func DistanceKm(a, b *models.Coordinates) float64 {
	if a == nil || b == nil {
		return 0
	}
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Pow(math.Sin(dLng/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// RoundKm rounds a distance to one decimal place.
func RoundKm(d float64) float64 {
	return math.Round(d*10) / 10
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
