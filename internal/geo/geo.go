// Package geo contains pure geographic computation helpers.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate is the (0,0) sentinel. Providers use
// it for "no fix", so it is never accepted as a real location.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Validate checks that the coordinate is a usable location.
func (c Coordinate) Validate() error {
	if c.IsZero() {
		return fmt.Errorf("coordinate (0,0) is unset")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90,90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range [-180,180]", c.Lng)
	}
	return nil
}

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// InitialBearingDegrees returns the initial bearing from a to b in degrees
// clockwise from true north, normalized to [0,360).
func InitialBearingDegrees(a, b Coordinate) float64 {
	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) - math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(deg+360, 360)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
