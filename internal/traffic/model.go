// Package traffic implements the deterministic traffic-aware car duration
// heuristic used when no live routing provider is available.
package traffic

import (
	"math"
	"time"

	"velotime/internal/geo"
)

// Condition buckets a car trip by how congested the roads are expected to be.
type Condition string

const (
	ConditionLight    Condition = "light"
	ConditionModerate Condition = "moderate"
	ConditionHeavy    Condition = "heavy"
	ConditionUnknown  Condition = "unknown"
)

// Model holds the multiplier tables and constants of the heuristic. Hour and
// weekday indexes missing from the tables fall back to 1.0. The departure
// time is interpreted in whatever zone the caller supplies; pass route-local
// time for meaningful rush-hour bands.
type Model struct {
	BaseSpeedKmh           float64
	RoadFactor             float64
	ParkingOverheadSeconds float64
	LightDelayPerKmSeconds float64
	MaxLightDelaySeconds   float64

	Hourly map[int]float64
	Daily  map[time.Weekday]float64
}

// DefaultModel returns the standard urban model: 35 km/h free-flow speed,
// 1.3 road detour factor, morning rush 1.4x, evening rush 1.5x, lunch 1.1x,
// late night 0.7-0.8x, weekends 0.9x.
func DefaultModel() *Model {
	return &Model{
		BaseSpeedKmh:           35.0,
		RoadFactor:             1.3,
		ParkingOverheadSeconds: 420,
		LightDelayPerKmSeconds: 30,
		MaxLightDelaySeconds:   300,
		Hourly: map[int]float64{
			0: 0.7, 1: 0.7, 2: 0.7, 3: 0.7, 4: 0.7,
			7: 1.4, 8: 1.4,
			12: 1.1,
			17: 1.5, 18: 1.5,
			23: 0.8,
		},
		Daily: map[time.Weekday]float64{
			time.Saturday: 0.9,
			time.Sunday:   0.9,
		},
	}
}

// HourlyMultiplier returns the congestion multiplier for an hour of day.
func (m *Model) HourlyMultiplier(hour int) float64 {
	if v, ok := m.Hourly[hour]; ok {
		return v
	}
	return 1.0
}

// DailyMultiplier returns the congestion multiplier for a day of week.
func (m *Model) DailyMultiplier(day time.Weekday) float64 {
	if v, ok := m.Daily[day]; ok {
		return v
	}
	return 1.0
}

// Multiplier combines the hourly and daily tables for a departure time.
func (m *Model) Multiplier(departure time.Time) float64 {
	return m.HourlyMultiplier(departure.Hour()) * m.DailyMultiplier(departure.Weekday())
}

// Classify maps a combined multiplier to a condition bucket. Both boundaries
// are exclusive: exactly 1.4 is moderate, exactly 1.1 is light.
func (m *Model) Classify(multiplier float64) Condition {
	switch {
	case multiplier > 1.4:
		return ConditionHeavy
	case multiplier > 1.1:
		return ConditionModerate
	default:
		return ConditionLight
	}
}

// Estimate computes the heuristic car duration for a trip. It is a pure
// function of its inputs: great-circle distance scaled by the road factor,
// driven at the base speed divided by the combined multiplier, plus fixed
// parking overhead and a distance-capped traffic light delay. The returned
// distance is the road distance in meters.
func (m *Model) Estimate(origin, destination geo.Coordinate, departure time.Time) (durationSeconds, distanceMeters float64, cond Condition) {
	roadKm := geo.HaversineKm(origin, destination) * m.RoadFactor
	multiplier := m.Multiplier(departure)

	effectiveSpeedKmh := m.BaseSpeedKmh / multiplier
	lightDelay := math.Min(roadKm*m.LightDelayPerKmSeconds, m.MaxLightDelaySeconds)

	durationSeconds = (roadKm/effectiveSpeedKmh)*3600 + m.ParkingOverheadSeconds + lightDelay
	return durationSeconds, roadKm * 1000, m.Classify(multiplier)
}
