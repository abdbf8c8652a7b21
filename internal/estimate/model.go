// Package estimate produces car travel-time estimates for a route, preferring
// a live routing provider and falling back to the traffic heuristic.
package estimate

import (
	"context"
	"time"

	"velotime/internal/geo"
	"velotime/internal/traffic"
)

// Source identifies where an estimate came from.
type Source string

const (
	SourceLiveProvider Source = "live_provider"
	SourceHeuristic    Source = "heuristic"
)

// RouteRequest describes one origin/destination trip at a departure time.
// It is constructed per estimation call and never mutated.
type RouteRequest struct {
	Origin        geo.Coordinate `json:"origin"`
	Destination   geo.Coordinate `json:"destination"`
	DepartureTime time.Time      `json:"departure_time"`
}

// TravelEstimate is the result of estimating one RouteRequest.
type TravelEstimate struct {
	DurationSeconds float64           `json:"duration_seconds"`
	DistanceMeters  float64           `json:"distance_meters"`
	Condition       traffic.Condition `json:"traffic_condition"`
	Source          Source            `json:"source"`
	RouteSummary    string            `json:"route_summary,omitempty"`
}

// Leg is the raw answer from a live routing provider for one trip.
// TrafficDurationSeconds is zero when the provider had no traffic data.
type Leg struct {
	DurationSeconds        float64 `json:"duration_seconds"`
	TrafficDurationSeconds float64 `json:"traffic_duration_seconds"`
	DistanceMeters         float64 `json:"distance_meters"`
	Summary                string  `json:"summary"`
}

// Provider is a live routing backend. Errors from Directions never reach the
// engine's caller; they only trigger the heuristic fallback.
type Provider interface {
	Directions(ctx context.Context, req RouteRequest) (Leg, error)
}
