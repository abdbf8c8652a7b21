package analysis

import (
	"time"

	"velotime/internal/geo"
)

// StoredComparison is one ride's captured comparison, keyed by activity ID.
type StoredComparison struct {
	ActivityID          int64          `json:"activity_id"`
	ActivityName        string         `json:"activity_name"`
	RideDate            time.Time      `json:"ride_date"`
	RideDurationSeconds float64        `json:"ride_duration_seconds"`
	CarDurationSeconds  float64        `json:"car_duration_seconds"`
	TimeSavedSeconds    float64        `json:"time_saved_seconds"`
	DistanceMeters      float64        `json:"distance_meters"`
	Condition           string         `json:"traffic_condition"`
	Source              string         `json:"source"`
	RouteSummary        string         `json:"route_summary,omitempty"`
	Start               geo.Coordinate `json:"start"`
	End                 geo.Coordinate `json:"end"`
	CapturedAt          time.Time      `json:"captured_at"`
}

// PendingCapture is a ride whose comparison could not be captured yet. It is
// retried on later analysis runs until maxPendingRetries is reached.
type PendingCapture struct {
	ActivityID          int64
	ActivityName        string
	RideDate            time.Time
	RideDurationSeconds float64
	Start               geo.Coordinate
	End                 geo.Coordinate
	DiscoveredAt        time.Time
	RetryCount          int
}
