// Package compare turns rides plus car estimates into signed time-saved
// values and rolls them into summary statistics.
package compare

import "velotime/internal/estimate"

// Comparison pairs an observed ride duration with a car estimate.
// TimeSavedSeconds is positive when cycling was faster.
type Comparison struct {
	RideDurationSeconds float64                  `json:"ride_duration_seconds"`
	Estimate            *estimate.TravelEstimate `json:"estimate"`
	TimeSavedSeconds    float64                  `json:"time_saved_seconds"`
}

// Compare builds a Comparison. Pure; inputs are validated upstream.
func Compare(rideDurationSeconds float64, est estimate.TravelEstimate) Comparison {
	return Comparison{
		RideDurationSeconds: rideDurationSeconds,
		Estimate:            &est,
		TimeSavedSeconds:    est.DurationSeconds - rideDurationSeconds,
	}
}

// Summary is a view over a set of comparisons, recomputed on demand. Values
// are unrounded; presentation decides display precision.
type Summary struct {
	Count                 int     `json:"count"`
	TotalTimeSavedSeconds float64 `json:"total_time_saved_seconds"`
	AvgTimeSavedSeconds   float64 `json:"avg_time_saved_seconds"`
	TotalDistanceMeters   float64 `json:"total_distance_meters"`
}

// Summarize folds comparisons with a non-nil estimate into a Summary.
// An empty input yields a zeroed Summary, never an error.
func Summarize(comparisons []Comparison) Summary {
	var s Summary
	for _, c := range comparisons {
		if c.Estimate == nil {
			continue
		}
		s.Count++
		s.TotalTimeSavedSeconds += c.TimeSavedSeconds
		s.TotalDistanceMeters += c.Estimate.DistanceMeters
	}
	if s.Count > 0 {
		s.AvgTimeSavedSeconds = s.TotalTimeSavedSeconds / float64(s.Count)
	}
	return s
}
