package compare

import (
	"math"
	"testing"

	"velotime/internal/estimate"
	"velotime/internal/traffic"
)

func TestCompare_ExactMath(t *testing.T) {
	tests := []struct {
		name      string
		rideSec   float64
		carSec    float64
		wantSaved float64
	}{
		{"bike faster", 25.5 * 60, 35.2 * 60, 9.7 * 60},
		{"car faster", 15.2 * 60, 12.1 * 60, -3.1 * 60},
		{"tie", 1800, 1800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.rideSec, estimate.TravelEstimate{
				DurationSeconds: tt.carSec,
				DistanceMeters:  5200,
				Condition:       traffic.ConditionModerate,
				Source:          estimate.SourceLiveProvider,
			})
			if math.Abs(c.TimeSavedSeconds-tt.wantSaved) > 1e-9 {
				t.Errorf("TimeSavedSeconds = %f, want %f (no clamping)", c.TimeSavedSeconds, tt.wantSaved)
			}
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero value", s)
	}
	s = Summarize([]Comparison{})
	if s != (Summary{}) {
		t.Errorf("Summarize([]) = %+v, want zero value", s)
	}
}

func TestSummarize_SkipsMissingEstimates(t *testing.T) {
	comparisons := []Comparison{
		Compare(1500, estimate.TravelEstimate{DurationSeconds: 2100, DistanceMeters: 5200}),
		{RideDurationSeconds: 900, TimeSavedSeconds: 999}, // no estimate, ignored
		Compare(1200, estimate.TravelEstimate{DurationSeconds: 900, DistanceMeters: 3800}),
	}

	s := Summarize(comparisons)
	if s.Count != 2 {
		t.Fatalf("Count = %d, want 2", s.Count)
	}
	if math.Abs(s.TotalTimeSavedSeconds-(600-300)) > 1e-9 {
		t.Errorf("TotalTimeSavedSeconds = %f, want 300", s.TotalTimeSavedSeconds)
	}
	if math.Abs(s.AvgTimeSavedSeconds-150) > 1e-9 {
		t.Errorf("AvgTimeSavedSeconds = %f, want 150", s.AvgTimeSavedSeconds)
	}
	if math.Abs(s.TotalDistanceMeters-9000) > 1e-9 {
		t.Errorf("TotalDistanceMeters = %f, want 9000", s.TotalDistanceMeters)
	}
}
