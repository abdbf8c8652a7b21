package estimate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"velotime/internal/geo"
	"velotime/internal/traffic"
)

type fakeProvider struct {
	leg   Leg
	err   error
	calls int
}

func (f *fakeProvider) Directions(ctx context.Context, req RouteRequest) (Leg, error) {
	f.calls++
	return f.leg, f.err
}

func validRequest() RouteRequest {
	return RouteRequest{
		Origin:        geo.Coordinate{Lat: 37.7946, Lng: -122.3999},
		Destination:   geo.Coordinate{Lat: 37.7599, Lng: -122.4148},
		DepartureTime: time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC),
	}
}

func TestEstimate_InvalidRoute(t *testing.T) {
	valid := geo.Coordinate{Lat: 37.7946, Lng: -122.3999}

	tests := []struct {
		name                string
		origin, destination geo.Coordinate
	}{
		{"zero origin", geo.Coordinate{}, valid},
		{"zero destination", valid, geo.Coordinate{}},
		{"both zero", geo.Coordinate{}, geo.Coordinate{}},
		{"latitude out of range", geo.Coordinate{Lat: 95, Lng: 10}, valid},
		{"longitude out of range", valid, geo.Coordinate{Lat: 10, Lng: 181}},
	}

	provider := &fakeProvider{}
	engine := NewEngine(provider, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Estimate(context.Background(), RouteRequest{
				Origin:        tt.origin,
				Destination:   tt.destination,
				DepartureTime: time.Now(),
			})
			if !errors.Is(err, ErrInvalidRoute) {
				t.Errorf("Estimate() error = %v, want ErrInvalidRoute", err)
			}
		})
	}

	if provider.calls != 0 {
		t.Errorf("provider called %d times for invalid input, want 0", provider.calls)
	}
}

func TestEstimate_HeuristicWhenNoProvider(t *testing.T) {
	engine := NewEngine(nil, traffic.DefaultModel())

	est, err := engine.Estimate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if est.Source != SourceHeuristic {
		t.Errorf("source = %s, want %s", est.Source, SourceHeuristic)
	}
	if est.DurationSeconds <= 0 || est.DistanceMeters <= 0 {
		t.Errorf("want positive duration and distance, got %f s, %f m", est.DurationSeconds, est.DistanceMeters)
	}
}

func TestEstimate_FallsBackOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("maps api error: DEADLINE_EXCEEDED")}
	engine := NewEngine(provider, nil)

	est, err := engine.Estimate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("provider failure must not surface, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
	if est.Source != SourceHeuristic {
		t.Errorf("source = %s, want %s", est.Source, SourceHeuristic)
	}
}

func TestEstimate_LiveProvider(t *testing.T) {
	tests := []struct {
		name          string
		leg           Leg
		wantDuration  float64
		wantCondition traffic.Condition
	}{
		{
			name:          "heavy above exclusive boundary",
			leg:           Leg{DurationSeconds: 1000, TrafficDurationSeconds: 1600, DistanceMeters: 5200},
			wantDuration:  1600,
			wantCondition: traffic.ConditionHeavy,
		},
		{
			name:          "exactly 1.5 is moderate",
			leg:           Leg{DurationSeconds: 1000, TrafficDurationSeconds: 1500, DistanceMeters: 5200},
			wantDuration:  1500,
			wantCondition: traffic.ConditionModerate,
		},
		{
			name:          "moderate",
			leg:           Leg{DurationSeconds: 1000, TrafficDurationSeconds: 1300, DistanceMeters: 5200},
			wantDuration:  1300,
			wantCondition: traffic.ConditionModerate,
		},
		{
			name:          "exactly 1.2 is light",
			leg:           Leg{DurationSeconds: 1000, TrafficDurationSeconds: 1200, DistanceMeters: 5200},
			wantDuration:  1200,
			wantCondition: traffic.ConditionLight,
		},
		{
			name:          "no traffic data is unknown",
			leg:           Leg{DurationSeconds: 1000, DistanceMeters: 5200},
			wantDuration:  1000,
			wantCondition: traffic.ConditionUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&fakeProvider{leg: tt.leg}, nil)
			est, err := engine.Estimate(context.Background(), validRequest())
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if est.Source != SourceLiveProvider {
				t.Errorf("source = %s, want %s", est.Source, SourceLiveProvider)
			}
			if est.DurationSeconds != tt.wantDuration {
				t.Errorf("duration = %f, want %f", est.DurationSeconds, tt.wantDuration)
			}
			if est.Condition != tt.wantCondition {
				t.Errorf("condition = %s, want %s", est.Condition, tt.wantCondition)
			}
		})
	}
}

func TestCacheKey_BucketsByHour(t *testing.T) {
	req := validRequest()
	same := req
	same.DepartureTime = req.DepartureTime.Add(20 * time.Minute)
	if cacheKey(req) != cacheKey(same) {
		t.Errorf("same hour should share a key: %s vs %s", cacheKey(req), cacheKey(same))
	}

	later := req
	later.DepartureTime = req.DepartureTime.Add(time.Hour)
	if cacheKey(req) == cacheKey(later) {
		t.Errorf("different hours should not share a key: %s", cacheKey(req))
	}
}
