package estimate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"velotime/internal/traffic"
)

// ErrInvalidRoute marks a request that failed validation. It is a caller
// error and is never retried.
var ErrInvalidRoute = errors.New("invalid route")

// Live estimates are classified against the free-flow duration with wider
// margins than the heuristic table uses. Both boundaries are exclusive.
const (
	liveHeavyRatio    = 1.5
	liveModerateRatio = 1.2
)

// Engine turns RouteRequests into TravelEstimates. A nil provider means the
// engine runs heuristic-only.
type Engine struct {
	provider Provider
	model    *traffic.Model
}

func NewEngine(provider Provider, model *traffic.Model) *Engine {
	if model == nil {
		model = traffic.DefaultModel()
	}
	return &Engine{provider: provider, model: model}
}

// Estimate returns exactly one TravelEstimate for the request. It fails only
// on invalid input; provider unavailability or errors silently fall back to
// the heuristic model.
func (e *Engine) Estimate(ctx context.Context, req RouteRequest) (TravelEstimate, error) {
	if err := req.Origin.Validate(); err != nil {
		return TravelEstimate{}, fmt.Errorf("%w: origin: %v", ErrInvalidRoute, err)
	}
	if err := req.Destination.Validate(); err != nil {
		return TravelEstimate{}, fmt.Errorf("%w: destination: %v", ErrInvalidRoute, err)
	}

	if e.provider != nil {
		leg, err := e.provider.Directions(ctx, req)
		if err == nil {
			return liveEstimate(leg), nil
		}
		log.Printf("estimate: provider unavailable, falling back to heuristic: %v", err)
	}

	duration, distance, cond := e.model.Estimate(req.Origin, req.Destination, req.DepartureTime)
	return TravelEstimate{
		DurationSeconds: duration,
		DistanceMeters:  distance,
		Condition:       cond,
		Source:          SourceHeuristic,
	}, nil
}

func liveEstimate(leg Leg) TravelEstimate {
	est := TravelEstimate{
		DurationSeconds: leg.DurationSeconds,
		DistanceMeters:  leg.DistanceMeters,
		Condition:       traffic.ConditionUnknown,
		Source:          SourceLiveProvider,
		RouteSummary:    leg.Summary,
	}
	if leg.TrafficDurationSeconds > 0 && leg.DurationSeconds > 0 {
		est.DurationSeconds = leg.TrafficDurationSeconds
		ratio := leg.TrafficDurationSeconds / leg.DurationSeconds
		switch {
		case ratio > liveHeavyRatio:
			est.Condition = traffic.ConditionHeavy
		case ratio > liveModerateRatio:
			est.Condition = traffic.ConditionModerate
		default:
			est.Condition = traffic.ConditionLight
		}
	}
	return est
}
