package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"velotime/internal/compare"
	"velotime/internal/estimate"
	"velotime/internal/geo"
	"velotime/internal/strava"
	"velotime/internal/traffic"
)

// Pending captures are abandoned after this many failed attempts.
const maxPendingRetries = 3

// RideSource lists finished rides. *strava.Client satisfies it.
type RideSource interface {
	RecentRides(ctx context.Context, after time.Time) ([]strava.Activity, error)
}

// Estimator produces car estimates. *estimate.Engine satisfies it.
type Estimator interface {
	Estimate(ctx context.Context, req estimate.RouteRequest) (estimate.TravelEstimate, error)
}

// Storage persists comparisons and the pending queue. *Store satisfies it.
type Storage interface {
	InsertComparison(ctx context.Context, c StoredComparison) error
	HasComparison(ctx context.Context, activityID int64) (bool, error)
	ListComparisons(ctx context.Context) ([]StoredComparison, error)
	InsertPending(ctx context.Context, p PendingCapture) error
	ListPending(ctx context.Context, maxRetries int) ([]PendingCapture, error)
	DeletePending(ctx context.Context, activityID int64) error
	IncrementRetry(ctx context.Context, activityID int64) error
}

// Service analyzes rides sequentially, one estimate per ride, with an
// optional delay between items so provider quotas are respected across the
// batch (the session manager paces only its own calls).
type Service struct {
	rides     RideSource
	estimator Estimator
	store     Storage
	itemDelay time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(rides RideSource, estimator Estimator, store Storage, itemDelay time.Duration) *Service {
	return &Service{
		rides:     rides,
		estimator: estimator,
		store:     store,
		itemDelay: itemDelay,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// AnalyzeRecent captures comparisons for rides that started within lookback.
// Already-captured and coordinate-less rides are skipped. Rides whose capture
// fails are parked in the pending queue and retried on the next run. Returns
// the number of newly captured comparisons.
func (s *Service) AnalyzeRecent(ctx context.Context, lookback time.Duration) (int, error) {
	if n, err := s.processPending(ctx); err != nil {
		log.Printf("analysis: pending pass failed: %v", err)
	} else if n > 0 {
		log.Printf("analysis: captured %d pending comparisons", n)
	}

	rides, err := s.rides.RecentRides(ctx, s.now().Add(-lookback))
	if err != nil {
		return 0, fmt.Errorf("listing rides: %w", err)
	}

	captured := 0
	for i, ride := range rides {
		if i > 0 && s.itemDelay > 0 {
			if err := s.sleep(ctx, s.itemDelay); err != nil {
				return captured, err
			}
		}

		exists, err := s.store.HasComparison(ctx, ride.ID)
		if err != nil {
			return captured, err
		}
		if exists {
			continue
		}

		start, okStart := ride.StartCoord()
		end, okEnd := ride.EndCoord()
		if !okStart || !okEnd {
			log.Printf("analysis: activity %d has no coordinates, skipping", ride.ID)
			continue
		}

		if err := s.capture(ctx, ride, start, end); err != nil {
			if errors.Is(err, estimate.ErrInvalidRoute) {
				log.Printf("analysis: activity %d has an invalid route, skipping: %v", ride.ID, err)
				continue
			}
			log.Printf("analysis: activity %d capture failed, parking for retry: %v", ride.ID, err)
			if perr := s.store.InsertPending(ctx, PendingCapture{
				ActivityID:          ride.ID,
				ActivityName:        ride.Name,
				RideDate:            ride.StartDate,
				RideDurationSeconds: float64(ride.MovingTime),
				Start:               start,
				End:                 end,
				DiscoveredAt:        s.now(),
			}); perr != nil {
				return captured, perr
			}
			continue
		}
		captured++
	}
	return captured, nil
}

// processPending retries parked rides and drops the ones that succeed.
func (s *Service) processPending(ctx context.Context) (int, error) {
	pending, err := s.store.ListPending(ctx, maxPendingRetries)
	if err != nil {
		return 0, err
	}

	captured := 0
	for _, p := range pending {
		ride := strava.Activity{
			ID:         p.ActivityID,
			Name:       p.ActivityName,
			StartDate:  p.RideDate,
			MovingTime: int(p.RideDurationSeconds),
		}
		if err := s.capture(ctx, ride, p.Start, p.End); err != nil {
			if rerr := s.store.IncrementRetry(ctx, p.ActivityID); rerr != nil {
				return captured, rerr
			}
			continue
		}
		if err := s.store.DeletePending(ctx, p.ActivityID); err != nil {
			return captured, err
		}
		captured++
	}
	return captured, nil
}

func (s *Service) capture(ctx context.Context, ride strava.Activity, start, end geo.Coordinate) error {
	est, err := s.estimator.Estimate(ctx, estimate.RouteRequest{
		Origin:        start,
		Destination:   end,
		DepartureTime: ride.StartDate,
	})
	if err != nil {
		return err
	}

	c := compare.Compare(float64(ride.MovingTime), est)
	return s.store.InsertComparison(ctx, StoredComparison{
		ActivityID:          ride.ID,
		ActivityName:        ride.Name,
		RideDate:            ride.StartDate,
		RideDurationSeconds: c.RideDurationSeconds,
		CarDurationSeconds:  est.DurationSeconds,
		TimeSavedSeconds:    c.TimeSavedSeconds,
		DistanceMeters:      est.DistanceMeters,
		Condition:           string(est.Condition),
		Source:              string(est.Source),
		RouteSummary:        est.RouteSummary,
		Start:               start,
		End:                 end,
		CapturedAt:          s.now(),
	})
}

// Comparisons lists all captured comparisons, newest ride first.
func (s *Service) Comparisons(ctx context.Context) ([]StoredComparison, error) {
	return s.store.ListComparisons(ctx)
}

// Summary recomputes summary statistics from the stored comparisons.
func (s *Service) Summary(ctx context.Context) (compare.Summary, error) {
	stored, err := s.store.ListComparisons(ctx)
	if err != nil {
		return compare.Summary{}, err
	}
	comparisons := make([]compare.Comparison, 0, len(stored))
	for _, c := range stored {
		comparisons = append(comparisons, compare.Comparison{
			RideDurationSeconds: c.RideDurationSeconds,
			TimeSavedSeconds:    c.TimeSavedSeconds,
			Estimate: &estimate.TravelEstimate{
				DurationSeconds: c.CarDurationSeconds,
				DistanceMeters:  c.DistanceMeters,
				Condition:       traffic.Condition(c.Condition),
				Source:          estimate.Source(c.Source),
				RouteSummary:    c.RouteSummary,
			},
		})
	}
	return compare.Summarize(comparisons), nil
}

// RunMonitor re-runs the analysis on a fixed interval until ctx is done.
func (s *Service) RunMonitor(ctx context.Context, interval, lookback time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.AnalyzeRecent(ctx, lookback)
			if err != nil {
				log.Printf("analysis: monitor pass failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("analysis: captured %d new comparisons", n)
			}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
