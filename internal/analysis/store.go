// Package analysis pulls finished rides, estimates the matching car trip, and
// persists the comparisons.
package analysis

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists comparisons and the pending-capture queue in PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS comparisons (
            activity_id           BIGINT PRIMARY KEY,
            activity_name         TEXT NOT NULL,
            ride_date             TIMESTAMPTZ NOT NULL,
            ride_duration_seconds DOUBLE PRECISION NOT NULL,
            car_duration_seconds  DOUBLE PRECISION NOT NULL,
            time_saved_seconds    DOUBLE PRECISION NOT NULL,
            distance_meters       DOUBLE PRECISION NOT NULL,
            traffic_condition     TEXT NOT NULL,
            source                TEXT NOT NULL,
            route_summary         TEXT NOT NULL DEFAULT '',
            start_lat             DOUBLE PRECISION NOT NULL,
            start_lng             DOUBLE PRECISION NOT NULL,
            end_lat               DOUBLE PRECISION NOT NULL,
            end_lng               DOUBLE PRECISION NOT NULL,
            captured_at           TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS pending_captures (
            activity_id           BIGINT PRIMARY KEY,
            activity_name         TEXT NOT NULL,
            ride_date             TIMESTAMPTZ NOT NULL,
            ride_duration_seconds DOUBLE PRECISION NOT NULL,
            start_lat             DOUBLE PRECISION NOT NULL,
            start_lng             DOUBLE PRECISION NOT NULL,
            end_lat               DOUBLE PRECISION NOT NULL,
            end_lng               DOUBLE PRECISION NOT NULL,
            discovered_at         TIMESTAMPTZ NOT NULL,
            retry_count           INT NOT NULL DEFAULT 0
        );`)
	return err
}

func (s *Store) InsertComparison(ctx context.Context, c StoredComparison) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO comparisons (
            activity_id, activity_name, ride_date,
            ride_duration_seconds, car_duration_seconds, time_saved_seconds,
            distance_meters, traffic_condition, source, route_summary,
            start_lat, start_lng, end_lat, end_lng, captured_at
        ) VALUES (
            $1, $2, $3,
            $4, $5, $6,
            $7, $8, $9, $10,
            $11, $12, $13, $14, $15
        )
        ON CONFLICT (activity_id) DO NOTHING`,
		c.ActivityID, c.ActivityName, c.RideDate,
		c.RideDurationSeconds, c.CarDurationSeconds, c.TimeSavedSeconds,
		c.DistanceMeters, c.Condition, c.Source, c.RouteSummary,
		c.Start.Lat, c.Start.Lng, c.End.Lat, c.End.Lng, c.CapturedAt,
	)
	return err
}

func (s *Store) HasComparison(ctx context.Context, activityID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM comparisons WHERE activity_id = $1)`, activityID,
	).Scan(&exists)
	return exists, err
}

func (s *Store) ListComparisons(ctx context.Context) ([]StoredComparison, error) {
	rows, err := s.db.Query(ctx, `
        SELECT activity_id, activity_name, ride_date,
               ride_duration_seconds, car_duration_seconds, time_saved_seconds,
               distance_meters, traffic_condition, source, route_summary,
               start_lat, start_lng, end_lat, end_lng, captured_at
        FROM comparisons
        ORDER BY ride_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredComparison
	for rows.Next() {
		var c StoredComparison
		if err := rows.Scan(
			&c.ActivityID, &c.ActivityName, &c.RideDate,
			&c.RideDurationSeconds, &c.CarDurationSeconds, &c.TimeSavedSeconds,
			&c.DistanceMeters, &c.Condition, &c.Source, &c.RouteSummary,
			&c.Start.Lat, &c.Start.Lng, &c.End.Lat, &c.End.Lng, &c.CapturedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) InsertPending(ctx context.Context, p PendingCapture) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO pending_captures (
            activity_id, activity_name, ride_date, ride_duration_seconds,
            start_lat, start_lng, end_lat, end_lng, discovered_at, retry_count
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
        ON CONFLICT (activity_id) DO NOTHING`,
		p.ActivityID, p.ActivityName, p.RideDate, p.RideDurationSeconds,
		p.Start.Lat, p.Start.Lng, p.End.Lat, p.End.Lng, p.DiscoveredAt,
	)
	return err
}

func (s *Store) ListPending(ctx context.Context, maxRetries int) ([]PendingCapture, error) {
	rows, err := s.db.Query(ctx, `
        SELECT activity_id, activity_name, ride_date, ride_duration_seconds,
               start_lat, start_lng, end_lat, end_lng, discovered_at, retry_count
        FROM pending_captures
        WHERE retry_count < $1
        ORDER BY discovered_at ASC`, maxRetries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingCapture
	for rows.Next() {
		var p PendingCapture
		if err := rows.Scan(
			&p.ActivityID, &p.ActivityName, &p.RideDate, &p.RideDurationSeconds,
			&p.Start.Lat, &p.Start.Lng, &p.End.Lat, &p.End.Lng, &p.DiscoveredAt, &p.RetryCount,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePending(ctx context.Context, activityID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM pending_captures WHERE activity_id = $1`, activityID)
	return err
}

func (s *Store) IncrementRetry(ctx context.Context, activityID int64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE pending_captures SET retry_count = retry_count + 1 WHERE activity_id = $1`, activityID)
	return err
}
