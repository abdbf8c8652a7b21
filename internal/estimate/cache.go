package estimate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps another Provider and memoizes legs in Redis. Keys are
// bucketed to ~11m coordinate precision and the departure hour, so repeated
// lookups of the same commute route within an hour reuse one Directions call.
// Cache failures are logged and treated as misses.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedProvider) Directions(ctx context.Context, req RouteRequest) (Leg, error) {
	key := cacheKey(req)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var leg Leg
		if err := json.Unmarshal(b, &leg); err == nil {
			return leg, nil
		}
	} else if err != redis.Nil {
		log.Printf("estimate: cache read failed: %v", err)
	}

	leg, err := c.inner.Directions(ctx, req)
	if err != nil {
		return Leg{}, err
	}

	if b, err := json.Marshal(leg); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			log.Printf("estimate: cache write failed: %v", err)
		}
	}
	return leg, nil
}

func cacheKey(req RouteRequest) string {
	return fmt.Sprintf("est:%.4f,%.4f:%.4f,%.4f:%02d",
		req.Origin.Lat, req.Origin.Lng,
		req.Destination.Lat, req.Destination.Lng,
		req.DepartureTime.Hour())
}
