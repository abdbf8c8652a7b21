package estimate

import (
	"context"
	"fmt"
	"strconv"

	"googlemaps.github.io/maps"
)

// GoogleMapsProvider asks the Google Maps Directions API for a driving route
// with traffic-aware duration.
type GoogleMapsProvider struct {
	client *maps.Client
}

// NewGoogleMapsProvider creates a provider with the given API key. The key
// must have the Directions API enabled.
func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMapsProvider{client: client}, nil
}

// Directions returns the first leg of the best driving route. Departure time
// is passed through so the API includes duration_in_traffic.
func (p *GoogleMapsProvider) Directions(ctx context.Context, req RouteRequest) (Leg, error) {
	r := &maps.DirectionsRequest{
		Origin:        fmt.Sprintf("%f,%f", req.Origin.Lat, req.Origin.Lng),
		Destination:   fmt.Sprintf("%f,%f", req.Destination.Lat, req.Destination.Lng),
		Mode:          maps.TravelModeDriving,
		DepartureTime: strconv.FormatInt(req.DepartureTime.Unix(), 10),
		TrafficModel:  maps.TrafficModelBestGuess,
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return Leg{}, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Leg{}, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return Leg{
		DurationSeconds:        leg.Duration.Seconds(),
		TrafficDurationSeconds: leg.DurationInTraffic.Seconds(),
		DistanceMeters:         float64(leg.Distance.Meters),
		Summary:                routes[0].Summary,
	}, nil
}
