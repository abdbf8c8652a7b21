package strava

import (
	"time"

	"velotime/internal/geo"
)

// Activity is the subset of a Strava activity the analyzer needs.
// Coordinates arrive as [lat, lng] pairs and may be empty for indoor rides.
type Activity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	StartDate   time.Time `json:"start_date"`
	Distance    float64   `json:"distance"`    // meters
	MovingTime  int       `json:"moving_time"` // seconds
	StartLatLng []float64 `json:"start_latlng"`
	EndLatLng   []float64 `json:"end_latlng"`
}

// StartCoord returns the start coordinate if the activity has a
// two-dimensional fix.
func (a Activity) StartCoord() (geo.Coordinate, bool) {
	return coord(a.StartLatLng)
}

// EndCoord returns the end coordinate if the activity has a two-dimensional
// fix.
func (a Activity) EndCoord() (geo.Coordinate, bool) {
	return coord(a.EndLatLng)
}

func coord(latlng []float64) (geo.Coordinate, bool) {
	if len(latlng) != 2 {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: latlng[0], Lng: latlng[1]}, true
}

// Athlete is the authenticated athlete's profile.
type Athlete struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	City      string `json:"city"`
}
