package strava

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeRequester struct {
	body    []byte
	err     error
	lastURL string
}

func (f *fakeRequester) Request(ctx context.Context, url string) ([]byte, error) {
	f.lastURL = url
	return f.body, f.err
}

func TestRecentRides_FiltersAndDecodes(t *testing.T) {
	req := &fakeRequester{body: []byte(`[
		{"id": 101, "name": "Morning Commute", "type": "Ride",
		 "start_date": "2026-08-25T08:00:00Z", "distance": 5200.0, "moving_time": 1530,
		 "start_latlng": [37.7946, -122.3999], "end_latlng": [37.7599, -122.4148]},
		{"id": 102, "name": "Lunch Run", "type": "Run",
		 "start_date": "2026-08-25T12:00:00Z", "distance": 4000.0, "moving_time": 1400,
		 "start_latlng": [37.79, -122.40], "end_latlng": [37.80, -122.41]},
		{"id": 103, "name": "Trainer Session", "type": "Ride",
		 "start_date": "2026-08-25T19:00:00Z", "distance": 12000.0, "moving_time": 1800,
		 "start_latlng": [], "end_latlng": []}
	]`)}
	c := NewClient(req)

	rides, err := c.RecentRides(context.Background(), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RecentRides() error = %v", err)
	}
	if len(rides) != 2 {
		t.Fatalf("got %d rides, want 2 (runs filtered out)", len(rides))
	}

	ride := rides[0]
	if ride.ID != 101 || ride.MovingTime != 1530 {
		t.Errorf("unexpected ride: %+v", ride)
	}
	start, ok := ride.StartCoord()
	if !ok || math.Abs(start.Lat-37.7946) > 1e-9 {
		t.Errorf("StartCoord() = %+v, %v", start, ok)
	}

	// indoor ride has no fix
	if _, ok := rides[1].StartCoord(); ok {
		t.Errorf("empty start_latlng should not yield a coordinate")
	}
}

func TestActivities_PagesThroughSession(t *testing.T) {
	req := &fakeRequester{body: []byte(`[]`)}
	c := NewClient(req)

	if _, err := c.Activities(context.Background(), 3, 50); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	want := defaultBaseURL + "/athlete/activities?page=3&per_page=50"
	if req.lastURL != want {
		t.Errorf("requested %s, want %s", req.lastURL, want)
	}
}

func TestTokenSource_Refresh(t *testing.T) {
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %s", got)
		}
		if got := r.Form.Get("refresh_token"); got != "ref-old" {
			t.Errorf("refresh_token = %s", got)
		}
		fmt.Fprint(w, `{"access_token": "tok-new", "refresh_token": "ref-new", "expires_in": 21600}`)
	}))
	defer srv.Close()

	ts := NewTokenSource("client-id", "client-secret")
	ts.tokenURL = srv.URL
	ts.now = func() time.Time { return now }

	cred, err := ts.Refresh(context.Background(), "ref-old")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if cred.AccessToken != "tok-new" || cred.RefreshToken != "ref-new" {
		t.Errorf("unexpected credential: %+v", cred)
	}
	if want := now.Add(21600 * time.Second).UnixMilli(); cred.ExpiresAt != want {
		t.Errorf("ExpiresAt = %d, want %d", cred.ExpiresAt, want)
	}
}

func TestTokenSource_RefreshRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	ts := NewTokenSource("client-id", "client-secret")
	ts.tokenURL = srv.URL

	if _, err := ts.Refresh(context.Background(), "ref-old"); err == nil {
		t.Fatal("Refresh() should fail on non-200 response")
	}
}
