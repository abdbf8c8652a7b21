// Package strava is the ride-data provider client. Every call goes through
// the session manager, which handles credential renewal and pacing.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.strava.com/api/v3"

// Requester is satisfied by *session.Manager.
type Requester interface {
	Request(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	session Requester
	baseURL string
}

func NewClient(session Requester) *Client {
	return &Client{session: session, baseURL: defaultBaseURL}
}

// Activities lists one page of the athlete's activities.
func (c *Client) Activities(ctx context.Context, page, perPage int) ([]Activity, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return c.activities(ctx, q)
}

// RecentRides lists ride activities started after the given time.
func (c *Client) RecentRides(ctx context.Context, after time.Time) ([]Activity, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatInt(after.Unix(), 10))
	q.Set("per_page", "200")
	all, err := c.activities(ctx, q)
	if err != nil {
		return nil, err
	}
	rides := all[:0]
	for _, a := range all {
		if a.Type == "Ride" {
			rides = append(rides, a)
		}
	}
	return rides, nil
}

// Athlete fetches the authenticated athlete's profile.
func (c *Client) Athlete(ctx context.Context) (Athlete, error) {
	body, err := c.session.Request(ctx, c.baseURL+"/athlete")
	if err != nil {
		return Athlete{}, err
	}
	var a Athlete
	if err := json.Unmarshal(body, &a); err != nil {
		return Athlete{}, fmt.Errorf("decoding athlete: %w", err)
	}
	return a, nil
}

func (c *Client) activities(ctx context.Context, q url.Values) ([]Activity, error) {
	body, err := c.session.Request(ctx, c.baseURL+"/athlete/activities?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var activities []Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}
	return activities, nil
}
