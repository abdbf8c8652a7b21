package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"velotime/internal/estimate"
	"velotime/internal/geo"
	"velotime/internal/session"
)

type handler struct {
	deps ServerDeps
}

func (h *handler) Summary(c *gin.Context) {
	sum, err := h.deps.Analysis.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *handler) Comparisons(c *gin.Context) {
	comparisons, err := h.deps.Analysis.Comparisons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparisons)
}

// Estimate serves ad-hoc route estimates, e.g. for a "what if I rode this"
// dashboard widget.
func (h *handler) Estimate(c *gin.Context) {
	req, err := parseRouteRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, err := h.deps.Engine.Estimate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, estimate.ErrInvalidRoute) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *handler) Insights(c *gin.Context) {
	if h.deps.Insights == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insights not configured"})
		return
	}
	sum, err := h.deps.Analysis.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	recap, err := h.deps.Insights.Recap(c.Request.Context(), sum)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recap": recap})
}

// Analyze triggers an on-demand capture pass over recent rides.
func (h *handler) Analyze(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	captured, err := h.deps.Analysis.AnalyzeRecent(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		c.JSON(statusForSessionError(err), gin.H{"error": err.Error(), "captured": captured})
		return
	}
	c.JSON(http.StatusOK, gin.H{"captured": captured})
}

func statusForSessionError(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthenticated), errors.Is(err, session.ErrAuthenticationExpired):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func parseRouteRequest(c *gin.Context) (estimate.RouteRequest, error) {
	originLat, err := queryFloat(c, "origin_lat")
	if err != nil {
		return estimate.RouteRequest{}, err
	}
	originLng, err := queryFloat(c, "origin_lng")
	if err != nil {
		return estimate.RouteRequest{}, err
	}
	destLat, err := queryFloat(c, "dest_lat")
	if err != nil {
		return estimate.RouteRequest{}, err
	}
	destLng, err := queryFloat(c, "dest_lng")
	if err != nil {
		return estimate.RouteRequest{}, err
	}

	departure := time.Now()
	if v := c.Query("departure"); v != "" {
		departure, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return estimate.RouteRequest{}, errors.New("departure must be RFC3339")
		}
	}

	return estimate.RouteRequest{
		Origin:        geo.Coordinate{Lat: originLat, Lng: originLng},
		Destination:   geo.Coordinate{Lat: destLat, Lng: destLng},
		DepartureTime: departure,
	}, nil
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return 0, errors.New(key + " is required")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return f, nil
}
