// Package http exposes the dashboard API; it renders nothing and persists
// nothing itself.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"velotime/internal/analysis"
	"velotime/internal/estimate"
	"velotime/internal/insights"
)

type ServerDeps struct {
	Analysis *analysis.Service
	Engine   *estimate.Engine
	Insights *insights.Generator // nil disables /api/insights
}

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(Logging(), Recovery())

	h := &handler{deps: deps}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.GET("/summary", h.Summary)
	api.GET("/comparisons", h.Comparisons)
	api.GET("/estimate", h.Estimate)
	api.GET("/insights", h.Insights)
	api.POST("/analyze", h.Analyze)

	return r
}
