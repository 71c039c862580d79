package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/service"
)

// Metrics instruments each request by its route template so path
// parameters do not explode the label set. The scrape endpoint itself is
// not observed.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
