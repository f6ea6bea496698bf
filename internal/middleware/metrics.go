package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Junior-NGOY/masomo-sub003/internal/service"
)

// unmatchedRoute labels requests that hit no route so scanners cannot blow up
// label cardinality.
const unmatchedRoute = "unmatched"

// Metrics returns middleware that records request latency per route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
