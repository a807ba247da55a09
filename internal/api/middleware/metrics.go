package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yaroslav/haloclient/internal/metrics"
)

// Metrics records request count, latency and in-flight requests.
// Routes are labeled by their pattern so object names do not explode the
// label space.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
