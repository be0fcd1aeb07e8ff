package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

// metricsMiddleware records per-endpoint request counts and latency, plus an
// error count for 5xx responses.
func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		s.metrics.IncRequest(endpoint)
		s.metrics.RecordAPIDuration(endpoint, time.Since(start))

		if c.Writer.Status() >= 500 {
			s.metrics.IncError(endpoint, "http_5xx")
		}
	}
}
