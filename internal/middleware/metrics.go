package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// RequestMetrics records request counts and latencies per route template.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
