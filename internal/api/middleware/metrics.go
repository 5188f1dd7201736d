package middleware

import (
	"strconv"
	"time"

	"vidhub-go/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 记录请求耗时与并发数
// endpoint 取路由模板（/api/v1/videos/:id），未匹配的路由统一归为 unmatched，避免标签基数爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		metrics.RequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
		metrics.RequestsInFlight.Dec()
	}
}
