package middleware

import (
	"strconv"
	"time"

	"tictacgo/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StatusRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictacgo_status_requests_total",
			Help: "Requests served by the local status server",
		},
		[]string{"route", "code"},
	)
)

func init() {
	prometheus.MustRegister(StatusRequests)
}

// Observe counts and logs each status request
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		StatusRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		logger.Debug("status request", "route", route, "code", code, "duration", time.Since(start))
	}
}
