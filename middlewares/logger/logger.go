package logger

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/metrics"
	"github.com/sirupsen/logrus"
)

// GinLogger logs every request through the structured logger and records HTTP metrics.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveHTTP(route, strconv.Itoa(status), elapsed)

		entry := logger.InfoLogger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if userID := c.GetString("user_id"); userID != "" {
			entry = entry.WithField("user_id", userID)
		}

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}
