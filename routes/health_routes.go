package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterHealthRoutes(router *gin.Engine, ping func(ctx context.Context) error) {
	health := func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.WarnLogger.Warnf("Health check failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok from hotel booking service"})
	}
	router.GET("/health", health)
	router.HEAD("/health", health)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
