package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/logger"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter builds per-route, per-caller limits. With a nil redis client the
// counters are kept in process memory.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiterFactory(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client}
}

// rateLimitKey identifies the caller by authenticated user, falling back to client IP.
func rateLimitKey(c *gin.Context) string {
	if userID, ok := c.Get("user_id"); ok {
		if s, ok := userID.(string); ok && s != "" {
			return "user:" + s
		}
	}
	return "ip:" + c.ClientIP()
}

func (r *RateLimiter) store(routeID string, period time.Duration) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	}
	if r.redis == nil {
		return memorystore.NewStoreWithOptions(opts), nil
	}
	store, err := redisstore.NewStoreWithOptions(r.redis, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
	}
	return store, nil
}

// ParseCustomRate allows formats like "10-2m", "30-20m", "5-1h", "20-10s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	var unit time.Duration
	switch {
	case strings.HasSuffix(durationStr, "s"):
		unit = time.Second
	case strings.HasSuffix(durationStr, "m"):
		unit = time.Minute
	case strings.HasSuffix(durationStr, "h"):
		unit = time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil || n <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	return limiter.Rate{
		Period: time.Duration(n) * unit,
		Limit:  int64(limit),
	}, nil
}

func (r *RateLimiter) instance(rateStr, routeID string) (*limiter.Limiter, error) {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		return nil, err
	}
	store, err := r.store(routeID, rate.Period)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

func limitReached(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "RATE_LIMITED",
			"message": "too many requests, slow down",
		},
	})
}

func passThrough(c *gin.Context) { c.Next() }

// NewRateLimiter limits a route with a rate like "10-2m". A broken rate or store
// disables limiting for the route rather than the route itself.
func (r *RateLimiter) NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	l, err := r.instance(rateStr, routeID)
	if err != nil {
		logger.ErrorLogger.Errorf("Rate limiter for route %s disabled: %v", routeID, err)
		return passThrough
	}

	return ginmiddleware.NewMiddleware(l,
		ginmiddleware.WithKeyGetter(rateLimitKey),
		ginmiddleware.WithLimitReachedHandler(limitReached),
		ginmiddleware.WithErrorHandler(func(c *gin.Context, err error) {
			logger.ErrorLogger.Errorf("Rate limiter store error on route %s: %v", routeID, err)
			c.Next()
		}),
	)
}

// CombinedRateLimiter enforces several windows at once, e.g. "5-1m" and "30-1h".
func (r *RateLimiter) CombinedRateLimiter(routeID string, rateStrings ...string) gin.HandlerFunc {
	var limiters []*limiter.Limiter
	for i, rateStr := range rateStrings {
		l, err := r.instance(rateStr, fmt.Sprintf("%s_%d", routeID, i))
		if err != nil {
			logger.ErrorLogger.Errorf("Rate %q for route %s skipped: %v", rateStr, routeID, err)
			continue
		}
		limiters = append(limiters, l)
	}

	return func(c *gin.Context) {
		key := rateLimitKey(c)
		for _, l := range limiters {
			lctx, err := l.Get(c.Request.Context(), key)
			if err != nil {
				logger.ErrorLogger.Errorf("Rate limiter store error on route %s: %v", routeID, err)
				continue
			}
			c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
			if lctx.Reached {
				limitReached(c)
				return
			}
		}
		c.Next()
	}
}
