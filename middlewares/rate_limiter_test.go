package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	rate, err := ParseCustomRate("10-2m")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rate.Limit)
	assert.Equal(t, 2*time.Minute, rate.Period)

	rate, err = ParseCustomRate("5-1h")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, rate.Period)

	for _, bad := range []string{"10", "x-1m", "10-1d", "10-m", "0-1m"} {
		_, err := ParseCustomRate(bad)
		assert.Error(t, err, bad)
	}
}

func hit(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w.Code
}

func newLimitedRouter(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/limited", h, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestNewRateLimiterMemoryStore(t *testing.T) {
	r := newLimitedRouter(NewRateLimiterFactory(nil).NewRateLimiter("2-1m", "test_memory"))

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r))
}

func TestCombinedRateLimiterRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newLimitedRouter(NewRateLimiterFactory(client).CombinedRateLimiter("test_combined", "3-1m", "1-1h"))

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r), "hourly window is exhausted first")
}

func TestBrokenRateDisablesLimiting(t *testing.T) {
	r := newLimitedRouter(NewRateLimiterFactory(nil).NewRateLimiter("nonsense", "test_broken"))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(r))
	}
}
