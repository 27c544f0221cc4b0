package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymflow/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, cfg *Config) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg), mr
}

func TestSlidingWindowBlocksAfterLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:          true,
		WindowDuration:   time.Minute,
		WaitlistRequests: 3,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeWaitlist)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should pass", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeWaitlist)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	other, err := limiter.IsAllowed(ctx, "10.0.0.2", RateLimitTypeWaitlist)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestWindowSlides(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 1,
	})
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	res, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	now = now.Add(61 * time.Second)
	res, err = limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestWhitelistedAndDisabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 0,
		WhitelistedIPs:  []string{"127.0.0.1"},
	})

	res, err := limiter.IsAllowed(context.Background(), "127.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	limiter.config.Enabled = false
	res, err = limiter.IsAllowed(context.Background(), "10.9.9.9", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestGetRateLimitType(t *testing.T) {
	assert.Equal(t, RateLimitTypeHealth, getRateLimitType("/health"))
	assert.Equal(t, RateLimitTypeWaitlist, getRateLimitType("/api/v1/class-waitlist"))
	assert.Equal(t, RateLimitTypeWaitlist, getRateLimitType("/api/v1/class-waitlist/stats"))
	assert.Equal(t, RateLimitTypeBooking, getRateLimitType("/api/v1/bookings/:id/cancel"))
	assert.Equal(t, RateLimitTypeDefault, getRateLimitType("/api/v1/other"))
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:          true,
		WindowDuration:   time.Minute,
		WaitlistRequests: 1,
	})

	engine := gin.New()
	engine.Use(Middleware(limiter, logger.Wrap(zap.NewNop()), nil))
	engine.GET("/api/v1/class-waitlist", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/class-waitlist", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestMiddlewareFailsOpenWhenRedisIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, mr := newTestLimiter(t, &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 1,
	})
	mr.Close()

	engine := gin.New()
	engine.Use(Middleware(limiter, logger.Wrap(zap.NewNop()), nil))
	engine.GET("/anything", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
