package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinematch/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func rateLimited(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewTokenBucket(cfg, rdb, nil))
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_BlocksAfterCapacity(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := rateLimited(cfg, rdb)

	first := post(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)

	blocked := post(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "message")

	// separate bucket per client
	assert.Equal(t, http.StatusOK, post(e, "10.0.0.2").Code)
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl"}
	e := rateLimited(cfg, rdb)

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	}
}

func TestTokenBucket_DisabledOrNoRedis(t *testing.T) {
	e := rateLimited(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	assert.Equal(t, "rl:ip:192.0.2.7", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:192.0.2.7:user:anon:route:POST /api/auth/login",
		buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))

	c.Set("user_id", "u1")
	assert.Equal(t, "rl:user:u1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}
