package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// testRedis connects to TEST_REDIS_ADDR and skips the test when it is unset
// or unreachable.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.1"},
		{"user", "rl:user:ann@example.com"},
		{"route", "rl:route:GET /api/users/:email"},
		{"ip_route", "rl:ip:10.0.0.1:route:GET /api/users/:email"},
		{"", "rl:ip:10.0.0.1:route:GET /api/users/:email"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/users/Ann@example.com", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/api/users/:email")
		c.SetParamNames("email")
		c.SetParamValues("Ann@example.com")

		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}
		assert.Equal(t, tt.want, buildRateKey(cfg, c), tt.strategy)
	}
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, discard))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil, discard))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := serve(e, http.MethodGet, "/x")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "[]", string(body))

	_, _, _, ok = decodePayload(bs[:4])
	assert.False(t, ok)
}

func TestTokenBucket_Blocks(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Minute,
		KeyStrategy:    "route",
		Prefix:         "rl-test-" + uuid.NewString(),
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, discard))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x").Code)
	rec := serve(e, http.MethodGet, "/x")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRedisCache_HitAndPurge(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache-test-" + uuid.NewString(),
	}
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb, discard))
	e.GET("/api/events", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, []string{"jazz"})
	})

	first := serve(e, http.MethodGet, "/api/events?name=j")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/api/events?name=j")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	require.NoError(t, PurgeCache(context.Background(), rdb, cfg.Prefix))
	third := serve(e, http.MethodGet, "/api/events?name=j")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRequestLogger_PassesErrorsToEcho(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(discard))
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := serve(e, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
