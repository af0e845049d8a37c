package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kit-rental/internal/config"
	"github.com/iliyamo/kit-rental/internal/utils"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, email, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken("secret", email, role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	admin := e.Group("/admin", JWTAuth("secret"), RequireRole("ADMIN"))
	admin.GET("/who", func(c echo.Context) error {
		return c.String(http.StatusOK, UserEmail(c)+"|"+Role(c))
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin/who", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/who", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/who", nil)
	req.Header.Set("Authorization", bearer(t, "asha@example.com", "CUSTOMER"))
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/who", nil)
	req.Header.Set("Authorization", bearer(t, "admin@w3.com", "ADMIN"))
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@w3.com|ADMIN", rec.Body.String())
}

func TestSessionCookie(t *testing.T) {
	e := echo.New()
	e.Use(Session(false))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, SessionID(c)) })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, SessionCookie, ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.Zero(t, ck.MaxAge)
	assert.Equal(t, ck.Value, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: ck.Value})
	rec = serve(e, req)
	assert.Equal(t, ck.Value, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "existing session is reused")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	rec = serve(e, req)
	assert.NotEqual(t, "forged", rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestRedisCache(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "kitcache"}

	calls := 0
	e := echo.New()
	e.GET("/kits/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
	}, NewRedisCache(cfg, rdb))
	e.GET("/missing", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "kit not found"})
	}, NewRedisCache(cfg, rdb))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/kits/camp-starter", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	first := rec.Body.String()

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/kits/camp-starter", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, first, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
	assert.Equal(t, 1, calls)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/kits/trek-lite", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "path values are part of the key")
	assert.Contains(t, rec.Body.String(), "trek-lite")

	serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	rec = serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "non-200 responses are not cached")
	assert.Equal(t, 4, calls)
}

func TestRedisCacheDoesNotReplayCookies(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "kitcache"}

	e := echo.New()
	e.GET("/kits", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"kits": []string{"camp-starter"}})
	}, Session(false), NewRedisCache(cfg, rdb))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/kits", nil))
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.Len(t, rec.Result().Cookies(), 1)
	first := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/kits", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "11111111-2222-4333-8444-555555555555"})
	rec = serve(e, req)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Result().Cookies(), "a cached response must not carry another visitor's cookie")

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/kits", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, first.Value, rec.Result().Cookies()[0].Value)
}

func TestRedisCacheDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestTokenBucket(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/kits", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/kits")

	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:GET /v1/kits", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	c.Set(ctxUserEmail, "asha@example.com")
	assert.Equal(t, "rl:user:asha@example.com", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Contains(t, buf.String(), `"msg":"request handled"`)
	assert.Contains(t, buf.String(), `"status":200`)

	buf.Reset()
	serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"status":500`)
}
