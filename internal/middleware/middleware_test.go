package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/quickcourt/internal/config"
	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/utils"
)

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func protected(t *testing.T, roles ...model.Role) *echo.Echo {
	t.Helper()
	e := echo.New()
	mw := []echo.MiddlewareFunc{JWTAuth("secret")}
	if len(roles) > 0 {
		mw = append(mw, RequireRole(roles...))
	}
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": Role(c)})
	}, mw...)
	return e
}

func TestJWTAuth(t *testing.T) {
	e := protected(t)

	rec := serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/me", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"Unauthorized"`)

	at, err := utils.NewAccessToken("secret", 7, "PLAYER", 5)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"PLAYER"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := protected(t, model.RoleOwner, model.RoleAdmin)

	player, err := utils.NewAccessToken("secret", 7, "PLAYER", 5)
	require.NoError(t, err)
	rec := serve(e, http.MethodGet, "/me", "Bearer "+player.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	owner, err := utils.NewAccessToken("secret", 8, "OWNER", 5)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", "Bearer "+owner.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
	e := echo.New()
	cache := NewRedisCache(config.CacheConfig{Enabled: true}, nil, nil)
	limit := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil)
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, cache, limit)

	rec := serve(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"data":[]}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"data":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
}

func TestCacheKeyIncludesPathParams(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "qc:cache"}
	key := func(id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/venues/"+id+"/courts", nil), httptest.NewRecorder())
		c.SetPath("/venues/:id/courts")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKeyFrom(cfg, c)
	}
	assert.NotEqual(t, key("1"), key("2"))
	assert.Equal(t, key("1"), key("1"))
	assert.Contains(t, key("1"), "qc:cache:")
}

func TestCacheScopeIgnoresQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "qc:cache"}
	assert.Equal(t, "qc:cache:scope:/v1/venues/:id/courts:7", scopeKey(cfg, "/v1/venues/:id/courts", []string{"7"}))
	assert.Equal(t, "qc:cache:scope:/v1/venues:", scopeKey(cfg, "/v1/venues", nil))
}

func TestCacheInvalidatorWithoutRedisIsNoop(t *testing.T) {
	var nilInv *CacheInvalidator
	assert.NotPanics(t, func() { nilInv.Invalidate(context.Background(), "/v1/venues") })

	inv := NewCacheInvalidator(config.CacheConfig{Enabled: true}, nil, nil)
	assert.NotPanics(t, func() { inv.Invalidate(context.Background(), "/v1/venues/:id/courts", "1") })
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/bookings", nil), httptest.NewRecorder())
	c.SetPath("/bookings")
	cfg := config.RateLimitConfig{Prefix: "qc:rl", KeyStrategy: "user"}
	assert.Equal(t, "qc:rl:user:anon", buildRateKey(cfg, c))

	c.Set(ctxUserID, uint64(12))
	assert.Equal(t, "qc:rl:user:12", buildRateKey(cfg, c))
}
