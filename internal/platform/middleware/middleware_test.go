package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-platform/service-booking/internal/platform/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdentityRouter(jwtManager *auth.JWTManager, allowHeader bool) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(jwtManager, allowHeader), func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.String(http.StatusOK, id.String()+"|"+role)
	})
	r.GET("/admin", AuthMiddleware(jwtManager, allowHeader), RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Minute)
	userID := uuid.New()

	t.Run("header identity when enabled", func(t *testing.T) {
		r := newIdentityRouter(jwtManager, true)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(SharerUserIDHeader, userID.String())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String()+"|user", w.Body.String())
	})

	t.Run("header identity ignored when disabled", func(t *testing.T) {
		r := newIdentityRouter(jwtManager, false)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(SharerUserIDHeader, userID.String())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header id", func(t *testing.T) {
		r := newIdentityRouter(jwtManager, true)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(SharerUserIDHeader, "42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		token, err := jwtManager.GenerateAccessToken(userID, auth.RoleAdmin)
		require.NoError(t, err)

		r := newIdentityRouter(jwtManager, false)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		r := newIdentityRouter(jwtManager, true)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(SharerUserIDHeader, userID.String())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(limiterIdleTTL + limiterSweepEvery + time.Second)
	l.Allow("b")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestRateLimitMiddleware_IgnoresIdentityHeader(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(1, 1)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	limited := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.7:40000"
		req.Header.Set(SharerUserIDHeader, uuid.NewString())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.GreaterOrEqual(t, limited, 48)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.8:40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "other clients keep their own bucket")
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}
