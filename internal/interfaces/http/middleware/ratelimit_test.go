package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Close()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok, remaining := limiter.Allow("tenant:a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, remaining = limiter.Allow("tenant:a")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
	ok, _ = limiter.Allow("tenant:a")
	assert.False(t, ok)

	ok, _ = limiter.Allow("tenant:b")
	assert.True(t, ok, "keys are limited separately")

	now = now.Add(time.Minute)
	ok, _ = limiter.Allow("tenant:a")
	assert.True(t, ok, "a new window resets the budget")
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(50, time.Minute)
	defer limiter.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestRateLimit_KeysByTenant(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	tokenA, _ := issueToken(t, svc)
	tokenB, _ := issueToken(t, svc)

	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Close()
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddleware(DefaultJWTConfig(svc, nil, nil)), RateLimit(limiter))
	router.GET("/api/v1/receivables", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/receivables", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, call(tokenA).Code)
	w := call(tokenA)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "ERR_RATE_LIMITED", errorCode(t, w))

	assert.Equal(t, http.StatusOK, call(tokenB).Code, "another school keeps its own budget")
}
