package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResourceFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/payment-plans/:id/suspend": "payment-plans",
		"/api/v1/receivables":              "receivables",
		"/api/v1":                          "",
		"/health":                          "",
		"":                                 "",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceFromRoute(route), route)
	}
}

func TestProfilingWithConfig_LabelsRequest(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	token, input := issueToken(t, svc)

	router := gin.New()
	router.Use(JWTAuthMiddleware(DefaultJWTConfig(svc, nil, nil)), ProfilingWithConfig(DefaultProfilingConfig(true)))
	labels := map[string]string{}
	router.GET("/api/v1/invoices/:id", func(c *gin.Context) {
		for _, key := range []string{"method", "route", "resource", "tenant_id"} {
			if v, ok := pprof.Label(c.Request.Context(), key); ok {
				labels[key] = v
			}
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/123", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{
		"method":    http.MethodGet,
		"route":     "/api/v1/invoices/:id",
		"resource":  "invoices",
		"tenant_id": input.TenantID.String(),
	}, labels)
}

func TestProfilingWithConfig_SkipsProbes(t *testing.T) {
	router := gin.New()
	router.Use(ProfilingWithConfig(DefaultProfilingConfig(true)))
	labelled := false
	router.GET("/health", func(c *gin.Context) {
		_, labelled = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, labelled)
}
