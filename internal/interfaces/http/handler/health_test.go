package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func healthRouter(p Pinger) *gin.Engine {
	h := NewHealthHandler(p, "1.4.0")
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	return r
}

func TestHealthHandler_Health(t *testing.T) {
	w := httptest.NewRecorder()
	healthRouter(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	health := decodeData[HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.4.0", health.Version)
	assert.NotEmpty(t, health.GoVersion)
}

func TestHealthHandler_Ready(t *testing.T) {
	w := httptest.NewRecorder()
	healthRouter(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	healthRouter(stubPinger{err: errors.New("connection refused")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeUnavailable, decodeError(t, w).Code)
}
