package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	token, _ := issueToken(t, svc)
	docsAuth := JWTAuthMiddleware(JWTMiddlewareConfig{JWTService: svc})

	tests := []struct {
		name       string
		cfg        config.SwaggerConfig
		remoteAddr string
		token      string
		want       int
	}{
		{"disabled", config.SwaggerConfig{}, "10.0.0.1:1234", "", http.StatusNotFound},
		{"open", config.SwaggerConfig{Enabled: true}, "10.0.0.1:1234", "", http.StatusOK},
		{"whitelisted ip", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:1234", "", http.StatusOK},
		{"ip outside whitelist", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.2:1234", "", http.StatusForbidden},
		{"ip inside cidr", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "192.168.4.20:1234", "", http.StatusOK},
		{"auth required without token", config.SwaggerConfig{Enabled: true, RequireAuth: true}, "10.0.0.1:1234", "", http.StatusUnauthorized},
		{"auth required with token", config.SwaggerConfig{Enabled: true, RequireAuth: true}, "10.0.0.1:1234", token, http.StatusOK},
		{"whitelist checked before auth", config.SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.1"}}, "10.9.9.9:1234", token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/swagger/*any", SwaggerProtection(tt.cfg, docsAuth), func(c *gin.Context) {
				c.String(http.StatusOK, "docs")
			})

			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.token != "" {
				req.Header.Set(AuthHeaderKey, BearerPrefix+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestIPAllowlist(t *testing.T) {
	allow := parseAllowlist([]string{"127.0.0.1", " 10.1.0.7/24", "not-an-ip", "::1"})
	assert.Len(t, allow, 3)

	assert.True(t, allow.contains(netip.MustParseAddr("127.0.0.1")))
	assert.True(t, allow.contains(netip.MustParseAddr("::ffff:127.0.0.1")))
	assert.True(t, allow.contains(netip.MustParseAddr("10.1.0.200")))
	assert.True(t, allow.contains(netip.MustParseAddr("::1")))
	assert.False(t, allow.contains(netip.MustParseAddr("10.1.1.1")))
	assert.False(t, allow.contains(netip.Addr{}))
}
