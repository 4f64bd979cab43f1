package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/campusledger/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips the probes and the API docs.
func DefaultProfilingConfig(enabled bool) ProfilingConfig {
	return ProfilingConfig{
		Enabled:          enabled,
		SkipPaths:        []string{"/health", "/ready"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// ProfilingWithConfig tags the rest of the chain with Pyroscope labels for the
// method, route pattern, API resource and tenant. Place it after authentication.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) || slices.ContainsFunc(cfg.SkipPathPrefixes, func(p string) bool {
			return strings.HasPrefix(path, p)
		}) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	labels := map[string]string{
		"method":   c.Request.Method,
		"route":    route,
		"resource": resourceFromRoute(route),
	}
	if claims := GetJWTClaims(c); claims != nil {
		labels["tenant_id"] = claims.TenantID
	}
	return labels
}

// resourceFromRoute returns the first segment after the API version,
// e.g. "/api/v1/payment-plans/:id/suspend" -> "payment-plans".
func resourceFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if strings.HasPrefix(part, "v") && i > 0 && parts[i-1] == "api" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
