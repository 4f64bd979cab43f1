package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func text(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup_MountsGroupsUnderVersion(t *testing.T) {
	engine := gin.New()
	receivables := NewDomainGroup("receivables", "/receivables").
		GET("", text("list")).
		GET("/:id", text("get"))
	payments := NewDomainGroup("payments", "/payments").
		POST("/:id/confirm", text("confirm"))

	NewRouter(engine).Register(receivables, payments).Setup()

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/v1/receivables", "list"},
		{http.MethodGet, "/api/v1/receivables/42", "get"},
		{http.MethodPost, "/api/v1/payments/42/confirm", "confirm"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.target)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.target)
		assert.Equal(t, tt.body, w.Body.String())
	}
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/receivables").Code)
}

func TestRouterSetup_APIMiddlewareRunsInOrder(t *testing.T) {
	engine := gin.New()
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}
	engine.GET("/health", text("ok"))

	group := NewDomainGroup("invoices", "/invoices").Use(mark("group")).GET("", text("invoices"))
	NewRouter(engine, WithMiddleware(mark("auth"), mark("ratelimit"))).Register(group).Setup()

	serve(engine, http.MethodGet, "/api/v1/invoices")
	assert.Equal(t, []string{"auth", "ratelimit", "group"}, order)

	order = nil
	serve(engine, http.MethodGet, "/health")
	assert.Empty(t, order, "routes outside the API group skip API middleware")
}

func TestDomainGroup_AllMethods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("plans", "/payment-plans").
		GET("/:id", text("get")).
		POST("", text("create")).
		PUT("/:id", text("update")).
		PATCH("/:id", text("patch")).
		DELETE("/:id", text("delete"))
	g.RegisterRoutes(engine.Group("/api/v1"))

	for method, body := range map[string]string{
		http.MethodGet:    "get",
		http.MethodPut:    "update",
		http.MethodPatch:  "patch",
		http.MethodDelete: "delete",
	} {
		w := serve(engine, method, "/api/v1/payment-plans/7")
		assert.Equal(t, body, w.Body.String(), method)
	}
	assert.Equal(t, "create", serve(engine, http.MethodPost, "/api/v1/payment-plans").Body.String())
	assert.Equal(t, "plans", g.Name())
	assert.Equal(t, "/payment-plans", g.Prefix())
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	collections := NewDomainGroup("collections", "/collections")
	collections.Group("reports", "/reports").GET("/aging", text("aging"))

	r := NewRouter(engine).Register(collections)
	r.Setup()

	assert.Equal(t, "aging", serve(engine, http.MethodGet, "/api/v1/collections/reports/aging").Body.String())
}

func TestRouter_Routes(t *testing.T) {
	plans := NewDomainGroup("plans", "/payment-plans").
		GET("", text("list")).
		POST("/:id/installments/:installmentId/pay", text("pay"))
	plans.Group("archive", "/archive").GET("", text("archive"))

	r := NewRouter(gin.New()).Register(plans)
	routes := r.Routes()

	require.Len(t, routes, 3)
	assert.Equal(t, RouteInfo{Group: "plans", Method: http.MethodGet, Path: "/api/v1/payment-plans"}, routes[0])
	assert.Equal(t, "/api/v1/payment-plans/:id/installments/:installmentId/pay", routes[1].Path)
	assert.Equal(t, RouteInfo{Group: "archive", Method: http.MethodGet, Path: "/api/v1/payment-plans/archive"}, routes[2])
}
