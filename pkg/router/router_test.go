package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(value string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupMiddlewareOrderAndNames(t *testing.T) {
	r := New()
	api := r.Group("/api", tag("api"))
	api.Post("/orders", "orders.store", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"api", "route"}, rec.Header().Values("X-Chain"))

	path, ok := r.Path("orders.store")
	require.True(t, ok)
	assert.Equal(t, "/api/orders", path)
}

func TestURLFillsParams(t *testing.T) {
	r := New()
	r.Get("/orders/{id}", "orders.show", func(http.ResponseWriter, *http.Request) {})

	u, err := r.URL("orders.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/orders/9", u)

	_, err = r.URL("orders.show", nil)
	assert.Error(t, err)

	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutesSorted(t *testing.T) {
	r := New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Post("/b", "b", noop)
	r.Get("/a", "a", noop)
	r.HandleFunc("/metrics", noop)

	assert.Equal(t, []RouteInfo{
		{Method: "GET", Path: "/a", Name: "a"},
		{Method: "POST", Path: "/b", Name: "b"},
		{Method: "ANY", Path: "/metrics"},
	}, r.Routes())
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/", joinPath())
	assert.Equal(t, "/", joinPath("", "/"))
	assert.Equal(t, "/api/v1/orders", joinPath("/api/", "v1", "/orders/"))
}
