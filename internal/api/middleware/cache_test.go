package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCachePolicy(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/images/urea.jpg", cacheImmutable},
		{http.MethodGet, "/favicon.ico", cacheImmutable},
		{http.MethodGet, "/fonts/inter.WOFF2", cacheImmutable},
		{http.MethodGet, "/api/products", cacheCatalog},
		{http.MethodGet, "/api/products/categories", cacheCatalog},
		{http.MethodPost, "/api/products", ""},
		{http.MethodGet, "/api/products/prod_1", ""},
		{http.MethodPost, "/api/auth/login", cacheNone},
		{http.MethodGet, "/admin/dashboard", cacheNone},
		{http.MethodGet, "/admin/logo.png", cacheNone},
		{http.MethodGet, "/health", ""},
	}
	for _, tc := range cases {
		if got := cachePolicy(tc.method, tc.path); got != tc.want {
			t.Errorf("%s %s: got %q, want %q", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestCacheHeaders_SetsHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := CacheHeaders()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderCacheControl); got != cacheCatalog {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
}
