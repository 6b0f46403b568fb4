package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheCatalog   = "public, s-maxage=60, stale-while-revalidate=300"
	cacheNone      = "no-store"
)

var staticExtensions = map[string]struct{}{
	".avif": {}, ".gif": {}, ".ico": {}, ".jpeg": {}, ".jpg": {}, ".png": {},
	".svg": {}, ".webp": {}, ".woff": {}, ".woff2": {},
}

// CacheHeaders sets Cache-Control by route family. Register it with Pre so
// redirects issued by Gatekeeper carry it too.
func CacheHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v := cachePolicy(c.Request().Method, c.Request().URL.Path); v != "" {
				c.Response().Header().Set(echo.HeaderCacheControl, v)
			}
			return next(c)
		}
	}
}

func cachePolicy(method, p string) string {
	switch {
	case isAdminPath(p), strings.HasPrefix(p, "/api/auth/"):
		return cacheNone
	case strings.HasPrefix(p, "/images/"):
		return cacheImmutable
	case method == http.MethodGet && (p == "/api/products" || p == "/api/products/categories"):
		return cacheCatalog
	}
	if _, ok := staticExtensions[strings.ToLower(path.Ext(p))]; ok {
		return cacheImmutable
	}
	return ""
}
