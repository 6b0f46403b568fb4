package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agriscience/catalog/internal/api/cookie"
	"github.com/agriscience/catalog/internal/core/domain"
	"github.com/agriscience/catalog/internal/core/ports"
)

const (
	AdminPrefix   = "/admin"
	LoginPath     = "/admin/login"
	DashboardPath = "/admin/dashboard"

	sessionKey = "session"
)

// SessionFromContext returns the session stored by Gatekeeper or
// RequireSession.
func SessionFromContext(c echo.Context) (*domain.Session, bool) {
	s, ok := c.Get(sessionKey).(*domain.Session)
	return s, ok && s != nil
}

// Authorize verifies the presented cookie and checks the embedded email is
// still an owner, so removing an owner from configuration takes effect
// immediately. It also returns whether a cookie was presented at all.
func Authorize(c echo.Context, auth ports.AuthService) (session *domain.Session, presented bool) {
	token := cookie.Read(c)
	if token == "" {
		return nil, false
	}
	s, ok := auth.VerifyCredential(c.Request().Context(), token)
	if !ok || !auth.IsAuthorizedOwner(s.Email) {
		return nil, true
	}
	return s, true
}

// Gatekeeper guards every path under /admin. It must be registered with
// echo's Pre so it runs before routing and cannot be skipped by a handler.
//
//   - no valid owner session: redirect to the login page, clearing any stale cookie
//   - login page with a valid owner session: redirect to the dashboard
func Gatekeeper(auth ports.AuthService, opts cookie.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !isAdminPath(path) {
				return next(c)
			}

			session, presented := Authorize(c, auth)
			if presented && session == nil {
				cookie.Clear(c, opts)
			}

			if strings.TrimSuffix(path, "/") == LoginPath {
				if session != nil {
					return c.Redirect(http.StatusSeeOther, DashboardPath)
				}
				return next(c)
			}

			if session == nil {
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}

			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// RequireSession protects API routes. Unlike Gatekeeper it answers with a
// 401 instead of a redirect, and never reveals why a credential failed.
func RequireSession(auth ports.AuthService, opts cookie.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, presented := Authorize(c, auth)
			if session == nil {
				if presented {
					cookie.Clear(c, opts)
				}
				return domain.ErrUnauthenticated
			}

			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

func isAdminPath(p string) bool {
	return p == AdminPrefix || strings.HasPrefix(p, AdminPrefix+"/")
}
