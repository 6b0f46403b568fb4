// Package cookie issues and clears the admin session cookie.
package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agriscience/catalog/internal/core/domain"
)

const (
	// Name is the cookie carrying the signed session credential.
	Name = "admin_session"
	// MaxAge matches the credential lifetime, in seconds.
	MaxAge = int(domain.SessionTTL / time.Second)
)

// Options defines how the session cookie is issued.
type Options struct {
	// Secure should be true in production, where the site is served over TLS.
	Secure bool
}

// Set issues the session cookie.
func Set(c echo.Context, token string, opts Options) {
	c.SetCookie(&http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear instructs the client to drop the session cookie.
func Clear(c echo.Context, opts Options) {
	c.SetCookie(&http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the presented credential, or "" when there is none.
func Read(c echo.Context) string {
	ck, err := c.Cookie(Name)
	if err != nil {
		return ""
	}
	return ck.Value
}
