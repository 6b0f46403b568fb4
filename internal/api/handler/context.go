package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/agriscience/catalog/internal/api/middleware"
	"github.com/agriscience/catalog/internal/core/domain"
)

// ctxSession returns the session injected by the Gatekeeper or RequireSession
// middleware. Its absence means the route was wired without a guard, which is
// answered as unauthenticated rather than trusted.
func ctxSession(c echo.Context) (*domain.Session, error) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return s, nil
}
