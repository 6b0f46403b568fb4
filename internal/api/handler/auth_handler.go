package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agriscience/catalog/internal/api/cookie"
	"github.com/agriscience/catalog/internal/api/middleware"
	"github.com/agriscience/catalog/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookieOpts  cookie.Options
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookieOpts cookie.Options, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookieOpts: cookieOpts, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login authenticates the operator and sets the session cookie.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Operator credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	cookie.Set(c, token, h.cookieOpts)
	return c.JSON(http.StatusOK, loginResponse{
		Success:     true,
		Message:     "Login successful",
		RedirectURL: middleware.DashboardPath,
	})
}

// Logout clears the session cookie. It always succeeds.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if session, _ := middleware.Authorize(c, h.authService); session != nil {
		if err := h.authService.Logout(c.Request().Context(), session); err != nil {
			h.log.Warn().Err(err).Msg("could not revoke session on logout")
		}
	}

	cookie.Clear(c, h.cookieOpts)
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

// Session reports whether the caller holds a valid owner session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  sessionResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	session, _ := middleware.Authorize(c, h.authService)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, sessionResponse{Authenticated: false})
	}
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: true, Email: session.Email})
}
