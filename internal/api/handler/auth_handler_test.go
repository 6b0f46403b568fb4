package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriscience/catalog/internal/api/cookie"
	"github.com/agriscience/catalog/internal/api/middleware"
	"github.com/agriscience/catalog/internal/core/domain"
)

// mockAuthService accepts owner@example.com / secret and a single token.
type mockAuthService struct {
	loggedOut []string
	logoutErr error
}

const validToken = "valid-token"

func (m *mockAuthService) Login(_ context.Context, email, password string) (string, *domain.Session, error) {
	switch {
	case email == "" || password == "":
		return "", nil, domain.ErrMissingCredentials
	case email == "stranger@example.com" && password == "secret":
		return "", nil, domain.ErrNotAuthorized
	case email != "owner@example.com" || password != "secret":
		return "", nil, domain.ErrInvalidCredentials
	}
	now := time.Now()
	return validToken, &domain.Session{TokenID: "jti-1", Email: email, IssuedAt: now, ExpiresAt: now.Add(domain.SessionTTL)}, nil
}

func (m *mockAuthService) VerifyCredential(_ context.Context, token string) (*domain.Session, bool) {
	if token != validToken {
		return nil, false
	}
	return &domain.Session{TokenID: "jti-1", Email: "owner@example.com"}, true
}

func (m *mockAuthService) IsAuthorizedOwner(email string) bool { return email == "owner@example.com" }

func (m *mockAuthService) Logout(_ context.Context, s *domain.Session) error {
	m.loggedOut = append(m.loggedOut, s.TokenID)
	return m.logoutErr
}

func newAuthCtx(method, target, body, token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookie.Name {
			return ck
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, cookie.Options{Secure: true}, zerolog.Nop())
	c, rec := newAuthCtx(http.MethodPost, "/api/auth/login", `{"email":"owner@example.com","password":"secret"}`, "")

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Login successful","redirect_url":"/admin/dashboard"}`, rec.Body.String())

	ck := sessionCookie(rec)
	require.NotNil(t, ck, "session cookie must be set")
	assert.Equal(t, validToken, ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, 86400, ck.MaxAge)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"missing password", `{"email":"owner@example.com"}`, domain.ErrMissingCredentials},
		{"empty body", `{}`, domain.ErrMissingCredentials},
		{"wrong password", `{"email":"owner@example.com","password":"nope"}`, domain.ErrInvalidCredentials},
		{"not an owner", `{"email":"stranger@example.com","password":"secret"}`, domain.ErrNotAuthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{}, cookie.Options{}, zerolog.Nop())
			c, rec := newAuthCtx(http.MethodPost, "/api/auth/login", tc.body, "")

			err := h.Login(c)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, sessionCookie(rec), "no cookie may be set on failure")
		})
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, cookie.Options{}, zerolog.Nop())
	c, rec := newAuthCtx(http.MethodPost, "/api/auth/login", `{"email":`, "")

	err := h.Login(c)
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Nil(t, sessionCookie(rec))
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("with a valid session revokes and clears", func(t *testing.T) {
		auth := &mockAuthService{}
		h := NewAuthHandler(auth, cookie.Options{}, zerolog.Nop())
		c, rec := newAuthCtx(http.MethodPost, "/api/auth/logout", "", validToken)

		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"jti-1"}, auth.loggedOut)
		ck := sessionCookie(rec)
		require.NotNil(t, ck)
		assert.Less(t, ck.MaxAge, 0)
	})

	t.Run("without a session still succeeds", func(t *testing.T) {
		auth := &mockAuthService{}
		h := NewAuthHandler(auth, cookie.Options{}, zerolog.Nop())
		c, rec := newAuthCtx(http.MethodPost, "/api/auth/logout", "", "")

		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Logged out successfully"}`, rec.Body.String())
		assert.Empty(t, auth.loggedOut)
		assert.NotNil(t, sessionCookie(rec))
	})

	t.Run("revocation failure does not fail logout", func(t *testing.T) {
		auth := &mockAuthService{logoutErr: errors.New("redis down")}
		h := NewAuthHandler(auth, cookie.Options{}, zerolog.Nop())
		c, rec := newAuthCtx(http.MethodPost, "/api/auth/logout", "", validToken)

		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthHandler_Session(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, cookie.Options{}, zerolog.Nop())

	c, rec := newAuthCtx(http.MethodGet, "/api/auth/session", "", validToken)
	require.NoError(t, h.Session(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":true,"email":"owner@example.com"}`, rec.Body.String())

	c, rec = newAuthCtx(http.MethodGet, "/api/auth/session", "", "forged")
	require.NoError(t, h.Session(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestCtxSession_MissingIsUnauthenticated(t *testing.T) {
	c, _ := newAuthCtx(http.MethodPost, "/api/products", "{}", "")
	_, err := ctxSession(c)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	var mw echo.HandlerFunc = middleware.RequireSession(&mockAuthService{}, cookie.Options{})(func(c echo.Context) error {
		s, err := ctxSession(c)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", s.Email)
		return nil
	})
	c, _ = newAuthCtx(http.MethodPost, "/api/products", "{}", validToken)
	require.NoError(t, mw(c))
}
