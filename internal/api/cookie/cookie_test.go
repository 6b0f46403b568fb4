package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSet_Attributes(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	Set(c, "tok", Options{Secure: true})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "admin_session" || ck.Value != "tok" {
		t.Fatalf("unexpected cookie %s=%s", ck.Name, ck.Value)
	}
	if ck.MaxAge != 86400 || ck.Path != "/" {
		t.Fatalf("unexpected max-age/path: %d %q", ck.MaxAge, ck.Path)
	}
	if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected flags: %+v", ck)
	}
}

func TestSet_NotSecureOutsideProduction(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	Set(c, "tok", Options{})
	if rec.Result().Cookies()[0].Secure {
		t.Fatalf("cookie must not be Secure in development")
	}
}

func TestClear_ExpiresCookie(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	Clear(c, Options{})

	ck := rec.Result().Cookies()[0]
	if ck.Name != Name || ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", ck)
	}
}

func TestRead(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := Read(e.NewContext(req, httptest.NewRecorder())); got != "" {
		t.Fatalf("expected empty credential, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: Name, Value: "abc"})
	if got := Read(e.NewContext(req, httptest.NewRecorder())); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
