package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agriscience/catalog/internal/api/middleware"
	"github.com/agriscience/catalog/internal/core/domain"
	"github.com/agriscience/catalog/internal/core/ports"
)

// AdminHandler renders the bare admin pages. Access control is entirely the
// Gatekeeper's job; these handlers only read the session it stored.
type AdminHandler struct {
	products ports.ProductService
}

func NewAdminHandler(products ports.ProductService) *AdminHandler {
	return &AdminHandler{products: products}
}

var adminPages = template.Must(template.Must(template.New("login").Parse(loginPage)).New("dashboard").Parse(dashboardPage))

// Root sends /admin to the dashboard.
func (h *AdminHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, middleware.DashboardPath)
}

// Login renders the sign-in form.
func (h *AdminHandler) Login(c echo.Context) error {
	return render(c, "login", nil)
}

// Dashboard lists the catalog for the signed-in owner.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	products, err := h.products.ListProducts(c.Request().Context(), ports.ListProductsFilter{})
	if err != nil {
		return err
	}

	return render(c, "dashboard", struct {
		Email    string
		Products []domain.Product
	}{Email: session.Email, Products: products})
}

func render(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := adminPages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

const loginPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin sign in</title></head>
<body>
<h1>Admin sign in</h1>
<form id="login">
  <label>Email <input type="email" name="email" required autocomplete="username"></label>
  <label>Password <input type="password" name="password" required autocomplete="current-password"></label>
  <button type="submit">Sign in</button>
</form>
<p id="error" role="alert"></p>
<script>
document.getElementById('login').addEventListener('submit', async (ev) => {
  ev.preventDefault();
  const form = new FormData(ev.target);
  const res = await fetch('/api/auth/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({email: form.get('email'), password: form.get('password')}),
  });
  const body = await res.json();
  if (res.ok) { window.location.href = body.redirect_url; return; }
  document.getElementById('error').textContent = body.error || 'Sign in failed';
});
</script>
</body>
</html>`

const dashboardPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin dashboard</title></head>
<body>
<header>
  <p>Signed in as {{.Email}}</p>
  <button id="logout">Sign out</button>
</header>
<h1>Products ({{len .Products}})</h1>
<table>
  <thead><tr><th>Name</th><th>Category</th><th>Origin</th><th>Price</th><th>Created</th></tr></thead>
  <tbody>
  {{range .Products}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{with .Category}}{{.}}{{end}}</td>
      <td>{{with .Origin}}{{.}}{{end}}</td>
      <td>{{with .Price}}{{.}}{{end}}</td>
      <td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td>
    </tr>
  {{else}}
    <tr><td colspan="5">No products yet.</td></tr>
  {{end}}
  </tbody>
</table>
<script>
document.getElementById('logout').addEventListener('click', async () => {
  await fetch('/api/auth/logout', {method: 'POST'});
  window.location.href = '/admin/login';
});
</script>
</body>
</html>`
