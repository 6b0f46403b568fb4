package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/agriscience/catalog/docs"
	"github.com/agriscience/catalog/internal/api/cookie"
	"github.com/agriscience/catalog/internal/api/handler"
	"github.com/agriscience/catalog/internal/api/middleware"
	"github.com/agriscience/catalog/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	AuthService    ports.AuthService
	ProductService ports.ProductService
	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handler.Pinger
	Logger    zerolog.Logger
	Cookie    cookie.Options

	// LoginRateLimit is the sustained number of login attempts per second
	// allowed per client IP. Zero disables the limiter.
	LoginRateLimit float64
	LoginRateBurst int

	// SiteURL, when set, is the only origin allowed to call the API with
	// credentials from a browser.
	SiteURL   string
	ImagesDir string

	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to a private registry so routers can be built repeatedly.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	if d.Registerer == nil || d.Gatherer == nil {
		reg := prometheus.NewRegistry()
		d.Registerer, d.Gatherer = reg, reg
	}

	// --- Pre-routing middleware: runs for every request, matched or not ---
	e.Pre(echomiddleware.Recover())
	e.Pre(echomiddleware.RequestID())
	e.Pre(middleware.RequestLogger(d.Logger))
	e.Pre(middleware.CacheHeaders())
	e.Pre(middleware.Gatekeeper(d.AuthService, d.Cookie))

	// --- Global middleware ---
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "catalog",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	if d.SiteURL != "" {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     []string{d.SiteURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowCredentials: true,
		}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.Cookie, d.Logger)
	productHandler := handler.NewProductHandler(d.ProductService, d.Logger)
	adminHandler := handler.NewAdminHandler(d.ProductService)
	requireSession := middleware.RequireSession(d.AuthService, d.Cookie)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login, loginLimiter(d.LoginRateLimit, d.LoginRateBurst)...)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", authHandler.Session)

	// --- Product routes: reads are public, writes need an owner session ---
	products := e.Group("/api/products")
	products.GET("", productHandler.List)
	products.GET("/categories", productHandler.Categories)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, requireSession)
	products.PUT("/:id", productHandler.Update, requireSession)
	products.PATCH("/:id", productHandler.Update, requireSession)
	products.DELETE("/:id", productHandler.Delete, requireSession)

	// --- Admin pages (guarded by the Gatekeeper above) ---
	e.GET(middleware.AdminPrefix, adminHandler.Root)
	e.GET(middleware.LoginPath, adminHandler.Login)
	e.GET(middleware.DashboardPath, adminHandler.Dashboard)

	if d.ImagesDir != "" {
		e.Static("/images", d.ImagesDir)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", func(c echo.Context) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(doc))
	})

	return e
}

func loginLimiter(limit float64, burst int) []echo.MiddlewareFunc {
	if limit <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return []echo.MiddlewareFunc{
		echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
			Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
		}),
	}
}
