// @title       Catalog API
// @version     1.0
// @description Product catalog and single-operator admin authentication.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agriscience/catalog/internal/api"
	"github.com/agriscience/catalog/internal/api/cookie"
	"github.com/agriscience/catalog/internal/api/handler"
	"github.com/agriscience/catalog/internal/core/ports"
	"github.com/agriscience/catalog/internal/core/service"
	"github.com/agriscience/catalog/internal/infrastructure/db/redis"
	"github.com/agriscience/catalog/internal/infrastructure/filestore"
	"github.com/agriscience/catalog/internal/pkg/config"
	"github.com/agriscience/catalog/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "catalog",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reportProblems(cfg, log)

	store, err := filestore.Open(cfg.Store.ProductsFile, filestore.Options{Logger: log})
	if err != nil {
		return err
	}
	readiness := map[string]handler.Pinger{"products": store}

	var revoked ports.RevocationList
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		denylist := redis.NewDenylist(client)
		revoked = denylist
		readiness["redis"] = denylist
		log.Info().Str("addr", cfg.Redis.Addr).Msg("session denylist enabled")
	}

	authService := service.NewAuthService(service.AuthConfig{
		AdminEmail:        cfg.Admin.Email,
		AdminPassword:     cfg.Admin.Password,
		AdminPasswordHash: cfg.Admin.PasswordHash,
		OwnerEmails:       cfg.Admin.Owners(),
		Secret:            cfg.Admin.JWTSecret,
		Production:        cfg.IsProduction(),
	}, revoked, log)
	productService := service.NewProductService(store, cfg.Store.Timeout, log)

	e := api.NewRouter(api.Deps{
		AuthService:    authService,
		ProductService: productService,
		Readiness:      readiness,
		Logger:         log,
		Cookie:         cookie.Options{Secure: cfg.IsProduction()},
		LoginRateLimit: cfg.LoginRateLimit,
		LoginRateBurst: cfg.LoginRateBurst,
		SiteURL:        cfg.SiteURL,
		ImagesDir:      cfg.ImagesDir,
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Store.Watch {
		group.Go(func() error {
			return store.Watch(groupCtx)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info().Msg("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func reportProblems(cfg *config.Config, log zerolog.Logger) {
	for _, p := range cfg.Problems() {
		ev := log.Warn()
		if p.Required {
			ev = log.Error()
		}
		ev.Str("kind", "configuration").
			Str("var", p.Var).
			Bool("required", p.Required).
			Msg(p.Effect)
	}
}
