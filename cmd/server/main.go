package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/cravecorner/core/config"
	"github.com/dmitrymomot/cravecorner/core/cookie"
	"github.com/dmitrymomot/cravecorner/core/email"
	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/health"
	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/core/response"
	"github.com/dmitrymomot/cravecorner/core/router"
	"github.com/dmitrymomot/cravecorner/core/server"
	"github.com/dmitrymomot/cravecorner/integration/database/redis"
	"github.com/dmitrymomot/cravecorner/integration/email/postmark"
	"github.com/dmitrymomot/cravecorner/integration/storage/s3"
	"github.com/dmitrymomot/cravecorner/internal/auth"
	"github.com/dmitrymomot/cravecorner/internal/credential"
	"github.com/dmitrymomot/cravecorner/internal/delivery"
	"github.com/dmitrymomot/cravecorner/internal/federated"
	"github.com/dmitrymomot/cravecorner/internal/httpapi"
	"github.com/dmitrymomot/cravecorner/middleware"
	"github.com/dmitrymomot/cravecorner/pkg/ratelimiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if _, set := os.LookupEnv("APP_ENV"); !set && cfg.NodeEnv != "" {
		cfg.Env = cfg.NodeEnv
		cfg.Cookie.Env = cfg.NodeEnv
	}
	log := newLogger(cfg)
	logger.SetAsDefault(log)

	// closers run in reverse order after the server has stopped.
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	users, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, users.close)
	checks := []health.Check{users.check}

	g, ctx := errgroup.WithContext(ctx)

	var limits ratelimiter.Store
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = client.Close() })
		checks = append(checks, redis.Healthcheck(client))
		limits = ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix(cfg.AppName+":email:"))
	} else {
		mem := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(log))
		g.Go(mem.Run(ctx))
		limits = mem
	}

	pool, err := delivery.NewPool(cfg.Delivery,
		delivery.WithRateLimitStore(limits),
		delivery.WithPoolLogger(log),
	)
	if err != nil {
		return err
	}
	closers = append(closers, func() { _ = pool.Close() })

	dispatchOpts := []delivery.DispatcherOption{delivery.WithLogger(log)}
	switch {
	case strings.EqualFold(cfg.Postmark.Provider, "dev"):
		dispatchOpts = append(dispatchOpts, delivery.WithProvider(email.NewDevSender(cfg.DevMailDir), cfg.Delivery.APITimeout))
	case cfg.Postmark.Enabled():
		pm, err := postmark.New(cfg.Postmark)
		if err != nil {
			return err
		}
		dispatchOpts = append(dispatchOpts, delivery.WithProvider(pm, cfg.Delivery.APITimeout))
	}
	dispatcher := delivery.NewDispatcher(pool, dispatchOpts...)

	issuer, err := credential.New(cfg.Credential)
	if err != nil {
		return err
	}

	authOpts := []auth.Option{auth.WithLogger(log)}
	if cfg.Google.Enabled() {
		verifier, err := federated.NewGoogleVerifier(cfg.Google)
		if err != nil {
			return err
		}
		authOpts = append(authOpts, auth.WithVerifier(verifier))
	}
	if cfg.S3.Enabled() {
		images, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return err
		}
		checks = append(checks, s3.Healthcheck(images))
		authOpts = append(authOpts, auth.WithImageStore(images))
	}

	svc, err := auth.New(cfg.Auth, users, issuer, dispatcher, authOpts...)
	if err != nil {
		return err
	}
	closers = append(closers, func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := svc.Drain(drainCtx); err != nil {
			log.Warn("pending emails abandoned", logger.Error(err))
		}
	})

	r := router.New(
		router.WithErrorHandler(httpapi.ErrorHandler(log)),
		router.WithLogger[*router.Context](log),
		router.WithMiddleware(
			middleware.RequestID[*router.Context](),
			middleware.LoggingWithConfig[*router.Context](log, middleware.LoggingConfig{
				Skip: func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/health/") },
			}),
			middleware.CORS[*router.Context](cfg.CORS),
		),
	)
	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](log, checks...))
	r.Method("/{path:.*}", preflight, http.MethodOptions)
	httpapi.New(svc, cookie.NewSessionPolicy(cfg.Cookie), httpapi.WithLogger(log)).Mount(r)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}
	g.Go(srv.Run(ctx, r))

	log.Info("starting", slog.String("addr", cfg.Server.ListenAddr()), slog.String("store", cfg.StoreDriver))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// preflight lets OPTIONS requests reach the CORS middleware on any path.
func preflight(*router.Context) handler.Response {
	return response.NoContent()
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithContextExtractors(middleware.RequestIDAttr)}
	switch strings.ToLower(cfg.Env) {
	case "production", "prod":
		opts = append(opts, logger.WithProduction(cfg.AppName))
	case "staging":
		opts = append(opts, logger.WithStaging(cfg.AppName))
	default:
		opts = append(opts, logger.WithDevelopment(cfg.AppName))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	return logger.New(opts...)
}
