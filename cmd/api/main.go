package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/poojakit/poojakit-backend/api/routes"
	"github.com/poojakit/poojakit-backend/internal/auth"
	"github.com/poojakit/poojakit-backend/internal/bootstrap"
	"github.com/poojakit/poojakit-backend/internal/catalog"
	"github.com/poojakit/poojakit-backend/internal/notify"
	"github.com/poojakit/poojakit-backend/internal/orders"
	"github.com/poojakit/poojakit-backend/internal/users"
	"github.com/poojakit/poojakit-backend/pkg/config"
	"github.com/poojakit/poojakit-backend/pkg/db"
	"github.com/poojakit/poojakit-backend/pkg/logger"
	"github.com/poojakit/poojakit-backend/pkg/metrics"
	"github.com/poojakit/poojakit-backend/pkg/migrate"
	"github.com/poojakit/poojakit-backend/pkg/redis"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "poojakit-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, "database bootstrap failed", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal(ctx, logg, "dev auto-migration failed", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			fatal(ctx, logg, "redis bootstrap failed", err)
		}
		defer redisClient.Close()
	} else {
		logg.Info(ctx, "redis not configured, auth rate limiting disabled")
	}

	userRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	seeder, err := bootstrap.NewSeeder(userRepo, catalogRepo, cfg.Bootstrap, cfg.Password, logg)
	if err != nil {
		fatal(ctx, logg, "building seeder failed", err)
	}
	if err := seeder.Run(ctx); err != nil {
		fatal(ctx, logg, "bootstrap seeding failed", err)
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:    userRepo,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		fatal(ctx, logg, "building auth service failed", err)
	}

	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		fatal(ctx, logg, "building catalog service failed", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	orderParams := orders.ServiceParams{
		Repo:    orderRepo,
		Catalog: catalogSvc,
		Logger:  logg,
		Metrics: httpMetrics,
	}
	if relay := notify.NewRelay(cfg.Notify.FormURL, notify.WithTimeout(cfg.Notify.Timeout)); relay != nil {
		orderParams.Notifier = relay
	} else {
		logg.Info(ctx, "notification relay disabled, no form url configured")
	}

	orderSvc, err := orders.NewService(orderParams)
	if err != nil {
		fatal(ctx, logg, "building order service failed", err)
	}

	healthDeps := map[string]db.Pinger{"postgres": dbClient}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}

	router, err := routes.NewRouter(routes.RouterParams{
		Cfg:            cfg,
		Logger:         logg,
		Metrics:        httpMetrics,
		Registry:       registry,
		AuthService:    authSvc,
		CatalogService: catalogSvc,
		OrderService:   orderSvc,
		RateLimitStore: redisClient,
		HealthDeps:     healthDeps,
	})
	if err != nil {
		fatal(ctx, logg, "building router failed", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", srv.Addr), "http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logg.Info(context.Background(), "shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(context.Background(), logg, "http server failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	logg.Info(context.Background(), "server stopped")
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
