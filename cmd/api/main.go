package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/layali-lounge/qrmenu-backend/api/routes"
	"github.com/layali-lounge/qrmenu-backend/internal/catalog"
	checkoutsvc "github.com/layali-lounge/qrmenu-backend/internal/checkout"
	ordersrepo "github.com/layali-lounge/qrmenu-backend/internal/orders"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	staffsvc "github.com/layali-lounge/qrmenu-backend/internal/staff"
	visitsvc "github.com/layali-lounge/qrmenu-backend/internal/visit"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	"github.com/layali-lounge/qrmenu-backend/pkg/db"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
	"github.com/layali-lounge/qrmenu-backend/pkg/metrics"
	"github.com/layali-lounge/qrmenu-backend/pkg/migrate"
	"github.com/layali-lounge/qrmenu-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	defer func() {
		if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing backing clients", err)
		}
	}()

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderFlowMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := ordersrepo.NewRepository(dbClient.DB())
	visitService := visitsvc.NewService(ordersRepo, logg)
	checkoutService := checkoutsvc.NewService(dbClient, ordersRepo, catalogRepo, logg, orderMetrics)
	staffService := staffsvc.NewService(ordersRepo, logg, orderMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			catalogRepo,
			ordersRepo,
			visitService,
			checkoutService,
			staffService,
			registry,
		),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}
}
