package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediplan/clinic-scheduler/internal/api"
	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/config"
	"github.com/mediplan/clinic-scheduler/internal/db"
	"github.com/mediplan/clinic-scheduler/internal/observability/logging"
	"github.com/mediplan/clinic-scheduler/internal/observability/metrics"
	redisclient "github.com/mediplan/clinic-scheduler/internal/redis"
	"github.com/mediplan/clinic-scheduler/internal/user"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("api-server", "dev")
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New("api-server", cfg.Env)
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	apptSvc := appointment.NewService(appointment.NewPgRepository(pgPool), locker, bookingMetrics)
	userSvc := user.NewService(user.NewPgRepository(pgPool))

	router := api.NewRouter(api.RouterConfig{
		Appointments: apptSvc,
		Users:        userSvc,
		PgPool:       pgPool,
		Redis:        rdb,
		Logger:       logger,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()
	logger.Info().Str("addr", srv.Addr).Msg("listening")

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	case <-rootCtx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("api-server stopped")
}
