package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/config"
	"github.com/mediplan/clinic-scheduler/internal/db"
	"github.com/mediplan/clinic-scheduler/internal/observability/logging"
	"github.com/mediplan/clinic-scheduler/internal/observability/metrics"
	redisclient "github.com/mediplan/clinic-scheduler/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("sweep-worker", "dev")
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New("sweep-worker", cfg.Env)
	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.SweepInterval).Msg("sweep-worker starting up")

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

	repo := appointment.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	svc := appointment.NewService(repo, locker, metrics.NewBookingMetrics(nil))

	// Run once at startup
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping sweep worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	count, err := svc.SweepPastAppointments(runCtx)
	if err != nil {
		logger.Error().Err(err).Msg("sweep run error")
		return
	}
	logger.Info().Int64("completed", count).Dur("took", time.Since(start)).Msg("sweep run complete")
}
