package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medidata/dataset-system/internal/api"
	"github.com/medidata/dataset-system/internal/core/service"
	"github.com/medidata/dataset-system/internal/infrastructure/config"
	"github.com/medidata/dataset-system/internal/infrastructure/db/postgres"
	redisdb "github.com/medidata/dataset-system/internal/infrastructure/db/redis"
	"github.com/medidata/dataset-system/internal/infrastructure/queue"
	"github.com/medidata/dataset-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.Postgres.URL,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Background ingestion ---
	datasetRepo := postgres.NewDatasetRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	jobStore := redisdb.NewJobStore(rdb)
	activityService := service.NewActivityService(activityRepo, log)
	ingestService := service.NewIngestService(datasetRepo, jobStore, activityService, log)

	dispatcher := queue.NewDispatcher(cfg.IngestWorkers, ingestService, log)
	dispatcher.Start(ctx)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to create upload directory")
	}

	// --- HTTP ---
	e := api.NewRouter(pool, rdb, api.Options{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		UploadDir:  cfg.UploadDir,
		Dispatcher: dispatcher,
		Logger:     log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
