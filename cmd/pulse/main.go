package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/api"
	"github.com/culturepulse/culture-pulse/internal/chat"
	"github.com/culturepulse/culture-pulse/internal/llm"
	"github.com/culturepulse/culture-pulse/internal/platform/config"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err = database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	asker := chat.New(database, llm.New(cfg, &logger), &logger)
	handler := api.NewHandler(database, asker, &logger)
	server := observability.NewServerWithAPI(database, cfg.APIPort, handler, &logger)

	logger.Info().Int("port", cfg.APIPort).Msg("starting culture pulse server")

	if err = server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("server stopped")
	}

	logger.Info().Msg("shutdown complete")
}

func newLogger(appEnv string) zerolog.Logger {
	var out = zerolog.New(os.Stderr)
	if appEnv == "local" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	return out.With().Timestamp().Logger()
}
