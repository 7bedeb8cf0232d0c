package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/insightgen"
	"github.com/culturepulse/culture-pulse/internal/llm"
	"github.com/culturepulse/culture-pulse/internal/platform/config"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

func main() {
	themeType := flag.String("theme-type", "", "generate insights for a single theme: base_theme or sub_theme")
	themeName := flag.String("theme-name", "", "theme name, required when -theme-type is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.PostgresDSN, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err = database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	client := llm.New(cfg, &logger)
	generator := insightgen.New(database, client, cfg, &logger)

	start := time.Now()

	if *themeType != "" {
		if *themeName == "" {
			logger.Fatal().Msg("-theme-name is required when -theme-type is set")
		}

		err = generator.GenerateTheme(ctx, *themeType, *themeName)
	} else {
		err = generator.Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("insight generation failed")
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("insight generation complete")
}

func newLogger(appEnv string) zerolog.Logger {
	var out = zerolog.New(os.Stderr)
	if appEnv == "local" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	return out.With().Timestamp().Logger()
}
