package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/adminapi"
	"github.com/lueurxax/newscrawl/internal/engine"
	"github.com/lueurxax/newscrawl/internal/platform/config"
	"github.com/lueurxax/newscrawl/internal/platform/observability"
	"github.com/lueurxax/newscrawl/internal/storage"
	"github.com/lueurxax/newscrawl/internal/supervisor"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	db, err := storage.New(ctx, cfg.PostgresDSN, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	fetchTimeout := time.Duration(cfg.FetchTimeoutSecs) * time.Second
	llmTimeout := time.Duration(cfg.LLMTimeoutSecs) * time.Second

	factory := func() supervisor.Runner {
		rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // scheduling randomness, not security-sensitive
		return engine.New(db, &logger, rng, fetchTimeout, llmTimeout)
	}

	sup := supervisor.New(db, &logger, factory)

	healthServer := observability.NewServer(db, cfg.HealthPort, &logger)

	go func() {
		logger.Info().Int("port", cfg.HealthPort).Msg("Starting health server")

		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health server error")
		}
	}()

	adminServer := adminapi.NewServer(db, sup, &logger, cfg.AdminAuthToken)

	go func() {
		logger.Info().Str("addr", cfg.AdminHTTPAddr).Msg("Starting admin HTTP surface")

		if err := adminServer.Start(ctx, cfg.AdminHTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Admin server error")
		}
	}()

	healthServer.SetReady(true)

	logger.Info().Msg("Crawler daemon ready")

	<-ctx.Done()

	logger.Info().Msg("Crawler daemon stopped")
}

// setLogLevel sets the global log level based on the configuration.
func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
