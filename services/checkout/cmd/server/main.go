package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pkgconfig "github.com/orjumedia/storefront/pkg/config"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/services/checkout/internal/app"
	"github.com/orjumedia/storefront/services/checkout/internal/config"
)

func main() {
	// A local .env file, when present, fills in unset variables.
	if err := pkgconfig.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger.
	log := logger.New("checkout-relay", cfg.LogLevel)
	log.Info("starting checkout relay",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.ListenPort()),
		slog.String("gateway", cfg.GatewayBaseURL),
	)

	// Create the application with all dependencies wired.
	application, err := app.NewApp(cfg, log, config.VariantStandalone)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("checkout relay stopped")
}
