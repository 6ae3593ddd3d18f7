// Command function runs the relay as a platform function: the platform routes
// POST /functions/v1/create-checkout (or /) to the port it assigns in PORT.
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

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("checkout-function", cfg.LogLevel)
	log.Info("starting checkout function",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ListenPort()),
	)

	application, err := app.NewApp(cfg, log, config.VariantFunction)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
