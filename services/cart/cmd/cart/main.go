package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pkgconfig "github.com/orjumedia/storefront/pkg/config"
	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/services/cart/internal/app"
	"github.com/orjumedia/storefront/services/cart/internal/checkout"
	"github.com/orjumedia/storefront/services/cart/internal/cli"
	"github.com/orjumedia/storefront/services/cart/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A local .env file, when present, fills in unset variables.
	if err := pkgconfig.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", slog.String("error", err.Error()))
		return 1
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return 1
	}

	// Diagnostics go to stderr so command output stays clean.
	log := logger.NewText("cart", cfg.LogLevel, os.Stderr)

	// Cancel on SIGINT or SIGTERM; watch runs until then.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		return 1
	}
	defer application.Close()

	runner := cli.NewRunner(application, os.Stdout)
	if err := runner.Run(ctx, os.Args[1:]); err != nil {
		return report(err)
	}
	return 0
}

// report prints a command error for the shopper and picks the exit code.
func report(err error) int {
	var (
		appErr   *apperrors.AppError
		relayErr *checkout.RelayError
	)
	switch {
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case errors.As(err, &relayErr):
		fmt.Fprintf(os.Stderr, "checkout failed: %s\n", relayErr.Message)
	case errors.As(err, &appErr):
		fmt.Fprintln(os.Stderr, appErr.Message)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return 1
}
